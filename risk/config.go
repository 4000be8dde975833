package risk

import (
	"fmt"
	"time"
)

// Config holds the risk limits for one strategy process. It is
// validated once at Manager construction and never mutated after.
type Config struct {
	// MaxPositionSize caps a single position's stake in account
	// currency units.
	MaxPositionSize float64 `json:"max_position_size" yaml:"max_position_size"`

	// MaxPortfolioAllocation caps a single position as a fraction of
	// total exposure (0-1].
	MaxPortfolioAllocation float64 `json:"max_portfolio_allocation" yaml:"max_portfolio_allocation"`

	// DailyLossLimit caps realized losses per calendar day as a
	// fraction of balance (0-1].
	DailyLossLimit float64 `json:"daily_loss_limit" yaml:"daily_loss_limit"`

	// CircuitBreakerDrawdown halts all new risk-taking once drawdown
	// from the peak balance reaches this fraction (0-1].
	CircuitBreakerDrawdown float64 `json:"circuit_breaker_drawdown" yaml:"circuit_breaker_drawdown"`

	// MaxConsecutiveLosses is the losing-streak length that stops new
	// entries.
	MaxConsecutiveLosses int `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`

	// Cooldown is the suspension window started by TriggerCooldown.
	Cooldown time.Duration `json:"cooldown" yaml:"cooldown"`
}

// DefaultConfig returns the limits used by the stock DCA setup.
func DefaultConfig() Config {
	return Config{
		MaxPositionSize:        100_000,
		MaxPortfolioAllocation: 0.2,
		DailyLossLimit:         0.05,
		CircuitBreakerDrawdown: 0.15,
		MaxConsecutiveLosses:   3,
		Cooldown:               24 * time.Hour,
	}
}

// Validate checks that every limit is usable: fractions in (0,1],
// counts and durations positive.
func (c Config) Validate() error {
	if c.MaxPositionSize <= 0 {
		return fmt.Errorf("risk: max_position_size must be positive, got %v", c.MaxPositionSize)
	}
	if c.MaxPortfolioAllocation <= 0 || c.MaxPortfolioAllocation > 1 {
		return fmt.Errorf("risk: max_portfolio_allocation must be in (0,1], got %v", c.MaxPortfolioAllocation)
	}
	if c.DailyLossLimit <= 0 || c.DailyLossLimit > 1 {
		return fmt.Errorf("risk: daily_loss_limit must be in (0,1], got %v", c.DailyLossLimit)
	}
	if c.CircuitBreakerDrawdown <= 0 || c.CircuitBreakerDrawdown > 1 {
		return fmt.Errorf("risk: circuit_breaker_drawdown must be in (0,1], got %v", c.CircuitBreakerDrawdown)
	}
	if c.MaxConsecutiveLosses <= 0 {
		return fmt.Errorf("risk: max_consecutive_losses must be positive, got %d", c.MaxConsecutiveLosses)
	}
	if c.Cooldown <= 0 {
		return fmt.Errorf("risk: cooldown must be positive, got %v", c.Cooldown)
	}
	return nil
}
