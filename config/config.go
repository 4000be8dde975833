// Package config loads and validates the bot configuration file. The
// trading framework consumes the same file; this package only checks
// the fields the strategy and its risk limits depend on, plus the
// safety lint for hardcoded credentials.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/dcabot/risk"
)

// Config is the bot configuration surface this repository cares about.
type Config struct {
	MaxOpenTrades int     `json:"max_open_trades" yaml:"max_open_trades"`
	StakeCurrency string  `json:"stake_currency" yaml:"stake_currency"`
	StakeAmount   float64 `json:"stake_amount" yaml:"stake_amount"`

	// DryRun is a pointer so a missing field can be told apart from
	// an explicit false (live mode).
	DryRun *bool `json:"dry_run" yaml:"dry_run"`

	// MaxSlippagePercent is in percent units in the file (0.5 = 0.5%).
	MaxSlippagePercent float64 `json:"max_slippage_percent" yaml:"max_slippage_percent"`

	Exchange  ExchangeConfig  `json:"exchange" yaml:"exchange"`
	Telegram  TelegramConfig  `json:"telegram" yaml:"telegram"`
	APIServer APIServerConfig `json:"api_server" yaml:"api_server"`

	Risk RiskSection `json:"risk" yaml:"risk"`
}

// ExchangeConfig carries the exchange credentials and pair universe.
type ExchangeConfig struct {
	Name          string   `json:"name" yaml:"name"`
	Key           string   `json:"key" yaml:"key"`
	Secret        string   `json:"secret" yaml:"secret"`
	PairWhitelist []string `json:"pair_whitelist" yaml:"pair_whitelist"`
}

// TelegramConfig carries the notification credentials.
type TelegramConfig struct {
	Enabled bool   `json:"enabled" yaml:"enabled"`
	Token   string `json:"token" yaml:"token"`
	ChatID  string `json:"chat_id" yaml:"chat_id"`
}

// APIServerConfig carries the framework API server credentials.
type APIServerConfig struct {
	Enabled      bool   `json:"enabled" yaml:"enabled"`
	Password     string `json:"password" yaml:"password"`
	JWTSecretKey string `json:"jwt_secret_key" yaml:"jwt_secret_key"`
	WSToken      string `json:"ws_token" yaml:"ws_token"`
}

// RiskSection is the risk-limit block in file units (hours for the
// cooldown).
type RiskSection struct {
	MaxPositionSize        float64 `json:"max_position_size" yaml:"max_position_size"`
	MaxPortfolioAllocation float64 `json:"max_portfolio_allocation" yaml:"max_portfolio_allocation"`
	DailyLossLimit         float64 `json:"daily_loss_limit" yaml:"daily_loss_limit"`
	CircuitBreakerDrawdown float64 `json:"circuit_breaker_drawdown" yaml:"circuit_breaker_drawdown"`
	MaxConsecutiveLosses   int     `json:"max_consecutive_losses" yaml:"max_consecutive_losses"`
	CooldownHours          int     `json:"cooldown_hours" yaml:"cooldown_hours"`
}

// RiskConfig converts the file section to risk.Config. A zero section
// falls back to the defaults; validation happens in risk.NewManager.
func (r RiskSection) RiskConfig() risk.Config {
	if r == (RiskSection{}) {
		return risk.DefaultConfig()
	}
	return risk.Config{
		MaxPositionSize:        r.MaxPositionSize,
		MaxPortfolioAllocation: r.MaxPortfolioAllocation,
		DailyLossLimit:         r.DailyLossLimit,
		CircuitBreakerDrawdown: r.CircuitBreakerDrawdown,
		MaxConsecutiveLosses:   r.MaxConsecutiveLosses,
		Cooldown:               time.Duration(r.CooldownHours) * time.Hour,
	}
}

// LoadFromFile loads configuration from a file (YAML or JSON).
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	cfg := &Config{}

	// Try YAML first, fall back to JSON.
	if err := yaml.Unmarshal(data, cfg); err != nil {
		if jerr := json.Unmarshal(data, cfg); jerr != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}
	return cfg, nil
}

// ValidationResult collects everything wrong (or suspicious) with a
// configuration. Errors block; warnings do not.
type ValidationResult struct {
	Errors   []string
	Warnings []string
}

// Valid reports whether no errors were found.
func (r ValidationResult) Valid() bool {
	return len(r.Errors) == 0
}

// LiveStakeWarningLevel is the stake amount above which live mode
// draws a warning.
const LiveStakeWarningLevel = 50_000

// Validate checks required fields, value ranges and hardcoded
// credentials.
func (c *Config) Validate() ValidationResult {
	var res ValidationResult

	res.Errors = append(res.Errors, c.secretErrors()...)

	if c.MaxOpenTrades <= 0 {
		res.Errors = append(res.Errors, "max_open_trades must be a positive integer")
	}
	if c.StakeCurrency == "" {
		res.Errors = append(res.Errors, "stake_currency is required")
	}
	if c.StakeAmount <= 0 {
		res.Errors = append(res.Errors, "stake_amount must be a positive number")
	}
	if c.DryRun == nil {
		res.Errors = append(res.Errors, "dry_run is required")
	}
	if c.Exchange.Name != "" && len(c.Exchange.PairWhitelist) == 0 {
		res.Errors = append(res.Errors, "exchange.pair_whitelist cannot be empty")
	}

	if c.DryRun != nil && !*c.DryRun && c.StakeAmount > LiveStakeWarningLevel {
		res.Warnings = append(res.Warnings,
			fmt.Sprintf("Live mode with high stake_amount (%.0f). Please ensure this is intentional.", c.StakeAmount))
	}

	return res
}

// secretErrors flags credentials committed into the file instead of
// being injected through the environment.
func (c *Config) secretErrors() []string {
	fields := []struct {
		parent, key, value string
	}{
		{"telegram", "token", c.Telegram.Token},
		{"telegram", "chat_id", c.Telegram.ChatID},
		{"api_server", "password", c.APIServer.Password},
		{"api_server", "jwt_secret_key", c.APIServer.JWTSecretKey},
		{"api_server", "ws_token", c.APIServer.WSToken},
		{"exchange", "key", c.Exchange.Key},
		{"exchange", "secret", c.Exchange.Secret},
	}

	var errs []string
	for _, f := range fields {
		if isSafeSecretValue(f.value) {
			continue
		}
		errs = append(errs, fmt.Sprintf(
			"Hardcoded secret detected in '%s.%s'. Use FREQTRADE__%s__%s environment variable instead.",
			f.parent, f.key, strings.ToUpper(f.parent), strings.ToUpper(f.key)))
	}
	return errs
}

// isSafeSecretValue accepts empty values, ${VAR} placeholders and
// obvious sample values.
func isSafeSecretValue(value string) bool {
	if strings.TrimSpace(value) == "" {
		return true
	}
	if strings.HasPrefix(value, "${") {
		return true
	}
	lower := strings.ToLower(value)
	return strings.HasPrefix(lower, "your_") || strings.HasPrefix(lower, "change_this_")
}
