package risk

import (
	"fmt"
	"time"
)

// Violation names one failed gate with a stable code and a
// human-readable message.
type Violation struct {
	Code string
	Msg  string
}

// Decision aggregates every gate result for one entry attempt.
// Allowed is false as soon as any gate fails; Violations carries the
// full list so the caller can log or alert on all of them at once.
type Decision struct {
	Allowed    bool
	Violations []Violation
}

func (d *Decision) add(code, msg string) {
	d.Violations = append(d.Violations, Violation{Code: code, Msg: msg})
	d.Allowed = false
}

// EntryIntent describes a proposed entry for EvaluateEntry.
type EntryIntent struct {
	Now time.Time

	// Stake is the proposed position stake in account currency.
	Stake float64

	// TotalExposure is the aggregate of existing open-position stakes.
	TotalExposure float64

	// Balance is the current account balance.
	Balance float64
}

// EvaluateEntry runs every admission gate against one proposed entry
// and collects all violations. It reads state but never mutates it.
func (m *Manager) EvaluateEntry(intent EntryIntent) Decision {
	d := Decision{Allowed: true}

	if intent.Stake <= 0 {
		d.add("NO_STAKE", "stake must be positive")
		return d
	}

	if !m.CheckPositionSize(intent.Stake) {
		d.add("POSITION_TOO_LARGE",
			fmt.Sprintf("stake %.2f exceeds max position size %.2f",
				intent.Stake, m.cfg.MaxPositionSize))
	}
	if intent.TotalExposure > 0 && !m.CheckPortfolioLimit(intent.Stake, intent.TotalExposure) {
		d.add("ALLOCATION_TOO_HIGH",
			fmt.Sprintf("stake %.2f exceeds %.0f%% of exposure %.2f",
				intent.Stake, 100*m.cfg.MaxPortfolioAllocation, intent.TotalExposure))
	}
	if !m.CheckConsecutiveLosses() {
		d.add("LOSS_STREAK",
			fmt.Sprintf("%d consecutive losses reached limit %d",
				m.snapshotLosses(), m.cfg.MaxConsecutiveLosses))
	}
	if !m.CheckCooldown(intent.Now) {
		d.add("COOLDOWN_ACTIVE",
			fmt.Sprintf("cooldown active until %s", m.cooldownDeadline().Format(time.RFC3339)))
	}
	if intent.Balance > 0 {
		if !m.CheckTrackedCircuitBreaker(intent.Balance) {
			d.add("CIRCUIT_BREAKER",
				fmt.Sprintf("drawdown from peak %.2f reached %.0f%% limit",
					m.PeakBalance(), 100*m.cfg.CircuitBreakerDrawdown))
		}
		if !m.CheckTrackedDailyLoss(intent.Now, intent.Balance) {
			d.add("DAILY_LOSS_LIMIT",
				fmt.Sprintf("daily loss %.2f exceeds %.0f%% of balance %.2f",
					m.DailyLoss(intent.Now), 100*m.cfg.DailyLossLimit, intent.Balance))
		}
	}

	return d
}

func (m *Manager) snapshotLosses() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consecutiveLosses
}

func (m *Manager) cooldownDeadline() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cooldownUntil
}
