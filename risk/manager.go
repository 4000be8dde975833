// Package risk gates every capital-allocation decision a strategy
// makes: position sizing, portfolio allocation, daily loss limits, a
// drawdown circuit breaker and a consecutive-loss cooldown.
//
// Check* methods are read-only and side-effect free; state only changes
// through the explicit Record*/Trigger*/Update* mutators. A caller may
// probe admissibility repeatedly without drift. A false check means
// "do not proceed" — the caller decides whether to skip, log or alert.
//
// State lives in memory only and resets on process restart; use
// Snapshot/Restore at the boundary if durability across restarts is
// needed.
package risk

import (
	"sync"
	"time"
)

// Manager tracks the mutable risk state for one strategy process.
// It is safe for concurrent use: strategy callbacks for different
// pairs share the one instance.
type Manager struct {
	cfg Config

	mu                sync.Mutex
	consecutiveLosses int
	cooldownUntil     time.Time
	lossDay           civilDay
	lossTotal         float64
	peakBalance       float64
}

// civilDay is a calendar day, location-free once extracted.
type civilDay struct {
	year  int
	month time.Month
	day   int
}

func dayOf(t time.Time) civilDay {
	y, m, d := t.Date()
	return civilDay{year: y, month: m, day: d}
}

// NewManager validates cfg and returns a Manager with zeroed state.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Manager{cfg: cfg}, nil
}

// Config returns the immutable limits the manager was built with.
func (m *Manager) Config() Config {
	return m.cfg
}

// CheckPositionSize admits a proposed stake iff it does not exceed the
// configured maximum. The boundary is inclusive.
func (m *Manager) CheckPositionSize(proposed float64) bool {
	return proposed <= m.cfg.MaxPositionSize
}

// CheckPortfolioLimit admits a proposed stake iff it stays within the
// allocation fraction of totalExposure. The second argument is the
// caller-supplied aggregate of existing open-position stakes, not full
// account equity.
func (m *Manager) CheckPortfolioLimit(proposed, totalExposure float64) bool {
	return proposed <= totalExposure*m.cfg.MaxPortfolioAllocation
}

// CheckDailyLossLimit admits iff |loss| is within the daily-loss
// fraction of balance.
func (m *Manager) CheckDailyLossLimit(loss, balance float64) bool {
	if loss < 0 {
		loss = -loss
	}
	return loss <= balance*m.cfg.DailyLossLimit
}

// CheckCircuitBreaker admits iff drawdown from peak stays strictly
// below the configured fraction. At or above the threshold trading
// must halt; the caller is responsible for blocking all new entries.
func (m *Manager) CheckCircuitBreaker(balance, peak float64) bool {
	if peak <= 0 {
		return true
	}
	drawdown := (peak - balance) / peak
	return drawdown < m.cfg.CircuitBreakerDrawdown
}

// CheckTrackedCircuitBreaker runs the circuit breaker against the
// internally tracked peak balance.
func (m *Manager) CheckTrackedCircuitBreaker(balance float64) bool {
	m.mu.Lock()
	peak := m.peakBalance
	m.mu.Unlock()
	return m.CheckCircuitBreaker(balance, peak)
}

// RecordTradeResult increments the consecutive-loss counter on a loss
// and resets it on any winning trade.
func (m *Manager) RecordTradeResult(isLoss bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if isLoss {
		m.consecutiveLosses++
	} else {
		m.consecutiveLosses = 0
	}
}

// CheckConsecutiveLosses admits iff the losing streak is still below
// the configured maximum.
func (m *Manager) CheckConsecutiveLosses() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.consecutiveLosses < m.cfg.MaxConsecutiveLosses
}

// TriggerCooldown suspends new entries until at plus the configured
// cooldown window.
func (m *Manager) TriggerCooldown(at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cooldownUntil = at.Add(m.cfg.Cooldown)
}

// CheckCooldown admits iff no cooldown is active at the given time.
// The boundary is inclusive: trading resumes exactly at cooldownUntil.
func (m *Manager) CheckCooldown(at time.Time) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cooldownUntil.IsZero() {
		return true
	}
	return !at.Before(m.cooldownUntil)
}

// RecordDailyLoss accumulates a realized loss into the bucket for at's
// calendar day. A new day starts a fresh bucket; other days are
// irrelevant.
func (m *Manager) RecordDailyLoss(amount float64, at time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	day := dayOf(at)
	if m.lossDay != day {
		m.lossDay = day
		m.lossTotal = 0
	}
	m.lossTotal += amount
}

// DailyLoss returns the accumulated loss for at's calendar day.
func (m *Manager) DailyLoss(at time.Time) float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lossDay != dayOf(at) {
		return 0
	}
	return m.lossTotal
}

// CheckTrackedDailyLoss runs the daily-loss limit against the
// internally tracked accumulator for at's calendar day.
func (m *Manager) CheckTrackedDailyLoss(at time.Time, balance float64) bool {
	return m.DailyLoss(at) <= balance*m.cfg.DailyLossLimit
}

// UpdateBalance raises the tracked peak balance if the new balance
// exceeds it. The peak is monotonically non-decreasing.
func (m *Manager) UpdateBalance(balance float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if balance > m.peakBalance {
		m.peakBalance = balance
	}
}

// PeakBalance returns the tracked high-water mark.
func (m *Manager) PeakBalance() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.peakBalance
}

// State is a point-in-time copy of the manager's mutable fields, for
// optional persistence across restarts.
type State struct {
	ConsecutiveLosses int       `json:"consecutive_losses"`
	CooldownUntil     time.Time `json:"cooldown_until"`
	LossDate          time.Time `json:"loss_date"`
	LossTotal         float64   `json:"loss_total"`
	PeakBalance       float64   `json:"peak_balance"`
}

// Snapshot copies the current mutable state.
func (m *Manager) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	var lossDate time.Time
	if m.lossDay != (civilDay{}) {
		lossDate = time.Date(m.lossDay.year, m.lossDay.month, m.lossDay.day, 0, 0, 0, 0, time.UTC)
	}
	return State{
		ConsecutiveLosses: m.consecutiveLosses,
		CooldownUntil:     m.cooldownUntil,
		LossDate:          lossDate,
		LossTotal:         m.lossTotal,
		PeakBalance:       m.peakBalance,
	}
}

// Restore replaces the mutable state with a previously taken snapshot.
func (m *Manager) Restore(s State) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.consecutiveLosses = s.ConsecutiveLosses
	m.cooldownUntil = s.CooldownUntil
	if s.LossDate.IsZero() {
		m.lossDay = civilDay{}
	} else {
		m.lossDay = dayOf(s.LossDate)
	}
	m.lossTotal = s.LossTotal
	m.peakBalance = s.PeakBalance
}
