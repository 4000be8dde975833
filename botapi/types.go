package botapi

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/rustyeddy/dcabot/analyze"
)

// Trade mirrors the framework API's trade record, keeping only the
// fields the evaluation scripts consume.
type Trade struct {
	TradeID   int    `json:"trade_id"`
	Pair      string `json:"pair"`
	IsOpen    bool   `json:"is_open"`
	CloseDate string `json:"close_date"`

	// CloseProfit is the realized return ratio; nil while open.
	CloseProfit *float64 `json:"close_profit"`

	// CloseProfitAbs is the realized profit in stake currency; its
	// presence marks the trade as closed with a real result.
	CloseProfitAbs *float64 `json:"close_profit_abs"`

	ExitReason string `json:"exit_reason"`
}

// Outcome converts the API record to the shared evaluation view.
func (t Trade) Outcome() analyze.TradeOutcome {
	out := analyze.TradeOutcome{
		IsOpen:     t.IsOpen,
		ExitReason: t.ExitReason,
	}
	if t.CloseProfitAbs != nil {
		out.Closed = true
		out.CloseProfitAbs = *t.CloseProfitAbs
	}
	if t.CloseProfit != nil {
		out.CloseProfit = *t.CloseProfit
	}
	return out
}

// Outcomes converts a batch of trades.
func Outcomes(trades []Trade) []analyze.TradeOutcome {
	out := make([]analyze.TradeOutcome, len(trades))
	for i, t := range trades {
		out[i] = t.Outcome()
	}
	return out
}

// ProfitSummary mirrors the profit endpoint's response.
type ProfitSummary struct {
	ProfitAllCoin   float64 `json:"profit_all_coin"`
	ProfitAllPct    float64 `json:"profit_all_percent_sum"`
	TradeCount      int     `json:"trade_count"`
	ClosedTradeBest string  `json:"best_pair"`
}

// BalanceSummary mirrors the balance endpoint's response.
type BalanceSummary struct {
	Total float64 `json:"total"`
	Value float64 `json:"value"`
	Stake string  `json:"stake"`
}

// LogEntry is one row of the logs endpoint, which the server emits as
// a positional array: [date, timestamp, logger, level, message].
type LogEntry struct {
	Time    time.Time
	Logger  string
	Level   string
	Message string
}

const logTimeLayout = "2006-01-02 15:04:05"

// UnmarshalJSON decodes the positional array form.
func (e *LogEntry) UnmarshalJSON(data []byte) error {
	var row []json.RawMessage
	if err := json.Unmarshal(data, &row); err != nil {
		return fmt.Errorf("botapi: log entry is not an array: %w", err)
	}
	if len(row) < 5 {
		return fmt.Errorf("botapi: log entry has %d fields, want 5", len(row))
	}

	var dateStr string
	if err := json.Unmarshal(row[0], &dateStr); err != nil {
		return fmt.Errorf("botapi: log entry date: %w", err)
	}
	if t, err := time.Parse(logTimeLayout, dateStr); err == nil {
		e.Time = t
	}

	if err := json.Unmarshal(row[2], &e.Logger); err != nil {
		return fmt.Errorf("botapi: log entry logger: %w", err)
	}
	if err := json.Unmarshal(row[3], &e.Level); err != nil {
		return fmt.Errorf("botapi: log entry level: %w", err)
	}
	if err := json.Unmarshal(row[4], &e.Message); err != nil {
		return fmt.Errorf("botapi: log entry message: %w", err)
	}
	return nil
}

// LogTimestamps extracts the timestamp column for uptime analysis,
// skipping unparsable entries.
func LogTimestamps(entries []LogEntry) []time.Time {
	var out []time.Time
	for _, e := range entries {
		if !e.Time.IsZero() {
			out = append(out, e.Time)
		}
	}
	return out
}

// LogLines renders entries as "LEVEL message" lines for error-rate
// analysis.
func LogLines(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Level + " " + e.Message
	}
	return out
}
