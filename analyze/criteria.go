// Package analyze evaluates completed backtest and dry-run results
// against acceptance criteria. Everything here is a pure function over
// immutable inputs; logging belongs to the CLI layer.
package analyze

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrParse marks a malformed or incomplete backtest result document.
// Missing required fields are errors, never silently-zeroed defaults.
var ErrParse = errors.New("analyze: malformed backtest result")

// Metrics summarizes one completed backtest run. Immutable once built.
type Metrics struct {
	WinRate        float64 // fraction of winning trades, 0-1
	ProfitFactor   float64 // gross profit / gross loss
	SharpeRatio    float64
	MaxDrawdown    float64 // fraction from peak, 0-1; lower is better
	TotalTrades    int
	TotalProfitPct float64
}

// Result is the outcome of evaluating Metrics against both threshold
// tiers. Details lists every metric in a fixed order for reproducible
// output.
type Result struct {
	PassedMinimum bool
	PassedTarget  bool
	Details       []string
}

// Acceptance thresholds. Minimum failures mean the strategy is not fit
// to run; targets are the ideal performance envelope.
const (
	MinWinRate      = 0.50
	TargetWinRate   = 0.55
	MinProfitFactor = 1.2
	TargetPF        = 1.5
	MinSharpe       = 0.5
	TargetSharpe    = 0.8
	MaxDDMinimum    = 0.20
	MaxDDTarget     = 0.15
	MinTrades       = 30
	TargetTrades    = 50
)

type criterion struct {
	name          string
	value         float64
	minimum       float64
	target        float64
	lowerIsBetter bool
}

func (c criterion) passes(threshold float64) bool {
	if c.lowerIsBetter {
		return c.value <= threshold
	}
	return c.value >= threshold
}

func (c criterion) detail() string {
	cmp := ">="
	if c.lowerIsBetter {
		cmp = "<="
	}
	return fmt.Sprintf("%s %.2f — minimum %s %.2f: %s, target %s %.2f: %s",
		c.name, c.value,
		cmp, c.minimum, passFail(c.passes(c.minimum)),
		cmp, c.target, passFail(c.passes(c.target)))
}

func passFail(ok bool) string {
	if ok {
		return "pass"
	}
	return "FAIL"
}

// Evaluate compares backtest metrics against the minimum and target
// tiers. Both tiers are evaluated independently; inconsistent metrics
// never make a target pass imply a minimum pass.
func Evaluate(m Metrics) Result {
	criteria := []criterion{
		{name: "win_rate", value: m.WinRate, minimum: MinWinRate, target: TargetWinRate},
		{name: "profit_factor", value: m.ProfitFactor, minimum: MinProfitFactor, target: TargetPF},
		{name: "sharpe_ratio", value: m.SharpeRatio, minimum: MinSharpe, target: TargetSharpe},
		{name: "max_drawdown", value: m.MaxDrawdown, minimum: MaxDDMinimum, target: MaxDDTarget, lowerIsBetter: true},
		{name: "total_trades", value: float64(m.TotalTrades), minimum: MinTrades, target: TargetTrades},
	}

	res := Result{PassedMinimum: true, PassedTarget: true}
	for _, c := range criteria {
		if !c.passes(c.minimum) {
			res.PassedMinimum = false
		}
		if !c.passes(c.target) {
			res.PassedTarget = false
		}
		res.Details = append(res.Details, c.detail())
	}
	return res
}

// ParseBacktestJSON extracts the single top-level strategy's
// results_metrics block from a backtest result document shaped like
//
//	{"strategy": {"<Name>": {"results_metrics": {...}}}}
//
// The source key for the Sharpe ratio is "sharpe"; the trade count may
// appear as "trades" or "total_trades". Any absent or non-numeric
// required field returns an error wrapping ErrParse.
func ParseBacktestJSON(data []byte) (Metrics, error) {
	var doc struct {
		Strategy map[string]struct {
			ResultsMetrics map[string]json.RawMessage `json:"results_metrics"`
		} `json:"strategy"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return Metrics{}, fmt.Errorf("%w: %v", ErrParse, err)
	}
	if len(doc.Strategy) == 0 {
		return Metrics{}, fmt.Errorf("%w: missing strategy block", ErrParse)
	}

	// Multi-strategy documents pick the lexicographically first name so
	// repeated runs over the same file stay reproducible.
	names := make([]string, 0, len(doc.Strategy))
	for name := range doc.Strategy {
		names = append(names, name)
	}
	sort.Strings(names)

	name := names[0]
	fields := doc.Strategy[name].ResultsMetrics
	if fields == nil {
		return Metrics{}, fmt.Errorf("%w: strategy %q has no results_metrics", ErrParse, name)
	}

	var m Metrics
	var err error
	if m.WinRate, err = numField(fields, "win_rate"); err != nil {
		return Metrics{}, err
	}
	if m.ProfitFactor, err = numField(fields, "profit_factor"); err != nil {
		return Metrics{}, err
	}
	if m.SharpeRatio, err = numField(fields, "sharpe"); err != nil {
		return Metrics{}, err
	}
	if m.MaxDrawdown, err = numField(fields, "max_drawdown"); err != nil {
		return Metrics{}, err
	}
	trades, err := numField(fields, "trades")
	if errors.Is(err, ErrParse) {
		trades, err = numField(fields, "total_trades")
	}
	if err != nil {
		return Metrics{}, err
	}
	m.TotalTrades = int(trades)
	if m.TotalProfitPct, err = numField(fields, "total_profit_pct"); err != nil {
		return Metrics{}, err
	}

	return m, nil
}

// ParseBacktestFile reads and parses a backtest result document from
// disk.
func ParseBacktestFile(path string) (Metrics, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Metrics{}, fmt.Errorf("read backtest result: %w", err)
	}
	return ParseBacktestJSON(data)
}

func numField(fields map[string]json.RawMessage, key string) (float64, error) {
	raw, ok := fields[key]
	if !ok {
		return 0, fmt.Errorf("%w: missing field %q", ErrParse, key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("%w: field %q is not a number (%s)", ErrParse, key, string(raw))
	}
	return v, nil
}
