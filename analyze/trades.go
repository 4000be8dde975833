package analyze

import (
	"encoding/json"
	"fmt"
)

// TradeOutcome is the per-trade view shared by the dry-run evaluator,
// the Monte Carlo extraction and the reporting layer. Both the REST
// client and the trade-database reader produce it.
type TradeOutcome struct {
	IsOpen bool

	// Closed reports whether the trade carried a realized result
	// (close_profit_abs present) rather than defaulted zeros.
	Closed bool

	// CloseProfit is the realized return as a ratio (0.05 = +5%).
	CloseProfit float64

	// CloseProfitAbs is the realized profit in account currency.
	CloseProfitAbs float64

	ExitReason string
}

// ExtractTradeProfits pulls the per-trade absolute profit sequence out
// of a backtest result document, for Monte Carlo resampling. Both the
// flat layout ({"trades": [...]}) and the nested per-strategy layout
// are accepted; an empty trade list wraps ErrParse.
func ExtractTradeProfits(data []byte) ([]float64, error) {
	var doc struct {
		Trades   []backtestTrade `json:"trades"`
		Strategy map[string]struct {
			Trades []backtestTrade `json:"trades"`
		} `json:"strategy"`
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrParse, err)
	}

	trades := doc.Trades
	if len(trades) == 0 {
		for _, s := range doc.Strategy {
			if len(s.Trades) > 0 {
				trades = s.Trades
				break
			}
		}
	}
	if len(trades) == 0 {
		return nil, fmt.Errorf("%w: no trades found", ErrParse)
	}

	profits := make([]float64, len(trades))
	for i, t := range trades {
		profits[i] = t.ProfitAbs
	}
	return profits, nil
}

type backtestTrade struct {
	ProfitAbs float64 `json:"profit_abs"`
}
