// Package diagnose runs health checks against a deployed bot: API
// reachability, trade-database integrity, log freshness, database path
// consistency and stale open trades. Process supervision, environment
// injection and Telegram delivery belong to the deployment tooling and
// are not checked here.
package diagnose

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rustyeddy/dcabot/botapi"
	"github.com/rustyeddy/dcabot/tradedb"
)

// Status is the verdict of a single check.
type Status int

const (
	StatusOK Status = iota
	StatusWarning
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusWarning:
		return "WARNING"
	default:
		return "ERROR"
	}
}

// Result is one named check outcome.
type Result struct {
	Name    string
	Status  Status
	Message string
}

// Overall is the aggregate health verdict.
type Overall int

const (
	Healthy Overall = iota
	Degraded
	Unhealthy
)

func (o Overall) String() string {
	switch o {
	case Healthy:
		return "HEALTHY"
	case Degraded:
		return "DEGRADED"
	default:
		return "UNHEALTHY"
	}
}

// Report aggregates every check.
type Report struct {
	Results []Result
	Overall Overall
}

// MaxLogAge is the freshness window: a bot that has not logged for
// longer is probably wedged.
const MaxLogAge = 10 * time.Minute

// StaleTradeAge marks open trades that have sat unclosed suspiciously
// long for a DCA strategy.
const StaleTradeAge = 7 * 24 * time.Hour

// CheckAPI verifies the framework API answers a ping.
func CheckAPI(ctx context.Context, client *botapi.Client) Result {
	if err := client.Ping(ctx); err != nil {
		return Result{Name: "api_server", Status: StatusError,
			Message: fmt.Sprintf("API server unreachable: %v", err)}
	}
	return Result{Name: "api_server", Status: StatusOK,
		Message: "API server responded (pong)"}
}

// CheckDatabase verifies the trade database exists, is non-empty,
// passes SQLite's integrity check and has a trades table.
func CheckDatabase(ctx context.Context, dbPath string) Result {
	res := Result{Name: "database"}

	info, err := os.Stat(dbPath)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database not found: %s", dbPath)
		return res
	}
	if info.Size() == 0 {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database is 0 bytes: %s", dbPath)
		return res
	}

	db, err := tradedb.Open(dbPath)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database error: %v", err)
		return res
	}
	defer db.Close()

	verdict, err := db.IntegrityCheck(ctx)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database error: %v", err)
		return res
	}
	if verdict != "ok" {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Integrity check failed: %s", verdict)
		return res
	}

	hasTable, err := db.HasTradesTable(ctx)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database error: %v", err)
		return res
	}
	if !hasTable {
		res.Status = StatusError
		res.Message = "trades table not found"
		return res
	}

	count, err := db.TradeCount(ctx)
	if err != nil {
		res.Status = StatusError
		res.Message = fmt.Sprintf("Database error: %v", err)
		return res
	}
	res.Status = StatusOK
	res.Message = fmt.Sprintf("Database OK, %d trades found", count)
	return res
}

// CheckLogFreshness verifies the log file was modified within MaxLogAge
// of now. A stale log is a warning, not an error: the bot may simply
// have nothing to say.
func CheckLogFreshness(logPath string, now time.Time) Result {
	info, err := os.Stat(logPath)
	if err != nil {
		return Result{Name: "log_freshness", Status: StatusError,
			Message: fmt.Sprintf("Log file not found: %s", logPath)}
	}

	age := now.Sub(info.ModTime())
	if age <= MaxLogAge {
		return Result{Name: "log_freshness", Status: StatusOK,
			Message: fmt.Sprintf("Log updated %.1f minutes ago", age.Minutes())}
	}
	return Result{Name: "log_freshness", Status: StatusWarning,
		Message: fmt.Sprintf("Log is %.1f minutes old (threshold: %.0f)",
			age.Minutes(), MaxLogAge.Minutes())}
}

// CheckPathConsistency looks for the ghost-file failure mode: a 0-byte
// database under user_data/ shadowing real data at the project root.
func CheckPathConsistency(root string) Result {
	userDataDB := filepath.Join(root, "user_data", tradedb.DefaultFileName)
	rootDB := filepath.Join(root, tradedb.DefaultFileName)

	userInfo, userErr := os.Stat(userDataDB)
	rootInfo, rootErr := os.Stat(rootDB)

	if userErr == nil && userInfo.Size() == 0 && rootErr == nil && rootInfo.Size() > 0 {
		return Result{Name: "db_path_consistency", Status: StatusWarning,
			Message: fmt.Sprintf("Ghost file detected: %s is 0 bytes, but %s has %d bytes",
				userDataDB, rootDB, rootInfo.Size())}
	}
	return Result{Name: "db_path_consistency", Status: StatusOK,
		Message: "No database path inconsistency detected"}
}

// CheckOpenTrades flags open trades older than StaleTradeAge.
func CheckOpenTrades(ctx context.Context, dbPath string, now time.Time) Result {
	if _, err := os.Stat(dbPath); err != nil {
		return Result{Name: "open_trades", Status: StatusError,
			Message: fmt.Sprintf("Database not found: %s", dbPath)}
	}

	db, err := tradedb.Open(dbPath)
	if err != nil {
		return Result{Name: "open_trades", Status: StatusError,
			Message: fmt.Sprintf("Open trade check failed: %v", err)}
	}
	defer db.Close()

	open, err := db.OpenTrades(ctx)
	if err != nil {
		return Result{Name: "open_trades", Status: StatusError,
			Message: fmt.Sprintf("Open trade check failed: %v", err)}
	}
	if len(open) == 0 {
		return Result{Name: "open_trades", Status: StatusOK, Message: "No open trades"}
	}

	threshold := now.Add(-StaleTradeAge)
	var stale []string
	for _, t := range open {
		if !t.OpenDate.IsZero() && t.OpenDate.Before(threshold) {
			stale = append(stale, fmt.Sprintf("%s(id=%d)", t.Pair, t.ID))
		}
	}
	if len(stale) > 0 {
		return Result{Name: "open_trades", Status: StatusWarning,
			Message: fmt.Sprintf("Stale open trades (>7 days): %s", strings.Join(stale, ", "))}
	}
	return Result{Name: "open_trades", Status: StatusOK,
		Message: fmt.Sprintf("%d open trade(s), all within 7 days", len(open))}
}

// Run executes every check against the bot rooted at root and
// aggregates the verdicts: any error is unhealthy, any warning without
// an error is degraded.
func Run(ctx context.Context, client *botapi.Client, root, logPath string, now time.Time) Report {
	dbPath := filepath.Join(root, tradedb.DefaultFileName)
	if found, ok := tradedb.Find(root); ok {
		dbPath = found
	}
	if logPath == "" {
		logPath = filepath.Join(root, "user_data", "logs", "freqtrade.log")
	}

	results := []Result{
		CheckAPI(ctx, client),
		CheckDatabase(ctx, dbPath),
		CheckLogFreshness(logPath, now),
		CheckPathConsistency(root),
		CheckOpenTrades(ctx, dbPath, now),
	}

	overall := Healthy
	for _, r := range results {
		switch r.Status {
		case StatusError:
			return Report{Results: results, Overall: Unhealthy}
		case StatusWarning:
			overall = Degraded
		}
	}
	return Report{Results: results, Overall: overall}
}

// Format renders the report as fixed-width text.
func Format(r Report) string {
	rule := strings.Repeat("=", 60)
	lines := []string{rule, "Bot Diagnostic Report", rule}
	for _, res := range r.Results {
		lines = append(lines, fmt.Sprintf("  %-12s %s: %s",
			"["+res.Status.String()+"]", res.Name, res.Message))
	}
	lines = append(lines,
		strings.Repeat("-", 60),
		fmt.Sprintf("Overall Status: %s", r.Overall),
		rule,
	)
	return strings.Join(lines, "\n")
}
