// Package tradedb reads the trading framework's SQLite trade database
// directly. It is the fallback data source for the dry-run checker and
// the daily report when the REST API is unreachable; all access is
// read-only.
package tradedb

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/rustyeddy/dcabot/analyze"
)

// DefaultFileName is the stock dry-run database file name.
const DefaultFileName = "tradesv3.dryrun.sqlite"

// DB wraps a read-only connection to the framework's trade database.
type DB struct {
	db *sql.DB
}

// Open opens the database at path in read-only mode.
func Open(path string) (*DB, error) {
	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("tradedb: open %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

// Close releases the underlying connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// Trades returns every trade row as the shared evaluation view.
func (d *DB) Trades(ctx context.Context) ([]analyze.TradeOutcome, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT is_open, close_profit, close_profit_abs, exit_reason FROM trades`)
	if err != nil {
		return nil, fmt.Errorf("tradedb: query trades: %w", err)
	}
	defer rows.Close()

	var out []analyze.TradeOutcome
	for rows.Next() {
		var isOpen int
		var closeProfit, closeProfitAbs sql.NullFloat64
		var exitReason sql.NullString
		if err := rows.Scan(&isOpen, &closeProfit, &closeProfitAbs, &exitReason); err != nil {
			return nil, fmt.Errorf("tradedb: scan trade: %w", err)
		}
		t := analyze.TradeOutcome{
			IsOpen:     isOpen != 0,
			ExitReason: exitReason.String,
		}
		if closeProfitAbs.Valid {
			t.Closed = true
			t.CloseProfitAbs = closeProfitAbs.Float64
		}
		if closeProfit.Valid {
			t.CloseProfit = closeProfit.Float64
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// OpenPositionCount counts trades that are still open.
func (d *DB) OpenPositionCount(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM trades WHERE is_open = 1`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("tradedb: count open trades: %w", err)
	}
	return n, nil
}

// DailyPnL sums realized profit for trades closed on the given
// calendar day ("YYYY-MM-DD") and returns the trade count with it.
func (d *DB) DailyPnL(ctx context.Context, day string) (int, float64, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT close_profit_abs FROM trades WHERE close_date LIKE ?`, day+"%")
	if err != nil {
		return 0, 0, fmt.Errorf("tradedb: query daily pnl: %w", err)
	}
	defer rows.Close()

	count := 0
	total := 0.0
	for rows.Next() {
		var p sql.NullFloat64
		if err := rows.Scan(&p); err != nil {
			return 0, 0, fmt.Errorf("tradedb: scan daily pnl: %w", err)
		}
		count++
		if p.Valid {
			total += p.Float64
		}
	}
	return count, total, rows.Err()
}

// CumulativePnL sums realized profit over all closed trades.
func (d *DB) CumulativePnL(ctx context.Context) (float64, error) {
	var total sql.NullFloat64
	err := d.db.QueryRowContext(ctx,
		`SELECT SUM(close_profit_abs) FROM trades WHERE close_date IS NOT NULL`).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("tradedb: sum pnl: %w", err)
	}
	return total.Float64, nil
}

// IntegrityCheck runs SQLite's own integrity check and returns its
// verdict ("ok" for a sound file).
func (d *DB) IntegrityCheck(ctx context.Context) (string, error) {
	var verdict string
	err := d.db.QueryRowContext(ctx, `PRAGMA integrity_check`).Scan(&verdict)
	if err != nil {
		return "", fmt.Errorf("tradedb: integrity check: %w", err)
	}
	return verdict, nil
}

// HasTradesTable reports whether the trades table exists.
func (d *DB) HasTradesTable(ctx context.Context) (bool, error) {
	var name string
	err := d.db.QueryRowContext(ctx,
		`SELECT name FROM sqlite_master WHERE type='table' AND name='trades'`).Scan(&name)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("tradedb: table lookup: %w", err)
	}
	return true, nil
}

// TradeCount counts every trade row, open or closed.
func (d *DB) TradeCount(ctx context.Context) (int, error) {
	var n int
	err := d.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM trades`).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("tradedb: count trades: %w", err)
	}
	return n, nil
}

// OpenTrade is a still-open position with its entry time.
type OpenTrade struct {
	ID       int
	Pair     string
	OpenDate time.Time
}

// openDateLayouts covers the timestamp shapes the framework writes.
var openDateLayouts = []string{
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// OpenTrades returns every open trade. Rows with an unparsable
// open_date keep a zero time rather than failing the whole query.
func (d *DB) OpenTrades(ctx context.Context) ([]OpenTrade, error) {
	rows, err := d.db.QueryContext(ctx,
		`SELECT id, pair, open_date FROM trades WHERE is_open = 1`)
	if err != nil {
		return nil, fmt.Errorf("tradedb: query open trades: %w", err)
	}
	defer rows.Close()

	var out []OpenTrade
	for rows.Next() {
		var t OpenTrade
		var openDate sql.NullString
		if err := rows.Scan(&t.ID, &t.Pair, &openDate); err != nil {
			return nil, fmt.Errorf("tradedb: scan open trade: %w", err)
		}
		if openDate.Valid {
			for _, layout := range openDateLayouts {
				if ts, err := time.Parse(layout, openDate.String); err == nil {
					t.OpenDate = ts.UTC()
					break
				}
			}
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// Find locates the dry-run database under a project root. Search
// order: the db_url key of user_data/config/config.json, then the
// project root, then user_data/. Empty files are skipped.
func Find(root string) (string, bool) {
	if p := fromConfig(filepath.Join(root, "user_data", "config", "config.json")); p != "" {
		return p, true
	}
	for _, p := range []string{
		filepath.Join(root, DefaultFileName),
		filepath.Join(root, "user_data", DefaultFileName),
	} {
		if info, err := os.Stat(p); err == nil && info.Size() > 0 {
			return p, true
		}
	}
	return "", false
}

func fromConfig(configPath string) string {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return ""
	}
	var cfg struct {
		DBURL string `json:"db_url"`
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return ""
	}
	const prefix = "sqlite:///"
	if !strings.HasPrefix(cfg.DBURL, prefix) {
		return ""
	}
	p := strings.TrimPrefix(cfg.DBURL, prefix)
	if info, err := os.Stat(p); err == nil && info.Size() > 0 {
		return p
	}
	return ""
}
