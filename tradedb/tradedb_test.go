package tradedb

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// seedDB creates a miniature framework trade database on disk.
func seedDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)

	db, err := sql.Open("sqlite3", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE trades (
		id INTEGER PRIMARY KEY,
		pair TEXT,
		is_open INTEGER,
		open_date TEXT,
		close_date TEXT,
		close_profit REAL,
		close_profit_abs REAL,
		exit_reason TEXT
	)`)
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO trades
		(pair, is_open, open_date, close_date, close_profit, close_profit_abs, exit_reason) VALUES
		('BTC/USDT', 0, '2026-08-28 14:00:00', '2026-08-29 14:00:00', 0.05, 12.5, 'roi'),
		('ETH/USDT', 0, '2026-08-29 09:30:00', '2026-08-30 09:30:00', -0.02, -4.0, 'exit_signal'),
		('SOL/USDT', 0, '2026-08-30 08:45:00', '2026-08-30 16:45:00', 0.01, 2.5, 'roi'),
		('ADA/USDT', 1, '2026-08-30 18:00:00', NULL, NULL, NULL, NULL)`)
	require.NoError(t, err)
	return path
}

func TestTrades(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	trades, err := db.Trades(context.Background())
	require.NoError(t, err)
	require.Len(t, trades, 4)

	assert.True(t, trades[0].Closed)
	assert.InDelta(t, 0.05, trades[0].CloseProfit, 1e-12)
	assert.InDelta(t, 12.5, trades[0].CloseProfitAbs, 1e-12)
	assert.Equal(t, "roi", trades[0].ExitReason)

	open := trades[3]
	assert.True(t, open.IsOpen)
	assert.False(t, open.Closed)
}

func TestOpenPositionCount(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	n, err := db.OpenPositionCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestDailyPnL(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	count, pnl, err := db.DailyPnL(context.Background(), "2026-08-30")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	assert.InDelta(t, -1.5, pnl, 1e-9)

	count, pnl, err = db.DailyPnL(context.Background(), "2026-01-01")
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Zero(t, pnl)
}

func TestCumulativePnL(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	total, err := db.CumulativePnL(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 11.0, total, 1e-9)
}

func TestIntegrityAndSchema(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	verdict, err := db.IntegrityCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "ok", verdict)

	hasTable, err := db.HasTradesTable(context.Background())
	require.NoError(t, err)
	assert.True(t, hasTable)

	count, err := db.TradeCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestOpenTrades(t *testing.T) {
	t.Parallel()

	db, err := Open(seedDB(t))
	require.NoError(t, err)
	defer db.Close()

	open, err := db.OpenTrades(context.Background())
	require.NoError(t, err)
	require.Len(t, open, 1)

	assert.Equal(t, "ADA/USDT", open[0].Pair)
	assert.Equal(t, time.Date(2026, 8, 30, 18, 0, 0, 0, time.UTC), open[0].OpenDate)
}

func TestFind(t *testing.T) {
	t.Parallel()

	t.Run("root file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		path := filepath.Join(root, DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

		got, ok := Find(root)
		assert.True(t, ok)
		assert.Equal(t, path, got)
	})

	t.Run("user_data file", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "user_data"), 0o755))
		path := filepath.Join(root, "user_data", DefaultFileName)
		require.NoError(t, os.WriteFile(path, []byte("stub"), 0o644))

		got, ok := Find(root)
		assert.True(t, ok)
		assert.Equal(t, path, got)
	})

	t.Run("db_url in config wins", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		dbPath := filepath.Join(root, "custom.sqlite")
		require.NoError(t, os.WriteFile(dbPath, []byte("stub"), 0o644))

		cfgDir := filepath.Join(root, "user_data", "config")
		require.NoError(t, os.MkdirAll(cfgDir, 0o755))
		cfg := `{"db_url": "sqlite:///` + dbPath + `"}`
		require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(cfg), 0o644))

		got, ok := Find(root)
		assert.True(t, ok)
		assert.Equal(t, dbPath, got)
	})

	t.Run("empty file skipped", func(t *testing.T) {
		t.Parallel()
		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, DefaultFileName), nil, 0o644))

		_, ok := Find(root)
		assert.False(t, ok)
	})

	t.Run("nothing found", func(t *testing.T) {
		t.Parallel()
		_, ok := Find(t.TempDir())
		assert.False(t, ok)
	})
}
