package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func newTestSQLite(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, s.Migrate(context.Background()))
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSQLiteRunLifecycle(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	run, err := s.CreateRun(ctx, "data_j.xls", 100)
	require.NoError(t, err)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, model.RunStatusRunning, run.Status)
	assert.Equal(t, 100, run.TickerCount)

	err = s.CompleteRun(ctx, run.ID, model.RunStatusComplete, 97, "output/stock_data_20260101_120000.csv", "")
	require.NoError(t, err)

	runs, err := s.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, run.ID, runs[0].ID)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 97, runs[0].FetchedCount)
	assert.Equal(t, "output/stock_data_20260101_120000.csv", runs[0].OutputPath)
	assert.Empty(t, runs[0].Error)
}

func TestSQLiteCompleteRunNotFound(t *testing.T) {
	s := newTestSQLite(t)

	err := s.CompleteRun(context.Background(), "no-such-run", model.RunStatusFailed, 0, "", "boom")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLiteListRunsOrderAndLimit(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	var ids []string
	for i := 0; i < 3; i++ {
		run, err := s.CreateRun(ctx, "data_j.xls", i)
		require.NoError(t, err)
		ids = append(ids, run.ID)
		time.Sleep(5 * time.Millisecond)
	}

	runs, err := s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, ids[2], runs[0].ID, "newest first")
	assert.Equal(t, ids[1], runs[1].ID)
}

func TestSQLiteQuoteCache(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	got, err := s.GetCachedQuote(ctx, "7203")
	require.NoError(t, err)
	assert.Nil(t, got, "miss returns nil without error")

	q := &CachedQuote{
		Record: model.FinancialRecord{
			Ticker:    "7203",
			MarketCap: model.Float(1e12),
		},
		Earnings: model.EarningsHistory{Y0: model.Float(100), Y1: model.Float(80)},
	}
	require.NoError(t, s.SetCachedQuote(ctx, "7203", q, time.Hour))

	got, err = s.GetCachedQuote(ctx, "7203")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "7203", got.Record.Ticker)
	require.NotNil(t, got.Record.MarketCap)
	assert.Equal(t, 1e12, *got.Record.MarketCap)
	require.NotNil(t, got.Earnings.Y0)
	assert.Equal(t, 100.0, *got.Earnings.Y0)
	assert.Nil(t, got.Earnings.Y2)
}

func TestSQLiteQuoteCacheUpsert(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	first := &CachedQuote{Record: model.FinancialRecord{Ticker: "7203", MarketCap: model.Float(1)}}
	require.NoError(t, s.SetCachedQuote(ctx, "7203", first, time.Hour))

	second := &CachedQuote{Record: model.FinancialRecord{Ticker: "7203", MarketCap: model.Float(2)}}
	require.NoError(t, s.SetCachedQuote(ctx, "7203", second, time.Hour))

	got, err := s.GetCachedQuote(ctx, "7203")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2.0, *got.Record.MarketCap)
}

func TestSQLiteQuoteCacheExpiry(t *testing.T) {
	s := newTestSQLite(t)
	ctx := context.Background()

	q := &CachedQuote{Record: model.FinancialRecord{Ticker: "1301"}}
	require.NoError(t, s.SetCachedQuote(ctx, "1301", q, -time.Minute))

	got, err := s.GetCachedQuote(ctx, "1301")
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry reads as a miss")

	n, err := s.DeleteExpiredQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = s.DeleteExpiredQuotes(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
