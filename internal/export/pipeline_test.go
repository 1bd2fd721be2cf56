package export

import (
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/model"
	"github.com/kabu-lab/kabuscreen/internal/quote"
	"github.com/kabu-lab/kabuscreen/internal/resilience"
	"github.com/kabu-lab/kabuscreen/internal/store"
)

func init() {
	zap.ReplaceGlobals(zap.NewNop())
}

func writeUniverse(t *testing.T, lines ...string) string {
	t.Helper()
	content := "日付\tコード\t銘柄名\t市場・商品区分\t33業種コード\t33業種区分\t17業種コード\t17業種区分\n"
	for _, l := range lines {
		content += l + "\n"
	}
	path := filepath.Join(t.TempDir(), "data_j.tsv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func stockRow(ticker, name string) string {
	return "20260820\t" + ticker + "\t" + name + "\tプライム（内国株式）\t3050\t食料品\t1\t食品"
}

// fastRetry keeps the three-attempt schedule but drops the waits so
// tests run instantly.
func fastRetry() resilience.RetryConfig {
	cfg := resilience.FetchRetryConfig()
	cfg.InitialBackoff = time.Millisecond
	return cfg
}

func testProvider() *quote.StubProvider {
	return &quote.StubProvider{
		Records: map[string]*model.FinancialRecord{
			"7203": {
				Ticker:         "7203",
				MarketCap:      model.Float(1000),
				TotalCash:      model.Float(400),
				TotalDebt:      model.Float(200),
				TotalRevenue:   model.Float(500),
				TrailingPE:     model.Float(10),
				EarningsGrowth: model.Float(0.2),
			},
			"1301": {
				Ticker:    "1301",
				MarketCap: model.Float(100),
			},
		},
		Earnings: map[string]model.EarningsHistory{
			"7203": {Y0: model.Float(100), Y1: model.Float(80), Y2: model.Float(50)},
		},
	}
}

func newTestPipeline(provider quote.Provider, st store.Store) *Pipeline {
	p := NewPipeline(provider, st, time.Hour)
	p.Retry = fastRetry()
	return p
}

func TestPipelineRun(t *testing.T) {
	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"), stockRow("1301", "極洋"))
	outDir := t.TempDir()

	res, err := newTestPipeline(testProvider(), nil).Run(context.Background(), Options{
		InputPath: input,
		OutputDir: outDir,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TickerCount)
	assert.Equal(t, 2, res.FetchedCount)

	f, err := os.Open(res.OutputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per fetched ticker")

	header := rows[0]
	assert.Equal(t, "ticker", header[0])
	assert.Equal(t, "name", header[1])
	assert.Equal(t, "dividend_yield", header[5])
	assert.Equal(t, "consecutive_earnings_growth", header[10])
	assert.Equal(t, "net_cash_ratio", header[11])

	byTicker := map[string][]string{rows[1][0]: rows[1], rows[2][0]: rows[2]}
	toyota := byTicker["7203"]
	require.NotNil(t, toyota)
	assert.Equal(t, "トヨタ自動車", toyota[1])
	assert.Equal(t, "true", toyota[10])
	assert.Equal(t, "0.2", toyota[11], "net cash ratio (400-200)/1000")

	kyokuyo := byTicker["1301"]
	require.NotNil(t, kyokuyo)
	assert.Equal(t, "false", kyokuyo[10], "missing earnings history never reads as growth")
	assert.Equal(t, "", kyokuyo[11], "missing inputs leave the cell empty")
}

func TestPipelineRetriesThenSucceeds(t *testing.T) {
	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"))
	provider := testProvider()
	provider.FailuresBeforeSuccess = 2

	res, err := newTestPipeline(provider, nil).Run(context.Background(), Options{
		InputPath: input,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.FetchedCount)
	assert.Equal(t, 3, provider.Calls("7203"), "two failures then success, never a fourth call")
}

func TestPipelineDropsExhaustedTicker(t *testing.T) {
	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"), stockRow("9999", "存在しない"))

	res, err := newTestPipeline(testProvider(), nil).Run(context.Background(), Options{
		InputPath: input,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err, "a single failed ticker is not fatal")
	assert.Equal(t, 2, res.TickerCount)
	assert.Equal(t, 1, res.FetchedCount)
}

func TestPipelineZeroFetchesFatal(t *testing.T) {
	input := writeUniverse(t, stockRow("9998", "なし"), stockRow("9999", "なし"))

	_, err := newTestPipeline(testProvider(), nil).Run(context.Background(), Options{
		InputPath: input,
		OutputDir: t.TempDir(),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no data fetched")
}

func TestPipelineValidation(t *testing.T) {
	p := newTestPipeline(testProvider(), nil)

	_, err := p.Run(context.Background(), Options{InputPath: "missing.tsv", OutputDir: t.TempDir()})
	require.Error(t, err, "missing input file is fatal")

	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"))
	_, err = p.Run(context.Background(), Options{InputPath: input, Limit: -1, OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "limit")

	empty := writeUniverse(t)
	_, err = p.Run(context.Background(), Options{InputPath: empty, OutputDir: t.TempDir()})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no tickers")
}

func TestPipelineRecordsRunHistory(t *testing.T) {
	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"))

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	res, err := newTestPipeline(testProvider(), st).Run(context.Background(), Options{
		InputPath: input,
		OutputDir: t.TempDir(),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, res.RunID)

	runs, err := st.ListRuns(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, res.RunID, runs[0].ID)
	assert.Equal(t, model.RunStatusComplete, runs[0].Status)
	assert.Equal(t, 1, runs[0].FetchedCount)
	assert.Equal(t, res.OutputPath, runs[0].OutputPath)
}

func TestPipelineQuoteCacheSkipsRefetch(t *testing.T) {
	input := writeUniverse(t, stockRow("7203", "トヨタ自動車"))

	st, err := store.NewSQLite(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	defer st.Close()
	require.NoError(t, st.Migrate(context.Background()))

	provider := testProvider()
	p := newTestPipeline(provider, st)

	_, err = p.Run(context.Background(), Options{InputPath: input, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.Calls("7203"))

	_, err = p.Run(context.Background(), Options{InputPath: input, OutputDir: t.TempDir()})
	require.NoError(t, err)
	assert.Equal(t, 1, provider.Calls("7203"), "second run within TTL served from cache")
}

func TestWriteCSVFilename(t *testing.T) {
	outDir := filepath.Join(t.TempDir(), "nested", "exports")
	now := time.Date(2026, 8, 20, 9, 30, 15, 0, time.UTC)

	path, err := WriteCSV([]model.Record{{}}, outDir, now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(outDir, "stock_data_20260820_093015.csv"), path)

	_, err = os.Stat(path)
	require.NoError(t, err, "output directory auto-created")
}
