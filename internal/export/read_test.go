package export

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

func TestReadCSVRoundTrip(t *testing.T) {
	records := []model.Record{
		{
			Meta: model.StockMeta{Ticker: "7203", Name: "トヨタ自動車", Sector33: "輸送用機器"},
			Financial: model.FinancialRecord{
				Ticker:    "7203",
				MarketCap: model.Float(1000),
				TotalCash: model.Float(400),
			},
			Earnings:          model.EarningsHistory{Y0: model.Float(100), Y1: model.Float(80), Y2: model.Float(50)},
			Ratios:            model.Ratios{NetCashRatio: model.Float(0.2)},
			ConsecutiveGrowth: true,
		},
		{
			Meta:      model.StockMeta{Ticker: "1301", Name: "極洋"},
			Financial: model.FinancialRecord{Ticker: "1301"},
		},
	}

	path, err := WriteCSV(records, t.TempDir(), time.Now())
	require.NoError(t, err)

	got, err := ReadCSV(path)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "7203", got[0].Ticker())
	assert.Equal(t, "トヨタ自動車", got[0].Meta.Name)
	assert.Equal(t, "輸送用機器", got[0].Meta.Sector33)
	require.NotNil(t, got[0].Financial.MarketCap)
	assert.Equal(t, 1000.0, *got[0].Financial.MarketCap)
	require.NotNil(t, got[0].Ratios.NetCashRatio)
	assert.Equal(t, 0.2, *got[0].Ratios.NetCashRatio)
	require.NotNil(t, got[0].Earnings.Y2)
	assert.Equal(t, 50.0, *got[0].Earnings.Y2)
	assert.True(t, got[0].ConsecutiveGrowth)

	assert.Equal(t, "1301", got[1].Ticker())
	assert.Nil(t, got[1].Financial.MarketCap, "empty cells stay nil")
	assert.False(t, got[1].ConsecutiveGrowth)
}

func TestLatestCSV(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"stock_data_20260101_000000.csv",
		"stock_data_20260820_093015.csv",
		"stock_data_20260301_120000.csv",
		"unrelated.csv",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("ticker\n"), 0o644))
	}

	path, err := LatestCSV(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "stock_data_20260820_093015.csv"), path)
}

func TestLatestCSVEmptyDir(t *testing.T) {
	_, err := LatestCSV(t.TempDir())
	require.Error(t, err)
}
