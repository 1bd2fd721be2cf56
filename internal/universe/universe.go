// Package universe reads the exchange's listed-issues file and produces
// the ticker universe and per-ticker metadata for the export pipeline.
package universe

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// Column layout of the listed-issues file (0-indexed). The published
// headers are Japanese and the layout is stable, so binding is
// positional: date, code, name, market/product category, 33-sector
// code, 33-sector name, 17-sector code, 17-sector name, size code,
// size name.
const (
	colTicker   = 1
	colName     = 2
	colMarket   = 3
	colSector33 = 5
	colSector17 = 7
)

// marketCategoryFund is the market/product category value that marks
// funds rather than individual stocks.
const marketCategoryFund = "ETF・ETN"

// Options configures universe reading.
type Options struct {
	// Limit caps the number of tickers returned (0 = all).
	Limit int

	// IncludeETF keeps ETF/ETN rows. Default excludes them.
	IncludeETF bool

	// Encoding of the input file: "utf-8" (default) or "shift_jis".
	// The file as published by the exchange is Shift_JIS.
	Encoding string
}

// ReadTickers returns the ordered ticker list from the listed-issues
// file at path (TSV, or XLSX when the extension is .xlsx).
func ReadTickers(path string, opts Options) ([]string, error) {
	rows, err := readRows(path, opts.Encoding)
	if err != nil {
		return nil, err
	}

	total := 0
	excluded := 0
	var tickers []string
	for _, row := range rows {
		if len(row) <= colTicker {
			continue
		}
		ticker := strings.TrimSpace(row[colTicker])
		if ticker == "" {
			continue
		}
		total++
		if !opts.IncludeETF && marketCategory(row) == marketCategoryFund {
			excluded++
			continue
		}
		tickers = append(tickers, ticker)
		if opts.Limit > 0 && len(tickers) >= opts.Limit {
			break
		}
	}

	zap.L().Info("universe: read tickers",
		zap.String("path", path),
		zap.Int("tickers", len(tickers)),
		zap.Int("excluded_funds", excluded),
	)

	return tickers, nil
}

// LoadMeta returns ticker → StockMeta for the metadata join. All rows
// are loaded regardless of the fund filter so that metadata is available
// for any ticker the caller fetched.
func LoadMeta(path string, opts Options) (map[string]model.StockMeta, error) {
	rows, err := readRows(path, opts.Encoding)
	if err != nil {
		return nil, err
	}

	meta := make(map[string]model.StockMeta, len(rows))
	for _, row := range rows {
		if len(row) <= colTicker {
			continue
		}
		ticker := strings.TrimSpace(row[colTicker])
		if ticker == "" {
			continue
		}
		meta[ticker] = model.StockMeta{
			Ticker:         ticker,
			Name:           cell(row, colName),
			MarketCategory: cell(row, colMarket),
			Sector33:       cell(row, colSector33),
			Sector17:       cell(row, colSector17),
		}
	}

	return meta, nil
}

func readRows(path string, encoding string) ([][]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, eris.Wrapf(err, "universe: stat %s", path)
	}
	if info.IsDir() {
		return nil, eris.Errorf("universe: %s is a directory, not a file", path)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return readXLSXRows(path)
	}
	return readTSVRows(path, encoding)
}

func marketCategory(row []string) string {
	return cell(row, colMarket)
}

func cell(row []string, idx int) string {
	if idx < len(row) {
		return strings.TrimSpace(row[idx])
	}
	return ""
}
