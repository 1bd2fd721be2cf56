package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// ReadCSV loads a previously exported file back into records, binding
// cells by header name so column reordering stays harmless.
func ReadCSV(path string) ([]model.Record, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, eris.Wrapf(err, "export: open %s", path)
	}
	defer f.Close() //nolint:errcheck

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, eris.Wrapf(err, "export: parse %s", path)
	}
	if len(rows) == 0 {
		return nil, eris.Errorf("export: %s has no header", path)
	}

	setters := fieldSetters()
	header := rows[0]

	records := make([]model.Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		var r model.Record
		for i, name := range header {
			if i >= len(row) {
				break
			}
			if set, ok := setters[name]; ok {
				set(&r, row[i])
			}
		}
		records = append(records, r)
	}
	return records, nil
}

// LatestCSV returns the newest stock_data_*.csv under dir. The
// timestamped names sort chronologically.
func LatestCSV(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "stock_data_*.csv"))
	if err != nil {
		return "", eris.Wrapf(err, "export: glob %s", dir)
	}
	if len(matches) == 0 {
		return "", eris.Errorf("export: no exports found in %s", dir)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func fieldSetters() map[string]func(r *model.Record, cell string) {
	return map[string]func(r *model.Record, cell string){
		"ticker": func(r *model.Record, cell string) {
			r.Meta.Ticker = cell
			r.Financial.Ticker = cell
		},
		"name":            func(r *model.Record, cell string) { r.Meta.Name = cell },
		"market_category": func(r *model.Record, cell string) { r.Meta.MarketCategory = cell },
		"sector_33":       func(r *model.Record, cell string) { r.Meta.Sector33 = cell },
		"sector_17":       func(r *model.Record, cell string) { r.Meta.Sector17 = cell },

		"consecutive_earnings_growth": func(r *model.Record, cell string) {
			r.ConsecutiveGrowth = cell == "true"
		},

		"dividend_yield": fset(func(r *model.Record) **float64 { return &r.Financial.DividendYield }),
		"payout_ratio":   fset(func(r *model.Record) **float64 { return &r.Financial.PayoutRatio }),
		"earnings_y0":    fset(func(r *model.Record) **float64 { return &r.Earnings.Y0 }),
		"earnings_y1":    fset(func(r *model.Record) **float64 { return &r.Earnings.Y1 }),
		"earnings_y2":    fset(func(r *model.Record) **float64 { return &r.Earnings.Y2 }),

		"net_cash_ratio":      fset(func(r *model.Record) **float64 { return &r.Ratios.NetCashRatio }),
		"enterprise_value":    fset(func(r *model.Record) **float64 { return &r.Ratios.EnterpriseValue }),
		"gross_profitability": fset(func(r *model.Record) **float64 { return &r.Ratios.GrossProfitability }),
		"ev_ebit":             fset(func(r *model.Record) **float64 { return &r.Ratios.EVEBIT }),
		"fcf_yield":           fset(func(r *model.Record) **float64 { return &r.Ratios.FCFYield }),
		"pbr":                 fset(func(r *model.Record) **float64 { return &r.Ratios.PBR }),
		"ev_fcf":              fset(func(r *model.Record) **float64 { return &r.Ratios.EVFCF }),
		"psr":                 fset(func(r *model.Record) **float64 { return &r.Ratios.PSR }),
		"peg_ratio":           fset(func(r *model.Record) **float64 { return &r.Ratios.PEGRatio }),

		"market_cap":          fset(func(r *model.Record) **float64 { return &r.Financial.MarketCap }),
		"total_cash":          fset(func(r *model.Record) **float64 { return &r.Financial.TotalCash }),
		"total_debt":          fset(func(r *model.Record) **float64 { return &r.Financial.TotalDebt }),
		"total_assets":        fset(func(r *model.Record) **float64 { return &r.Financial.TotalAssets }),
		"book_value":          fset(func(r *model.Record) **float64 { return &r.Financial.BookValue }),
		"operating_cash_flow": fset(func(r *model.Record) **float64 { return &r.Financial.OperatingCashFlow }),
		"capex":               fset(func(r *model.Record) **float64 { return &r.Financial.Capex }),
		"ebit":                fset(func(r *model.Record) **float64 { return &r.Financial.EBIT }),
		"gross_profit":        fset(func(r *model.Record) **float64 { return &r.Financial.GrossProfit }),
		"net_income":          fset(func(r *model.Record) **float64 { return &r.Financial.NetIncome }),
		"trailing_pe":         fset(func(r *model.Record) **float64 { return &r.Financial.TrailingPE }),
		"total_revenue":       fset(func(r *model.Record) **float64 { return &r.Financial.TotalRevenue }),
		"earnings_growth":     fset(func(r *model.Record) **float64 { return &r.Financial.EarningsGrowth }),
	}
}

// fset parses a nullable numeric cell into the targeted field.
func fset(target func(r *model.Record) **float64) func(r *model.Record, cell string) {
	return func(r *model.Record, cell string) {
		if cell == "" {
			return
		}
		v, err := strconv.ParseFloat(cell, 64)
		if err != nil {
			return
		}
		*target(r) = &v
	}
}
