package export

import (
	"strconv"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// Column binds an output header to its cell accessor.
type Column struct {
	Name  string
	Value func(r *model.Record) string
}

// Columns returns the output column order: ticker first, then exchange
// metadata, dividend metrics, earnings history with the growth flag,
// the derived valuation ratios, and finally the remaining raw provider
// fields in fetch order.
func Columns() []Column {
	return []Column{
		{"ticker", func(r *model.Record) string { return r.Ticker() }},

		{"name", func(r *model.Record) string { return r.Meta.Name }},
		{"market_category", func(r *model.Record) string { return r.Meta.MarketCategory }},
		{"sector_33", func(r *model.Record) string { return r.Meta.Sector33 }},
		{"sector_17", func(r *model.Record) string { return r.Meta.Sector17 }},

		{"dividend_yield", fcell(func(r *model.Record) *float64 { return r.Financial.DividendYield })},
		{"payout_ratio", fcell(func(r *model.Record) *float64 { return r.Financial.PayoutRatio })},

		{"earnings_y0", fcell(func(r *model.Record) *float64 { return r.Earnings.Y0 })},
		{"earnings_y1", fcell(func(r *model.Record) *float64 { return r.Earnings.Y1 })},
		{"earnings_y2", fcell(func(r *model.Record) *float64 { return r.Earnings.Y2 })},
		{"consecutive_earnings_growth", func(r *model.Record) string {
			return strconv.FormatBool(r.ConsecutiveGrowth)
		}},

		{"net_cash_ratio", fcell(func(r *model.Record) *float64 { return r.Ratios.NetCashRatio })},
		{"enterprise_value", fcell(func(r *model.Record) *float64 { return r.Ratios.EnterpriseValue })},
		{"gross_profitability", fcell(func(r *model.Record) *float64 { return r.Ratios.GrossProfitability })},
		{"ev_ebit", fcell(func(r *model.Record) *float64 { return r.Ratios.EVEBIT })},
		{"fcf_yield", fcell(func(r *model.Record) *float64 { return r.Ratios.FCFYield })},
		{"pbr", fcell(func(r *model.Record) *float64 { return r.Ratios.PBR })},
		{"ev_fcf", fcell(func(r *model.Record) *float64 { return r.Ratios.EVFCF })},
		{"psr", fcell(func(r *model.Record) *float64 { return r.Ratios.PSR })},
		{"peg_ratio", fcell(func(r *model.Record) *float64 { return r.Ratios.PEGRatio })},

		{"market_cap", fcell(func(r *model.Record) *float64 { return r.Financial.MarketCap })},
		{"total_cash", fcell(func(r *model.Record) *float64 { return r.Financial.TotalCash })},
		{"total_debt", fcell(func(r *model.Record) *float64 { return r.Financial.TotalDebt })},
		{"total_assets", fcell(func(r *model.Record) *float64 { return r.Financial.TotalAssets })},
		{"book_value", fcell(func(r *model.Record) *float64 { return r.Financial.BookValue })},
		{"operating_cash_flow", fcell(func(r *model.Record) *float64 { return r.Financial.OperatingCashFlow })},
		{"capex", fcell(func(r *model.Record) *float64 { return r.Financial.Capex })},
		{"ebit", fcell(func(r *model.Record) *float64 { return r.Financial.EBIT })},
		{"gross_profit", fcell(func(r *model.Record) *float64 { return r.Financial.GrossProfit })},
		{"net_income", fcell(func(r *model.Record) *float64 { return r.Financial.NetIncome })},
		{"trailing_pe", fcell(func(r *model.Record) *float64 { return r.Financial.TrailingPE })},
		{"total_revenue", fcell(func(r *model.Record) *float64 { return r.Financial.TotalRevenue })},
		{"earnings_growth", fcell(func(r *model.Record) *float64 { return r.Financial.EarningsGrowth })},
	}
}

// fcell renders a nullable numeric field, empty cell when nil.
func fcell(get func(r *model.Record) *float64) func(r *model.Record) string {
	return func(r *model.Record) string {
		v := get(r)
		if v == nil {
			return ""
		}
		return strconv.FormatFloat(*v, 'g', -1, 64)
	}
}
