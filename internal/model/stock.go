// Package model defines the shared data types for the screening pipeline.
package model

// StockMeta holds static per-ticker metadata from the exchange's
// listed-issues file.
type StockMeta struct {
	Ticker         string `json:"ticker"`
	Name           string `json:"name"`
	MarketCategory string `json:"market_category"`
	Sector33       string `json:"sector_33"`
	Sector17       string `json:"sector_17"`
}

// FinancialRecord is the flat per-ticker field set fetched from the
// market-data provider. Every field is nullable: a nil pointer means the
// provider had no value, and nil propagates into every ratio that reads
// the field.
type FinancialRecord struct {
	Ticker            string   `json:"ticker"`
	MarketCap         *float64 `json:"market_cap"`
	TotalCash         *float64 `json:"total_cash"`
	TotalDebt         *float64 `json:"total_debt"`
	TotalAssets       *float64 `json:"total_assets"`
	BookValue         *float64 `json:"book_value"`
	OperatingCashFlow *float64 `json:"operating_cash_flow"`
	Capex             *float64 `json:"capex"`
	EBIT              *float64 `json:"ebit"`
	GrossProfit       *float64 `json:"gross_profit"`
	NetIncome         *float64 `json:"net_income"`
	DividendYield     *float64 `json:"dividend_yield"`
	TrailingPE        *float64 `json:"trailing_pe"`
	TotalRevenue      *float64 `json:"total_revenue"`
	EarningsGrowth    *float64 `json:"earnings_growth"`
	PayoutRatio       *float64 `json:"payout_ratio"`
}

// FieldCount returns the number of non-nil financial fields. Used to
// decide whether a provider response carried any usable data.
func (r *FinancialRecord) FieldCount() int {
	fields := []*float64{
		r.MarketCap, r.TotalCash, r.TotalDebt, r.TotalAssets, r.BookValue,
		r.OperatingCashFlow, r.Capex, r.EBIT, r.GrossProfit, r.NetIncome,
		r.DividendYield, r.TrailingPE, r.TotalRevenue, r.EarningsGrowth,
		r.PayoutRatio,
	}
	n := 0
	for _, f := range fields {
		if f != nil {
			n++
		}
	}
	return n
}

// EarningsHistory holds up to three years of annual net income,
// most recent first.
type EarningsHistory struct {
	Y0 *float64 `json:"earnings_y0"`
	Y1 *float64 `json:"earnings_y1"`
	Y2 *float64 `json:"earnings_y2"`
}

// ConsecutiveGrowth reports strictly increasing earnings over the three
// most recent years (y0 newest). False, never nil, when any year is
// missing.
func (e EarningsHistory) ConsecutiveGrowth() bool {
	if e.Y0 == nil || e.Y1 == nil || e.Y2 == nil {
		return false
	}
	return *e.Y0 > *e.Y1 && *e.Y1 > *e.Y2
}

// Ratios holds the derived valuation and quality columns.
type Ratios struct {
	NetCashRatio       *float64 `json:"net_cash_ratio"`
	EnterpriseValue    *float64 `json:"enterprise_value"`
	ROIC               *float64 `json:"roic"`
	CROIC              *float64 `json:"croic"`
	GrossProfitability *float64 `json:"gross_profitability"`
	EVEBIT             *float64 `json:"ev_ebit"`
	FCFYield           *float64 `json:"fcf_yield"`
	PBR                *float64 `json:"pbr"`
	EVFCF              *float64 `json:"ev_fcf"`
	ShareholderYield   *float64 `json:"shareholder_yield"`
	PSR                *float64 `json:"psr"`
	PEGRatio           *float64 `json:"peg_ratio"`
	PiotroskiFScore    *int     `json:"piotroski_f_score"`
}

// Record is one fully assembled row of the export table: provider data
// joined with exchange metadata and enriched with derived ratios.
type Record struct {
	Meta              StockMeta       `json:"meta"`
	Financial         FinancialRecord `json:"financial"`
	Earnings          EarningsHistory `json:"earnings"`
	Ratios            Ratios          `json:"ratios"`
	ConsecutiveGrowth bool            `json:"consecutive_earnings_growth"`
}

// Ticker returns the row's ticker code.
func (r *Record) Ticker() string {
	if r.Financial.Ticker != "" {
		return r.Financial.Ticker
	}
	return r.Meta.Ticker
}

// Float returns a pointer to v. Convenience for building nullable fields.
func Float(v float64) *float64 { return &v }
