// Package indicator computes fundamental valuation and quality ratios
// from nullable financial-statement fields.
//
// Every function is pure and total: a nil operand or a zero denominator
// yields a nil result for that value only. Nothing panics, nothing
// returns Inf or NaN, and inputs are never mutated.
package indicator

// div returns a/b, or nil when either operand is missing or b is zero.
func div(a, b *float64) *float64 {
	if a == nil || b == nil || *b == 0 {
		return nil
	}
	v := *a / *b
	return &v
}

// sub returns a-b, nil-propagating.
func sub(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a - *b
	return &v
}

// add returns a+b, nil-propagating.
func add(a, b *float64) *float64 {
	if a == nil || b == nil {
		return nil
	}
	v := *a + *b
	return &v
}

// NetCashRatio is (total_cash - total_debt) / market_cap. Negative
// values mean net debt.
func NetCashRatio(totalCash, totalDebt, marketCap *float64) *float64 {
	return div(sub(totalCash, totalDebt), marketCap)
}

// EnterpriseValue is market_cap + (total_debt - total_cash). It must be
// computed before any EV-based ratio.
func EnterpriseValue(marketCap, totalDebt, totalCash *float64) *float64 {
	return add(marketCap, sub(totalDebt, totalCash))
}

// ROIC is nopat / invested_capital.
func ROIC(nopat, investedCapital *float64) *float64 {
	return div(nopat, investedCapital)
}

// CROIC is (operating_cash_flow - capex) / invested_capital.
func CROIC(operatingCashFlow, capex, investedCapital *float64) *float64 {
	return div(sub(operatingCashFlow, capex), investedCapital)
}

// GrossProfitability is gross_profit / total_assets.
func GrossProfitability(grossProfit, totalAssets *float64) *float64 {
	return div(grossProfit, totalAssets)
}

// EVEBIT is enterprise_value / ebit.
func EVEBIT(enterpriseValue, ebit *float64) *float64 {
	return div(enterpriseValue, ebit)
}

// FCFYield is (operating_cash_flow - capex) / market_cap.
func FCFYield(operatingCashFlow, capex, marketCap *float64) *float64 {
	return div(sub(operatingCashFlow, capex), marketCap)
}

// PBR is market_cap / book_value.
func PBR(marketCap, bookValue *float64) *float64 {
	return div(marketCap, bookValue)
}

// EVFCF is enterprise_value / (operating_cash_flow - capex).
func EVFCF(enterpriseValue, operatingCashFlow, capex *float64) *float64 {
	return div(enterpriseValue, sub(operatingCashFlow, capex))
}

// ShareholderYield is (dividends + net_buyback + debt_reduction) / market_cap.
func ShareholderYield(dividends, netBuyback, debtReduction, marketCap *float64) *float64 {
	return div(add(add(dividends, netBuyback), debtReduction), marketCap)
}

// PSR is market_cap / total_revenue.
func PSR(marketCap, totalRevenue *float64) *float64 {
	return div(marketCap, totalRevenue)
}

// PEGRatio is trailing_pe / (earnings_growth * 100). The growth rate
// arrives as a decimal fraction (0.15 = 15%) and is scaled to percent
// before dividing, so a zero growth rate yields nil.
func PEGRatio(trailingPE, earningsGrowth *float64) *float64 {
	if earningsGrowth == nil {
		return nil
	}
	pct := *earningsGrowth * 100
	return div(trailingPE, &pct)
}
