package indicator

import (
	"github.com/kabu-lab/kabuscreen/internal/model"
)

// Enrich computes the derived ratio columns for every record in place.
// Enterprise value is filled first so the EV-based ratios read a
// consistent value; everything else is order-independent. ROIC, CROIC,
// shareholder yield and the F-score need line items the quote provider
// does not supply, so they stay nil here and are only reachable through
// their standalone functions.
func Enrich(records []model.Record) {
	for i := range records {
		fin := &records[i].Financial
		out := &records[i].Ratios

		out.EnterpriseValue = EnterpriseValue(fin.MarketCap, fin.TotalDebt, fin.TotalCash)

		out.NetCashRatio = NetCashRatio(fin.TotalCash, fin.TotalDebt, fin.MarketCap)
		out.GrossProfitability = GrossProfitability(fin.GrossProfit, fin.TotalAssets)
		out.FCFYield = FCFYield(fin.OperatingCashFlow, fin.Capex, fin.MarketCap)
		out.PBR = PBR(fin.MarketCap, fin.BookValue)

		out.EVEBIT = EVEBIT(out.EnterpriseValue, fin.EBIT)
		out.EVFCF = EVFCF(out.EnterpriseValue, fin.OperatingCashFlow, fin.Capex)
	}
}

// Column is an aligned slice of nullable values, one element per record.
type Column []*float64

// Apply2 maps a two-operand scalar function over two aligned columns.
// Shorter columns are treated as nil-padded.
func Apply2(fn func(a, b *float64) *float64, a, b Column) Column {
	n := max(len(a), len(b))
	out := make(Column, n)
	for i := range n {
		out[i] = fn(at(a, i), at(b, i))
	}
	return out
}

// Apply3 maps a three-operand scalar function over three aligned columns.
func Apply3(fn func(a, b, c *float64) *float64, a, b, c Column) Column {
	n := max(len(a), max(len(b), len(c)))
	out := make(Column, n)
	for i := range n {
		out[i] = fn(at(a, i), at(b, i), at(c, i))
	}
	return out
}

func at(c Column, i int) *float64 {
	if i < len(c) {
		return c[i]
	}
	return nil
}
