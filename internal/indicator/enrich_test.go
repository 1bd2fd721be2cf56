package indicator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

func TestEnrichComputesEVBeforeDependents(t *testing.T) {
	records := []model.Record{{
		Financial: model.FinancialRecord{
			Ticker:            "7203",
			MarketCap:         fp(1000),
			TotalCash:         fp(200),
			TotalDebt:         fp(400),
			TotalAssets:       fp(2000),
			BookValue:         fp(500),
			OperatingCashFlow: fp(500),
			Capex:             fp(200),
			EBIT:              fp(300),
			GrossProfit:       fp(600),
		},
	}}

	Enrich(records)

	r := records[0].Ratios
	require.NotNil(t, r.EnterpriseValue)
	assert.InDelta(t, 1200, *r.EnterpriseValue, 1e-9)

	require.NotNil(t, r.EVEBIT)
	assert.InDelta(t, 4.0, *r.EVEBIT, 1e-9)
	require.NotNil(t, r.EVFCF)
	assert.InDelta(t, 4.0, *r.EVFCF, 1e-9)

	require.NotNil(t, r.NetCashRatio)
	assert.InDelta(t, -0.2, *r.NetCashRatio, 1e-9)
	require.NotNil(t, r.GrossProfitability)
	assert.InDelta(t, 0.3, *r.GrossProfitability, 1e-9)
	require.NotNil(t, r.PBR)
	assert.InDelta(t, 2.0, *r.PBR, 1e-9)
	require.NotNil(t, r.FCFYield)
	assert.InDelta(t, 0.3, *r.FCFYield, 1e-9)
}

func TestEnrichMissingFieldsStayNil(t *testing.T) {
	records := []model.Record{{
		Financial: model.FinancialRecord{Ticker: "9984", MarketCap: fp(1000)},
	}}

	Enrich(records)

	r := records[0].Ratios
	assert.Nil(t, r.EnterpriseValue)
	assert.Nil(t, r.EVEBIT)
	assert.Nil(t, r.EVFCF)
	assert.Nil(t, r.NetCashRatio)
	assert.Nil(t, r.PBR)
	assert.Nil(t, r.PiotroskiFScore)
}

func TestEnrichDoesNotMutateInputs(t *testing.T) {
	mc := 1000.0
	records := []model.Record{{
		Financial: model.FinancialRecord{Ticker: "1301", MarketCap: &mc},
	}}
	Enrich(records)
	assert.Equal(t, 1000.0, mc)
	assert.Equal(t, "1301", records[0].Financial.Ticker)
}
