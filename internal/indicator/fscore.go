package indicator

// FScoreInput carries the current- and prior-period figures behind the
// nine Piotroski criteria. All fields are nullable.
type FScoreInput struct {
	NetIncome             *float64
	OperatingCashFlow     *float64
	ROA                   *float64
	ROAPrev               *float64
	LongTermDebt          *float64
	LongTermDebtPrev      *float64
	CurrentRatio          *float64
	CurrentRatioPrev      *float64
	SharesOutstanding     *float64
	SharesOutstandingPrev *float64
	GrossMargin           *float64
	GrossMarginPrev       *float64
	AssetTurnover         *float64
	AssetTurnoverPrev     *float64
}

func (in FScoreInput) complete() bool {
	fields := []*float64{
		in.NetIncome, in.OperatingCashFlow,
		in.ROA, in.ROAPrev,
		in.LongTermDebt, in.LongTermDebtPrev,
		in.CurrentRatio, in.CurrentRatioPrev,
		in.SharesOutstanding, in.SharesOutstandingPrev,
		in.GrossMargin, in.GrossMarginPrev,
		in.AssetTurnover, in.AssetTurnoverPrev,
	}
	for _, f := range fields {
		if f == nil {
			return false
		}
	}
	return true
}

// PiotroskiFScore sums the nine 0/1 criteria into a score in [0,9].
// The score is defined only when every input is present; any missing
// field makes the whole score nil rather than silently scoring the
// missing criterion as zero.
func PiotroskiFScore(in FScoreInput) *int {
	if !in.complete() {
		return nil
	}

	score := 0
	point := func(ok bool) {
		if ok {
			score++
		}
	}

	// Profitability (4 points).
	point(*in.NetIncome > 0)
	point(*in.OperatingCashFlow > 0)
	point(*in.ROA > *in.ROAPrev)
	point(*in.OperatingCashFlow > *in.NetIncome)

	// Leverage / liquidity (3 points).
	point(*in.LongTermDebt < *in.LongTermDebtPrev)
	point(*in.CurrentRatio > *in.CurrentRatioPrev)
	point(*in.SharesOutstanding <= *in.SharesOutstandingPrev)

	// Operating efficiency (2 points).
	point(*in.GrossMargin > *in.GrossMarginPrev)
	point(*in.AssetTurnover > *in.AssetTurnoverPrev)

	return &score
}
