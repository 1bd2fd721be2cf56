// Package analysis ranks screened records by net cash ratio and
// summarizes the top cohort.
package analysis

import (
	"sort"

	"go.uber.org/zap"

	"github.com/kabu-lab/kabuscreen/internal/model"
)

// RankedStock is one row of the net-cash ranking.
type RankedStock struct {
	Rank         int     `json:"rank"`
	Ticker       string  `json:"ticker"`
	Name         string  `json:"name"`
	NetCashRatio float64 `json:"net_cash_ratio"`
	MarketCap    float64 `json:"market_cap"`
}

// Summary describes the ranked cohort.
type Summary struct {
	Count              int     `json:"count"`
	MeanNetCashRatio   float64 `json:"mean_net_cash_ratio"`
	MedianNetCashRatio float64 `json:"median_net_cash_ratio"`
	TotalMarketCap     float64 `json:"total_market_cap"`
}

// RankByNetCash filters records to those with a computed net cash ratio
// and a market cap at or above cfg.MinMarketCap, sorts them by ratio
// descending, and returns the top cfg.TopN. Ties break on ticker for a
// stable order.
func RankByNetCash(records []model.Record, cfg Config) []RankedStock {
	var ranked []RankedStock
	skipped := 0
	for i := range records {
		r := &records[i]
		ratio := r.Ratios.NetCashRatio
		mcap := r.Financial.MarketCap
		if ratio == nil || mcap == nil {
			skipped++
			continue
		}
		if *mcap < cfg.MinMarketCap {
			continue
		}
		ranked = append(ranked, RankedStock{
			Ticker:       r.Ticker(),
			Name:         r.Meta.Name,
			NetCashRatio: *ratio,
			MarketCap:    *mcap,
		})
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].NetCashRatio != ranked[j].NetCashRatio {
			return ranked[i].NetCashRatio > ranked[j].NetCashRatio
		}
		return ranked[i].Ticker < ranked[j].Ticker
	})

	if cfg.TopN > 0 && len(ranked) > cfg.TopN {
		ranked = ranked[:cfg.TopN]
	}
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	zap.L().Debug("analysis: ranked by net cash",
		zap.Int("candidates", len(records)),
		zap.Int("skipped_missing", skipped),
		zap.Int("ranked", len(ranked)),
	)

	return ranked
}

// Summarize computes cohort statistics over the ranking.
func Summarize(ranked []RankedStock) Summary {
	s := Summary{Count: len(ranked)}
	if len(ranked) == 0 {
		return s
	}

	ratios := make([]float64, len(ranked))
	for i, r := range ranked {
		ratios[i] = r.NetCashRatio
		s.MeanNetCashRatio += r.NetCashRatio
		s.TotalMarketCap += r.MarketCap
	}
	s.MeanNetCashRatio /= float64(len(ranked))

	sort.Float64s(ratios)
	mid := len(ratios) / 2
	if len(ratios)%2 == 0 {
		s.MedianNetCashRatio = (ratios[mid-1] + ratios[mid]) / 2
	} else {
		s.MedianNetCashRatio = ratios[mid]
	}
	return s
}
