package analysis

import "math"

// InformationCoefficient computes the Pearson correlation between a
// factor column and a forward-return column. Pairs where either side is
// nil are skipped. Returns nil when fewer than two complete pairs
// remain or either side has zero variance.
func InformationCoefficient(factor, forward []*float64) *float64 {
	n := min(len(factor), len(forward))

	var xs, ys []float64
	for i := 0; i < n; i++ {
		if factor[i] == nil || forward[i] == nil {
			continue
		}
		xs = append(xs, *factor[i])
		ys = append(ys, *forward[i])
	}
	if len(xs) < 2 {
		return nil
	}

	meanX := mean(xs)
	meanY := mean(ys)

	var cov, varX, varY float64
	for i := range xs {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return nil
	}

	ic := cov / math.Sqrt(varX*varY)
	return &ic
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}
