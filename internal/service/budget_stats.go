package service

import (
	"sort"

	"github.com/shopspring/decimal"
)

var (
	tukeyMultiplier   = decimal.NewFromFloat(1.5)
	recentSpendWeight = decimal.NewFromFloat(0.7)
	ceilingWeight     = decimal.NewFromFloat(0.3)
	firstQuartile     = decimal.NewFromFloat(0.25)
	thirdQuartile     = decimal.NewFromFloat(0.75)
	ceilingPercentile = decimal.NewFromFloat(0.8)
)

// minOutlierMonths is the history length below which outlier analysis is skipped
const minOutlierMonths = 3

// sortedCopy returns an ascending copy of values
func sortedCopy(values []decimal.Decimal) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	copy(out, values)
	sort.Slice(out, func(i, j int) bool { return out[i].LessThan(out[j]) })
	return out
}

// quantile returns the p-quantile of ascending values using linear
// interpolation between closest ranks. values must not be empty.
func quantile(sorted []decimal.Decimal, p decimal.Decimal) decimal.Decimal {
	if len(sorted) == 1 {
		return sorted[0]
	}
	h := decimal.NewFromInt(int64(len(sorted) - 1)).Mul(p)
	lo := h.Floor()
	i := int(lo.IntPart())
	if i >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := h.Sub(lo)
	return sorted[i].Add(sorted[i+1].Sub(sorted[i]).Mul(frac))
}

// tukeyInliers drops values outside [Q1 - 1.5*IQR, Q3 + 1.5*IQR]
func tukeyInliers(values []decimal.Decimal) []decimal.Decimal {
	if len(values) == 0 {
		return nil
	}
	sorted := sortedCopy(values)
	q1 := quantile(sorted, firstQuartile)
	q3 := quantile(sorted, thirdQuartile)
	iqr := q3.Sub(q1)
	lower := q1.Sub(iqr.Mul(tukeyMultiplier))
	upper := q3.Add(iqr.Mul(tukeyMultiplier))

	inliers := make([]decimal.Decimal, 0, len(sorted))
	for _, v := range sorted {
		if v.LessThan(lower) || v.GreaterThan(upper) {
			continue
		}
		inliers = append(inliers, v)
	}
	return inliers
}

// robustBudgetEstimate blends recent spend with the 80th percentile of
// outlier-free monthly history. Short or degenerate histories fall back to avg6.
func robustBudgetEstimate(history []decimal.Decimal, avg6, avg3 decimal.Decimal) decimal.Decimal {
	if len(history) < minOutlierMonths {
		return avg6
	}

	inliers := tukeyInliers(history)
	if len(inliers) == 0 {
		return avg6
	}

	p80 := quantile(inliers, ceilingPercentile)
	if avg3.IsPositive() {
		return avg3.Mul(recentSpendWeight).Add(p80.Mul(ceilingWeight))
	}
	return p80
}
