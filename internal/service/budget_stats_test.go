package service

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func decimals(values ...int64) []decimal.Decimal {
	out := make([]decimal.Decimal, len(values))
	for i, v := range values {
		out[i] = decimal.NewFromInt(v)
	}
	return out
}

func TestQuantile_LinearInterpolation(t *testing.T) {
	sorted := decimals(1, 2, 3, 4)

	tests := []struct {
		name string
		p    float64
		want string
	}{
		{"minimum", 0, "1"},
		{"first quartile", 0.25, "1.75"},
		{"median", 0.5, "2.5"},
		{"third quartile", 0.75, "3.25"},
		{"80th percentile", 0.8, "3.4"},
		{"maximum", 1, "4"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := quantile(sorted, decimal.NewFromFloat(tt.p))
			assert.True(t, got.Equal(decimal.RequireFromString(tt.want)), "got %s, want %s", got, tt.want)
		})
	}
}

func TestQuantile_SingleValue(t *testing.T) {
	got := quantile(decimals(42), decimal.NewFromFloat(0.8))
	assert.Equal(t, "42", got.String())
}

func TestTukeyInliers_RemovesExtremeMonth(t *testing.T) {
	history := decimals(100, 110, 90, 100, 120, 1000, 100, 110)

	inliers := tukeyInliers(history)

	assert.Len(t, inliers, 7)
	for _, v := range inliers {
		assert.True(t, v.LessThan(decimal.NewFromInt(1000)), "outlier %s survived", v)
	}
}

func TestTukeyInliers_KeepsUniformHistory(t *testing.T) {
	inliers := tukeyInliers(decimals(50, 60, 70, 80))
	assert.Len(t, inliers, 4)
}

func TestTukeyInliers_Empty(t *testing.T) {
	assert.Empty(t, tukeyInliers(nil))
}

func TestRobustBudgetEstimate_ShortHistoryFallsBackToSixMonthAverage(t *testing.T) {
	avg6 := decimal.RequireFromString("123.45")
	avg3 := decimal.NewFromInt(500)

	for _, history := range [][]decimal.Decimal{nil, decimals(900), decimals(900, 10)} {
		got := robustBudgetEstimate(history, avg6, avg3)
		assert.True(t, got.Equal(avg6), "history of %d months: got %s", len(history), got)
	}
}

func TestRobustBudgetEstimate_BlendsRecentAndCeiling(t *testing.T) {
	history := decimals(100, 110, 90, 100, 120, 1000, 100, 110)
	avg3 := decimal.NewFromInt(1210).Div(decimal.NewFromInt(3))

	got := robustBudgetEstimate(history, decimal.Zero, avg3)

	// p80 of the inliers is 110
	assert.Equal(t, "315.33", got.Round(2).StringFixed(2))
}

func TestRobustBudgetEstimate_NoRecentSpendUsesCeilingOnly(t *testing.T) {
	history := decimals(10, 20, 30, 40, 50)

	got := robustBudgetEstimate(history, decimal.NewFromInt(5), decimal.Zero)

	// 80th percentile of 10..50 is 42
	assert.True(t, got.Equal(decimal.NewFromInt(42)), "got %s", got)
}
