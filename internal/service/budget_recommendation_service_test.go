package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// referenceTime anchors every window in these tests: the 6 month window is Apr-Sep 2026,
// the 3 month window Jul-Sep 2026 and the 1 month window Sep 2026.
var referenceTime = time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)

func spendDate(year int, month time.Month) time.Time {
	return time.Date(year, month, 15, 0, 0, 0, 0, time.UTC)
}

func newRecommendationFixture() (*BudgetRecommendationService, *testutil.MockLedgerRepository, *testutil.MockBudgetTemplateRepository) {
	ledgerRepo := testutil.NewMockLedgerRepository()
	budgetRepo := testutil.NewMockBudgetTemplateRepository()
	return NewBudgetRecommendationService(ledgerRepo, budgetRepo), ledgerRepo, budgetRepo
}

func findRecommendation(recs []*domain.Recommendation, category, subCategory string) *domain.Recommendation {
	for _, r := range recs {
		if r.Category == category && r.SubCategory == subCategory {
			return r
		}
	}
	return nil
}

func TestCalculateRecommendations_GroceriesScenario(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	monthly := map[time.Month]int64{
		time.February: 400, time.March: 400,
		time.April: 400, time.May: 400, time.June: 400,
		time.July: 400, time.August: 420, time.September: 380,
	}
	for month, amount := range monthly {
		ledgerRepo.AddSpend("Groceries", "Supermarket", decimal.NewFromInt(-amount), spendDate(2026, month))
	}

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "Groceries", rec.Category)
	assert.Equal(t, "Supermarket", rec.SubCategory)
	assert.Equal(t, "400.00", rec.Last6MonthAvg.StringFixed(2))
	assert.Equal(t, "400.00", rec.Last3MonthAvg.StringFixed(2))
	assert.Equal(t, "380.00", rec.Last1MonthActual.StringFixed(2))
	assert.Equal(t, 8, rec.DataMonths)
	assert.Equal(t, domain.ConfidenceMedium, rec.Confidence)
	assert.Equal(t, "400.00", rec.RecommendedBudget.StringFixed(2))
	assert.False(t, rec.BudgetByCategory)
}

func TestCalculateRecommendations_SixMonthAverageUsesFixedDivisor(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	// Only two months inside the 6 month window have spend
	ledgerRepo.AddSpend("Travel", "Flights", decimal.NewFromInt(300), spendDate(2026, time.April))
	ledgerRepo.AddSpend("Travel", "Flights", decimal.NewFromInt(150), spendDate(2026, time.August))
	// Outside every window
	ledgerRepo.AddSpend("Travel", "Flights", decimal.NewFromInt(999), spendDate(2025, time.December))

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "75.00", recs[0].Last6MonthAvg.StringFixed(2))
	assert.Equal(t, "50.00", recs[0].Last3MonthAvg.StringFixed(2))
	assert.Equal(t, "0.00", recs[0].Last1MonthActual.StringFixed(2))
	assert.Equal(t, 3, recs[0].DataMonths)
}

func TestCalculateRecommendations_DropsGroupsWithoutRecentSpend(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	ledgerRepo.AddSpend("Home", "Furniture", decimal.NewFromInt(2000), spendDate(2025, time.January))
	ledgerRepo.AddSpend("Home", "Furniture", decimal.NewFromInt(1500), spendDate(2025, time.June))
	ledgerRepo.AddSpend("Home", "Cleaning", decimal.NewFromInt(30), spendDate(2026, time.September))

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Cleaning", recs[0].SubCategory)
	assert.Nil(t, findRecommendation(recs, "Home", "Furniture"))
	// three window sums per group, plus one history read for Cleaning only
	assert.Equal(t, 7, ledgerRepo.MonthlySumsCalls)
}

func TestCalculateRecommendations_ShortHistoryUsesSixMonthAverage(t *testing.T) {
	tests := []struct {
		name   string
		months []time.Month
	}{
		{"one month", []time.Month{time.September}},
		{"two months", []time.Month{time.May, time.September}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, ledgerRepo, _ := newRecommendationFixture()
			for _, m := range tt.months {
				ledgerRepo.AddSpend("Pets", "Vet", decimal.NewFromInt(250), spendDate(2026, m))
			}

			recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

			require.NoError(t, err)
			require.Len(t, recs, 1)
			assert.True(t, recs[0].RecommendedBudget.Equal(recs[0].Last6MonthAvg),
				"recommended %s, avg6 %s", recs[0].RecommendedBudget, recs[0].Last6MonthAvg)
			assert.Equal(t, domain.ConfidenceLow, recs[0].Confidence)
		})
	}
}

func TestCalculateRecommendations_OutlierMonthIsFenced(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	monthly := map[time.Month]int64{
		time.February: 100, time.March: 110, time.April: 90, time.May: 100,
		time.June: 120, time.July: 1000, time.August: 100, time.September: 110,
	}
	for month, amount := range monthly {
		ledgerRepo.AddSpend("Shopping", "Electronics", decimal.NewFromInt(amount), spendDate(2026, month))
	}

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "403.33", rec.Last3MonthAvg.StringFixed(2))
	// 0.7 * 403.33 + 0.3 * p80(inliers) where p80 = 110 once the 1000 month is fenced out
	assert.Equal(t, "315.33", rec.RecommendedBudget.StringFixed(2))
	assert.True(t, rec.RecommendedBudget.LessThan(rec.Last3MonthAvg))
}

func TestCalculateRecommendations_MergedCategory(t *testing.T) {
	svc, ledgerRepo, budgetRepo := newRecommendationFixture()
	require.NoError(t, budgetRepo.SetBudgetByCategory(context.Background(), "Transport", true))

	ledgerRepo.AddSpend("Transport", "Fuel", decimal.NewFromInt(120), spendDate(2026, time.August))
	ledgerRepo.AddSpend("Transport", "Parking", decimal.NewFromInt(30), spendDate(2026, time.August))
	ledgerRepo.AddSpend("Transport", "Tolls", decimal.NewFromInt(60), spendDate(2026, time.September))

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "ALL (3 subcategories)", rec.SubCategory)
	assert.True(t, rec.BudgetByCategory)
	assert.Equal(t, "35.00", rec.Last6MonthAvg.StringFixed(2))
	assert.Equal(t, "70.00", rec.Last3MonthAvg.StringFixed(2))
	assert.Equal(t, "60.00", rec.Last1MonthActual.StringFixed(2))
	assert.Equal(t, 2, rec.DataMonths)
}

func TestCalculateRecommendations_ExcludesIneligibleEntries(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()
	sub := "Emergency"

	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Savings", SubCategory: &sub, Amount: decimal.NewFromInt(500),
		Date: spendDate(2026, time.September), Type: domain.TransactionTypeSavings, Active: true,
	})
	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Dining", SubCategory: &sub, Amount: decimal.NewFromInt(80),
		Date: spendDate(2026, time.September), Type: domain.TransactionTypeWants, Active: false,
	})
	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Office", SubCategory: &sub, Amount: decimal.NewFromInt(90),
		Date: spendDate(2026, time.September), Type: domain.TransactionTypeBusiness, Active: true,
	})

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "Office", recs[0].Category)
}

func TestCalculateRecommendations_OwnerFilter(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()
	alice, bob := "alice", "bob"
	sub := "Supermarket"

	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Groceries", SubCategory: &sub, Amount: decimal.NewFromInt(300),
		Date: spendDate(2026, time.September), Type: domain.TransactionTypeNeeds, Owner: &alice, Active: true,
	})
	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Groceries", SubCategory: &sub, Amount: decimal.NewFromInt(100),
		Date: spendDate(2026, time.September), Type: domain.TransactionTypeNeeds, Owner: &bob, Active: true,
	})

	recs, err := svc.CalculateRecommendations(context.Background(), &alice, referenceTime)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "300.00", recs[0].Last1MonthActual.StringFixed(2))

	recs, err = svc.CalculateRecommendations(context.Background(), nil, referenceTime)
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "400.00", recs[0].Last1MonthActual.StringFixed(2))
}

func TestCalculateRecommendations_SortedByCategoryThenSubcategory(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	ledgerRepo.AddSpend("Utilities", "Water", decimal.NewFromInt(40), spendDate(2026, time.September))
	ledgerRepo.AddSpend("Groceries", "Market", decimal.NewFromInt(50), spendDate(2026, time.September))
	ledgerRepo.AddSpend("Utilities", "Electricity", decimal.NewFromInt(90), spendDate(2026, time.September))

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, "Market", recs[0].SubCategory)
	assert.Equal(t, "Electricity", recs[1].SubCategory)
	assert.Equal(t, "Water", recs[2].SubCategory)
}

func TestCalculateRecommendations_StoreErrorAbortsCall(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()
	ledgerRepo.AddSpend("Groceries", "Market", decimal.NewFromInt(50), spendDate(2026, time.September))
	ledgerRepo.AddSpend("Utilities", "Water", decimal.NewFromInt(40), spendDate(2026, time.September))

	storeErr := errors.New("connection refused")
	ledgerRepo.MonthlySumsFn = func(filter domain.MonthlySumFilter) ([]domain.MonthlyTotal, error) {
		if filter.Category == "Utilities" {
			return nil, storeErr
		}
		return nil, nil
	}

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	assert.ErrorIs(t, err, storeErr)
	assert.Nil(t, recs)
}

func TestCalculateRecommendations_GroupingFlagError(t *testing.T) {
	svc, ledgerRepo, budgetRepo := newRecommendationFixture()
	ledgerRepo.AddSpend("Groceries", "Market", decimal.NewFromInt(50), spendDate(2026, time.September))
	budgetRepo.IsBudgetByCategoryFn = func(category string) (bool, error) {
		return false, domain.ErrStoreUnavailable
	}

	_, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	assert.ErrorIs(t, err, domain.ErrStoreUnavailable)
}

func TestCalculateRecommendations_OwnerTooLong(t *testing.T) {
	svc, _, _ := newRecommendationFixture()
	owner := string(make([]byte, domain.MaxOwnerLength+1))

	_, err := svc.CalculateRecommendations(context.Background(), &owner, referenceTime)

	assert.ErrorIs(t, err, domain.ErrInvalidOwner)
}

func TestCalculateRecommendations_EmptyLedger(t *testing.T) {
	svc, _, _ := newRecommendationFixture()

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestCalculateRecommendations_IgnoresSpendAfterReferenceTime(t *testing.T) {
	svc, ledgerRepo, _ := newRecommendationFixture()

	ledgerRepo.AddSpend("Groceries", "Supermarket", decimal.NewFromInt(-100), spendDate(2025, time.September))
	for month := time.January; month <= time.September; month++ {
		ledgerRepo.AddSpend("Groceries", "Supermarket", decimal.NewFromInt(-5000), spendDate(2026, month))
	}
	asOf := time.Date(2025, 10, 1, 0, 0, 0, 0, time.UTC)

	recs, err := svc.CalculateRecommendations(context.Background(), nil, asOf)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	rec := recs[0]
	assert.Equal(t, "16.67", rec.Last6MonthAvg.StringFixed(2))
	assert.Equal(t, "33.33", rec.Last3MonthAvg.StringFixed(2))
	assert.Equal(t, "100.00", rec.Last1MonthActual.StringFixed(2))
	assert.Equal(t, "16.67", rec.RecommendedBudget.StringFixed(2))
	assert.Equal(t, 1, rec.DataMonths)
	assert.Equal(t, domain.ConfidenceLow, rec.Confidence)
}

func TestCalculateRecommendations_MergedLabelCountsNamedSubcategories(t *testing.T) {
	svc, ledgerRepo, budgetRepo := newRecommendationFixture()
	require.NoError(t, budgetRepo.SetBudgetByCategory(context.Background(), "Pets", true))

	ledgerRepo.AddSpend("Pets", "Vet", decimal.NewFromInt(90), spendDate(2026, time.September))
	ledgerRepo.AddEntry(&domain.LedgerEntry{
		Category: "Pets",
		Amount:   decimal.NewFromInt(30),
		Date:     spendDate(2026, time.September),
		Type:     domain.TransactionTypeWants,
		Active:   true,
	})

	recs, err := svc.CalculateRecommendations(context.Background(), nil, referenceTime)

	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ALL (1 subcategories)", recs[0].SubCategory)
	assert.Equal(t, "120.00", recs[0].Last1MonthActual.StringFixed(2))
}
