//go:build integration

package postgres

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run with: DATABASE_URL=postgres://... go test -tags integration ./internal/repository/postgres/
func openIntegrationPool(t *testing.T) *pgxpool.Pool {
	t.Helper()
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		t.Skip("DATABASE_URL not set")
	}

	require.NoError(t, RunMigrations(databaseURL))

	ctx := context.Background()
	pool, err := NewPool(ctx, databaseURL)
	require.NoError(t, err)
	t.Cleanup(pool.Close)

	_, err = pool.Exec(ctx, `TRUNCATE transactions, budget_templates, subcategory_budget_templates RESTART IDENTITY`)
	require.NoError(t, err)
	return pool
}

func insertTransaction(t *testing.T, pool *pgxpool.Pool, category string, subCategory *string, amount string, date time.Time, txType domain.TransactionType, owner *string, active bool) {
	t.Helper()
	_, err := pool.Exec(context.Background(), `
INSERT INTO transactions (category, sub_category, amount, transaction_date, type, owner, is_active)
VALUES ($1, $2, $3::numeric, $4, $5, $6, $7)`,
		category, subCategory, amount, date, string(txType), owner, active)
	require.NoError(t, err)
}

func strPtr(s string) *string { return &s }

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestIntegration_LedgerRepository(t *testing.T) {
	pool := openIntegrationPool(t)
	repo := NewLedgerRepository(pool)
	ctx := context.Background()

	alice := strPtr("alice")
	insertTransaction(t, pool, "Food", strPtr("Groceries"), "-120.50", date(2026, 8, 3), domain.TransactionTypeNeeds, alice, true)
	insertTransaction(t, pool, "Food", strPtr("Groceries"), "-79.50", date(2026, 8, 20), domain.TransactionTypeNeeds, nil, true)
	insertTransaction(t, pool, "Food", strPtr("Dining"), "-40", date(2026, 9, 30), domain.TransactionTypeWants, alice, true)
	insertTransaction(t, pool, "Food", nil, "-10", date(2026, 9, 5), domain.TransactionTypeNeeds, nil, true)
	insertTransaction(t, pool, "Food", strPtr("Groceries"), "-999", date(2026, 9, 1), domain.TransactionTypeSavings, nil, true)
	insertTransaction(t, pool, "Food", strPtr("Groceries"), "-999", date(2026, 9, 1), domain.TransactionTypeNeeds, nil, false)

	t.Run("monthly sums with no optional filters", func(t *testing.T) {
		totals, err := repo.MonthlySums(ctx, domain.MonthlySumFilter{Category: "Food"})
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, "2026-08", totals[0].YearMonth)
		assert.Equal(t, "200.00", totals[0].Total.StringFixed(2))
		assert.Equal(t, "2026-09", totals[1].YearMonth)
		assert.Equal(t, "50.00", totals[1].Total.StringFixed(2))
	})

	t.Run("subcategory set, bounds and owner", func(t *testing.T) {
		since := date(2026, 8, 10)
		until := date(2026, 9, 30)
		totals, err := repo.MonthlySums(ctx, domain.MonthlySumFilter{
			Category:      "Food",
			SubCategories: []string{"Groceries", ""},
			Since:         &since,
			Until:         &until,
		})
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, "79.50", totals[0].Total.StringFixed(2))
		assert.Equal(t, "10.00", totals[1].Total.StringFixed(2))

		totals, err = repo.MonthlySums(ctx, domain.MonthlySumFilter{Category: "Food", Owner: alice})
		require.NoError(t, err)
		require.Len(t, totals, 2)
		assert.Equal(t, "120.50", totals[0].Total.StringFixed(2))
		assert.Equal(t, "40.00", totals[1].Total.StringFixed(2))
	})

	t.Run("distinct groups", func(t *testing.T) {
		groups, err := repo.DistinctGroups(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, []domain.SpendGroup{
			{Category: "Food", SubCategory: ""},
			{Category: "Food", SubCategory: "Dining"},
			{Category: "Food", SubCategory: "Groceries"},
		}, groups)

		groups, err = repo.DistinctGroups(ctx, alice)
		require.NoError(t, err)
		assert.Len(t, groups, 2)
	})

	t.Run("subcategory spend skips blank", func(t *testing.T) {
		spend, err := repo.SubcategorySpend(ctx, "Food")
		require.NoError(t, err)
		require.Len(t, spend, 2)
		assert.Equal(t, "Dining", spend[0].SubCategory)
		assert.Equal(t, "40.00", spend[0].Total.StringFixed(2))
		assert.Equal(t, "Groceries", spend[1].SubCategory)
		assert.Equal(t, "200.00", spend[1].Total.StringFixed(2))
	})
}

func TestIntegration_BudgetTemplatesAndMigration(t *testing.T) {
	pool := openIntegrationPool(t)
	ledgerRepo := NewLedgerRepository(pool)
	budgetRepo := NewBudgetTemplateRepository(pool)
	ctx := context.Background()

	insertTransaction(t, pool, "Food", strPtr("Groceries"), "-300", date(2026, 8, 3), domain.TransactionTypeNeeds, nil, true)
	insertTransaction(t, pool, "Food", strPtr("Dining"), "-200", date(2026, 9, 3), domain.TransactionTypeWants, nil, true)
	require.NoError(t, budgetRepo.SetCategoryBudget(ctx, domain.CategoryBudget{Category: "Food", BudgetAmount: decimal.NewFromInt(150), IsActive: true}))
	require.NoError(t, budgetRepo.SetCategoryBudget(ctx, domain.CategoryBudget{Category: "Gifts", BudgetAmount: decimal.Zero, IsActive: true}))
	assert.ErrorIs(t, budgetRepo.SetCategoryBudget(ctx, domain.CategoryBudget{Category: "Bad", BudgetAmount: decimal.NewFromInt(-1)}), domain.ErrInvalidAmount)

	active, err := budgetRepo.ActiveCategoryBudgets(ctx, decimal.Zero)
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "Food", active[0].Category)

	migrator := service.NewBudgetMigrationService(ledgerRepo, budgetRepo)
	for i := 0; i < 2; i++ {
		stats, err := migrator.MigrateCategoryBudgets(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, stats.SubcategoriesCreated)
	}

	rows, err := budgetRepo.GetSubcategoryBudgets(ctx, "Food")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Dining", rows[0].SubCategory)
	assert.Equal(t, "60.00", rows[0].BudgetAmount.StringFixed(2))
	assert.Equal(t, "90.00", rows[1].BudgetAmount.StringFixed(2))

	merged, err := budgetRepo.IsBudgetByCategory(ctx, "Food")
	require.NoError(t, err)
	assert.False(t, merged)

	require.NoError(t, budgetRepo.SetBudgetByCategory(ctx, "Food", true))
	merged, err = budgetRepo.IsBudgetByCategory(ctx, "Food")
	require.NoError(t, err)
	assert.True(t, merged)

	recs, err := service.NewBudgetRecommendationService(ledgerRepo, budgetRepo).CalculateRecommendations(ctx, nil, date(2026, 10, 1))
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ALL (2 subcategories)", recs[0].SubCategory)
	assert.Equal(t, "83.33", recs[0].Last6MonthAvg.StringFixed(2))
}
