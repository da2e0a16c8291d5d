package service

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// BudgetMigrationService converts category-level budgets into subcategory budgets
type BudgetMigrationService struct {
	ledgerRepo domain.LedgerRepository
	budgetRepo domain.BudgetTemplateRepository
}

// NewBudgetMigrationService creates a new BudgetMigrationService
func NewBudgetMigrationService(
	ledgerRepo domain.LedgerRepository,
	budgetRepo domain.BudgetTemplateRepository,
) *BudgetMigrationService {
	return &BudgetMigrationService{
		ledgerRepo: ledgerRepo,
		budgetRepo: budgetRepo,
	}
}

// MigrateCategoryBudgets distributes every active, positive category budget across
// the category's subcategories in proportion to their historical spend, or evenly
// when none of them has spend. Rows are upserted, so re-running is idempotent.
func (s *BudgetMigrationService) MigrateCategoryBudgets(ctx context.Context) (*domain.MigrationStats, error) {
	budgets, err := s.budgetRepo.ActiveCategoryBudgets(ctx, decimal.Zero)
	if err != nil {
		return nil, fmt.Errorf("list category budgets: %w", err)
	}

	stats := &domain.MigrationStats{TotalBudgetMigrated: decimal.Zero}
	for _, budget := range budgets {
		if !budget.IsActive || !budget.BudgetAmount.IsPositive() {
			continue
		}

		spend, err := s.ledgerRepo.SubcategorySpend(ctx, budget.Category)
		if err != nil {
			return nil, fmt.Errorf("subcategory spend for %q: %w", budget.Category, err)
		}
		if len(spend) == 0 {
			log.Debug().Str("category", budget.Category).Msg("No subcategory spend, skipping budget migration")
			continue
		}

		rows := distributeCategoryBudget(budget, spend)
		if err := s.budgetRepo.UpsertSubcategoryBudgets(ctx, rows); err != nil {
			return nil, fmt.Errorf("upsert subcategory budgets for %q: %w", budget.Category, err)
		}

		stats.CategoriesProcessed++
		stats.SubcategoriesCreated += len(rows)
		for _, row := range rows {
			stats.TotalBudgetMigrated = stats.TotalBudgetMigrated.Add(row.BudgetAmount)
		}

		log.Debug().
			Str("category", budget.Category).
			Str("budget", budget.BudgetAmount.StringFixed(2)).
			Int("subcategories", len(rows)).
			Msg("Migrated category budget")
	}

	log.Info().
		Int("categories_processed", stats.CategoriesProcessed).
		Int("subcategories_created", stats.SubcategoriesCreated).
		Str("total_budget_migrated", stats.TotalBudgetMigrated.StringFixed(2)).
		Msg("Category budget migration finished")

	return stats, nil
}

// distributeCategoryBudget splits a category budget across subcategories by spend share
func distributeCategoryBudget(budget domain.CategoryBudget, spend []domain.SubcategorySpend) []domain.SubcategoryBudget {
	total := decimal.Zero
	for _, sp := range spend {
		total = total.Add(sp.Total.Abs())
	}

	amountLabel := "$" + budget.BudgetAmount.StringFixed(2)
	rows := make([]domain.SubcategoryBudget, 0, len(spend))

	if total.IsZero() {
		even := budget.BudgetAmount.Div(decimal.NewFromInt(int64(len(spend)))).Round(2)
		for _, sp := range spend {
			rows = append(rows, domain.SubcategoryBudget{
				Category:     budget.Category,
				SubCategory:  sp.SubCategory,
				BudgetAmount: even,
				Notes:        fmt.Sprintf("Migrated from category budget of %s, distributed evenly", amountLabel),
				IsActive:     true,
			})
		}
		return rows
	}

	for _, sp := range spend {
		share := sp.Total.Abs().Div(total)
		rows = append(rows, domain.SubcategoryBudget{
			Category:     budget.Category,
			SubCategory:  sp.SubCategory,
			BudgetAmount: budget.BudgetAmount.Mul(share).Round(2),
			Notes: fmt.Sprintf("Migrated from category budget of %s based on spending proportion (%s%%)",
				amountLabel, share.Mul(hundred).StringFixed(1)),
			IsActive: true,
		})
	}
	return rows
}
