package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetTemplateService manages category and subcategory budget templates
type BudgetTemplateService struct {
	budgetRepo domain.BudgetTemplateRepository
}

// NewBudgetTemplateService creates a new BudgetTemplateService
func NewBudgetTemplateService(budgetRepo domain.BudgetTemplateRepository) *BudgetTemplateService {
	return &BudgetTemplateService{budgetRepo: budgetRepo}
}

func normalizeCategory(category string) (string, error) {
	category = strings.TrimSpace(category)
	if category == "" || len(category) > domain.MaxCategoryLength {
		return "", domain.ErrInvalidCategory
	}
	return category, nil
}

// ListSubcategoryBudgets returns the subcategory budgets of a category, ordered by subcategory
func (s *BudgetTemplateService) ListSubcategoryBudgets(ctx context.Context, category string) ([]domain.SubcategoryBudget, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}

	budgets, err := s.budgetRepo.GetSubcategoryBudgets(ctx, category)
	if err != nil {
		return nil, fmt.Errorf("list subcategory budgets for %q: %w", category, err)
	}
	return budgets, nil
}

// SetCategoryBudget creates or replaces a category-level budget
func (s *BudgetTemplateService) SetCategoryBudget(ctx context.Context, category string, amount decimal.Decimal, active bool) (*domain.CategoryBudget, error) {
	category, err := normalizeCategory(category)
	if err != nil {
		return nil, err
	}
	if amount.IsNegative() {
		return nil, domain.ErrInvalidAmount
	}

	budget := domain.CategoryBudget{
		Category:     category,
		BudgetAmount: amount.Round(2),
		IsActive:     active,
	}
	if err := s.budgetRepo.SetCategoryBudget(ctx, budget); err != nil {
		return nil, fmt.Errorf("set category budget for %q: %w", category, err)
	}

	log.Info().Str("category", category).Str("amount", budget.BudgetAmount.StringFixed(2)).Bool("active", active).Msg("Category budget set")
	return &budget, nil
}

// SetBudgetByCategory switches a category between pooled and per-subcategory budgeting
func (s *BudgetTemplateService) SetBudgetByCategory(ctx context.Context, category string, merged bool) error {
	category, err := normalizeCategory(category)
	if err != nil {
		return err
	}

	if err := s.budgetRepo.SetBudgetByCategory(ctx, category, merged); err != nil {
		return fmt.Errorf("set grouping flag for %q: %w", category, err)
	}

	log.Info().Str("category", category).Bool("budget_by_category", merged).Msg("Category grouping updated")
	return nil
}
