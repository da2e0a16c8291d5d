package testutil

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/util"
	"github.com/shopspring/decimal"
)

// MockLedgerRepository is a mock implementation of domain.LedgerRepository.
// Aggregates are computed from Entries the same way the SQL stores do.
type MockLedgerRepository struct {
	Entries            []*domain.LedgerEntry
	NextID             int64
	MonthlySumsCalls   int
	MonthlySumsFn      func(filter domain.MonthlySumFilter) ([]domain.MonthlyTotal, error)
	DistinctGroupsFn   func(owner *string) ([]domain.SpendGroup, error)
	SubcategorySpendFn func(category string) ([]domain.SubcategorySpend, error)
}

// NewMockLedgerRepository creates a new MockLedgerRepository
func NewMockLedgerRepository() *MockLedgerRepository {
	return &MockLedgerRepository{
		Entries: make([]*domain.LedgerEntry, 0),
		NextID:  1,
	}
}

// AddEntry adds a ledger entry to the mock
func (m *MockLedgerRepository) AddEntry(entry *domain.LedgerEntry) {
	if entry.ID == 0 {
		entry.ID = m.NextID
		m.NextID++
	}
	m.Entries = append(m.Entries, entry)
}

// AddSpend adds an active Needs entry for the given category/subcategory on date
func (m *MockLedgerRepository) AddSpend(category, subCategory string, amount decimal.Decimal, date time.Time) {
	sub := subCategory
	m.AddEntry(&domain.LedgerEntry{
		Category:    category,
		SubCategory: &sub,
		Amount:      amount,
		Date:        date,
		Type:        domain.TransactionTypeNeeds,
		Active:      true,
	})
}

// MonthlySums aggregates eligible entries by calendar month
func (m *MockLedgerRepository) MonthlySums(ctx context.Context, filter domain.MonthlySumFilter) ([]domain.MonthlyTotal, error) {
	m.MonthlySumsCalls++
	if m.MonthlySumsFn != nil {
		return m.MonthlySumsFn(filter)
	}

	subs := make(map[string]bool, len(filter.SubCategories))
	for _, s := range filter.SubCategories {
		subs[s] = true
	}

	byMonth := make(map[string]decimal.Decimal)
	for _, e := range m.Entries {
		if !e.IsEligible() || e.Category != filter.Category {
			continue
		}
		if len(subs) > 0 && !subs[e.SubCategoryName()] {
			continue
		}
		if !ownerMatches(e, filter.Owner) {
			continue
		}
		if filter.Since != nil && e.Date.Before(*filter.Since) {
			continue
		}
		if filter.Until != nil && !e.Date.Before(*filter.Until) {
			continue
		}
		key := util.YearMonthKey(e.Date)
		byMonth[key] = byMonth[key].Add(e.Amount.Abs())
	}

	keys := make([]string, 0, len(byMonth))
	for k := range byMonth {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	result := make([]domain.MonthlyTotal, len(keys))
	for i, k := range keys {
		result[i] = domain.MonthlyTotal{YearMonth: k, Total: byMonth[k]}
	}
	return result, nil
}

// DistinctGroups lists (category, sub_category) pairs with eligible entries
func (m *MockLedgerRepository) DistinctGroups(ctx context.Context, owner *string) ([]domain.SpendGroup, error) {
	if m.DistinctGroupsFn != nil {
		return m.DistinctGroupsFn(owner)
	}

	seen := make(map[domain.SpendGroup]bool)
	result := make([]domain.SpendGroup, 0)
	for _, e := range m.Entries {
		if !e.IsEligible() || !ownerMatches(e, owner) {
			continue
		}
		g := domain.SpendGroup{Category: e.Category, SubCategory: e.SubCategoryName()}
		if seen[g] {
			continue
		}
		seen[g] = true
		result = append(result, g)
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Category != result[j].Category {
			return result[i].Category < result[j].Category
		}
		return result[i].SubCategory < result[j].SubCategory
	})
	return result, nil
}

// SubcategorySpend totals eligible spend per non-blank subcategory of a category
func (m *MockLedgerRepository) SubcategorySpend(ctx context.Context, category string) ([]domain.SubcategorySpend, error) {
	if m.SubcategorySpendFn != nil {
		return m.SubcategorySpendFn(category)
	}

	totals := make(map[string]decimal.Decimal)
	for _, e := range m.Entries {
		if !e.IsEligible() || e.Category != category || e.SubCategoryName() == "" {
			continue
		}
		totals[e.SubCategoryName()] = totals[e.SubCategoryName()].Add(e.Amount.Abs())
	}

	names := make([]string, 0, len(totals))
	for name := range totals {
		names = append(names, name)
	}
	sort.Strings(names)

	result := make([]domain.SubcategorySpend, len(names))
	for i, name := range names {
		result[i] = domain.SubcategorySpend{SubCategory: name, Total: totals[name]}
	}
	return result, nil
}

func ownerMatches(e *domain.LedgerEntry, owner *string) bool {
	if owner == nil {
		return true
	}
	return e.Owner != nil && *e.Owner == *owner
}

// MockBudgetTemplateRepository is a mock implementation of domain.BudgetTemplateRepository
type MockBudgetTemplateRepository struct {
	CategoryBudgets      []domain.CategoryBudget
	SubcategoryBudgets   map[string]*domain.SubcategoryBudget
	MergedCategories     map[string]bool
	UpsertCalls          int
	ActiveFn             func(minAmount decimal.Decimal) ([]domain.CategoryBudget, error)
	UpsertFn             func(budgets []domain.SubcategoryBudget) error
	IsBudgetByCategoryFn func(category string) (bool, error)
}

// NewMockBudgetTemplateRepository creates a new MockBudgetTemplateRepository
func NewMockBudgetTemplateRepository() *MockBudgetTemplateRepository {
	return &MockBudgetTemplateRepository{
		CategoryBudgets:    make([]domain.CategoryBudget, 0),
		SubcategoryBudgets: make(map[string]*domain.SubcategoryBudget),
		MergedCategories:   make(map[string]bool),
	}
}

func subcategoryBudgetKey(category, subCategory string) string {
	return fmt.Sprintf("%s\x00%s", category, subCategory)
}

// AddCategoryBudget adds a legacy category budget to the mock
func (m *MockBudgetTemplateRepository) AddCategoryBudget(category string, amount decimal.Decimal, active bool) {
	m.CategoryBudgets = append(m.CategoryBudgets, domain.CategoryBudget{
		Category:     category,
		BudgetAmount: amount,
		IsActive:     active,
	})
}

// SetCategoryBudget creates or replaces a category budget
func (m *MockBudgetTemplateRepository) SetCategoryBudget(ctx context.Context, budget domain.CategoryBudget) error {
	if budget.BudgetAmount.IsNegative() {
		return domain.ErrInvalidAmount
	}
	for i, b := range m.CategoryBudgets {
		if b.Category == budget.Category {
			m.CategoryBudgets[i] = budget
			return nil
		}
	}
	m.CategoryBudgets = append(m.CategoryBudgets, budget)
	return nil
}

// SetBudgetByCategory marks a category as pooled, including its existing rows
func (m *MockBudgetTemplateRepository) SetBudgetByCategory(ctx context.Context, category string, merged bool) error {
	m.MergedCategories[category] = merged
	for _, b := range m.SubcategoryBudgets {
		if b.Category == category {
			b.BudgetByCategory = merged
		}
	}
	return nil
}

// ActiveCategoryBudgets returns active budgets above minAmount
func (m *MockBudgetTemplateRepository) ActiveCategoryBudgets(ctx context.Context, minAmount decimal.Decimal) ([]domain.CategoryBudget, error) {
	if m.ActiveFn != nil {
		return m.ActiveFn(minAmount)
	}
	result := make([]domain.CategoryBudget, 0, len(m.CategoryBudgets))
	for _, b := range m.CategoryBudgets {
		if b.IsActive && b.BudgetAmount.GreaterThan(minAmount) {
			result = append(result, b)
		}
	}
	return result, nil
}

// UpsertSubcategoryBudgets creates or overwrites subcategory budgets
func (m *MockBudgetTemplateRepository) UpsertSubcategoryBudgets(ctx context.Context, budgets []domain.SubcategoryBudget) error {
	m.UpsertCalls++
	if m.UpsertFn != nil {
		return m.UpsertFn(budgets)
	}
	for _, b := range budgets {
		key := subcategoryBudgetKey(b.Category, b.SubCategory)
		if existing, ok := m.SubcategoryBudgets[key]; ok {
			existing.BudgetAmount = b.BudgetAmount
			existing.Notes = b.Notes
			existing.IsActive = b.IsActive
			existing.UpdatedAt = time.Now()
			continue
		}
		row := b
		row.BudgetByCategory = m.MergedCategories[b.Category]
		row.UpdatedAt = time.Now()
		m.SubcategoryBudgets[key] = &row
	}
	return nil
}

// IsBudgetByCategory reports whether the category is pooled
func (m *MockBudgetTemplateRepository) IsBudgetByCategory(ctx context.Context, category string) (bool, error) {
	if m.IsBudgetByCategoryFn != nil {
		return m.IsBudgetByCategoryFn(category)
	}
	return m.MergedCategories[category], nil
}

// GetSubcategoryBudgets returns the category's subcategory budgets ordered by sub_category
func (m *MockBudgetTemplateRepository) GetSubcategoryBudgets(ctx context.Context, category string) ([]domain.SubcategoryBudget, error) {
	result := make([]domain.SubcategoryBudget, 0)
	for _, b := range m.SubcategoryBudgets {
		if b.Category == category {
			result = append(result, *b)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].SubCategory < result[j].SubCategory })
	return result, nil
}
