package service

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/util"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var (
	sixMonths   = decimal.NewFromInt(6)
	threeMonths = decimal.NewFromInt(3)
)

// BudgetRecommendationService computes recommended monthly budgets from ledger history
type BudgetRecommendationService struct {
	ledgerRepo domain.LedgerRepository
	budgetRepo domain.BudgetTemplateRepository
}

// NewBudgetRecommendationService creates a new BudgetRecommendationService
func NewBudgetRecommendationService(
	ledgerRepo domain.LedgerRepository,
	budgetRepo domain.BudgetTemplateRepository,
) *BudgetRecommendationService {
	return &BudgetRecommendationService{
		ledgerRepo: ledgerRepo,
		budgetRepo: budgetRepo,
	}
}

// spendWindows holds the trailing window figures of one group
type spendWindows struct {
	avg6    decimal.Decimal
	avg3    decimal.Decimal
	actual1 decimal.Decimal
}

func (w spendWindows) isEmpty() bool {
	return w.avg6.IsZero() && w.avg3.IsZero() && w.actual1.IsZero()
}

// CalculateRecommendations returns one recommendation per spending group with
// activity in the trailing six months. Windows are anchored at now. A nil owner
// covers all owners.
func (s *BudgetRecommendationService) CalculateRecommendations(ctx context.Context, owner *string, now time.Time) ([]*domain.Recommendation, error) {
	if owner != nil && len(*owner) > domain.MaxOwnerLength {
		return nil, domain.ErrInvalidOwner
	}

	groups, err := s.ledgerRepo.DistinctGroups(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("list spend groups: %w", err)
	}

	subcategories := make(map[string][]string)
	for _, g := range groups {
		subcategories[g.Category] = append(subcategories[g.Category], g.SubCategory)
	}
	categories := make([]string, 0, len(subcategories))
	for category, subs := range subcategories {
		sort.Strings(subs)
		categories = append(categories, category)
	}
	sort.Strings(categories)

	recommendations := make([]*domain.Recommendation, 0, len(groups))
	for _, category := range categories {
		subs := subcategories[category]

		merged, err := s.budgetRepo.IsBudgetByCategory(ctx, category)
		if err != nil {
			return nil, fmt.Errorf("read grouping flag for %q: %w", category, err)
		}

		if merged {
			rec, err := s.recommendGroup(ctx, category, subs, domain.MergedSubcategoryLabel(namedCount(subs)), owner, now)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				rec.BudgetByCategory = true
				recommendations = append(recommendations, rec)
			}
			continue
		}

		for _, sub := range subs {
			rec, err := s.recommendGroup(ctx, category, []string{sub}, sub, owner, now)
			if err != nil {
				return nil, err
			}
			if rec != nil {
				recommendations = append(recommendations, rec)
			}
		}
	}

	log.Info().
		Int("groups", len(groups)).
		Int("recommendations", len(recommendations)).
		Time("reference_time", now).
		Msg("Calculated budget recommendations")

	return recommendations, nil
}

// namedCount counts subcategories other than the blank one. Blank spend is
// still pooled, it just does not count as a subcategory in the label.
func namedCount(subs []string) int {
	n := 0
	for _, sub := range subs {
		if sub != "" {
			n++
		}
	}
	return n
}

// recommendGroup returns nil when the group had no spend in any window
func (s *BudgetRecommendationService) recommendGroup(ctx context.Context, category string, subs []string, label string, owner *string, now time.Time) (*domain.Recommendation, error) {
	windows, err := s.windowSpend(ctx, category, subs, owner, now)
	if err != nil {
		return nil, err
	}
	if windows.isEmpty() {
		log.Debug().Str("category", category).Str("sub_category", label).Msg("Skipping group without recent spend")
		return nil, nil
	}

	// history is every month before the reference time, not just the windows
	history, err := s.ledgerRepo.MonthlySums(ctx, domain.MonthlySumFilter{
		Category:      category,
		SubCategories: subs,
		Until:         &now,
		Owner:         owner,
	})
	if err != nil {
		return nil, fmt.Errorf("monthly history for %q/%q: %w", category, label, err)
	}

	totals := make([]decimal.Decimal, len(history))
	for i, m := range history {
		totals[i] = m.Total
	}

	recommended := robustBudgetEstimate(totals, windows.avg6, windows.avg3)

	return &domain.Recommendation{
		Category:          category,
		SubCategory:       label,
		RecommendedBudget: recommended.Round(2),
		Last6MonthAvg:     windows.avg6.Round(2),
		Last3MonthAvg:     windows.avg3.Round(2),
		Last1MonthActual:  windows.actual1.Round(2),
		DataMonths:        len(history),
		Confidence:        domain.ConfidenceForMonths(len(history)),
	}, nil
}

// windowSpend sums the 6, 3 and 1 month windows ending at now.
// Averages use fixed divisors regardless of how many months had spend.
func (s *BudgetRecommendationService) windowSpend(ctx context.Context, category string, subs []string, owner *string, now time.Time) (spendWindows, error) {
	sum := func(months int) (decimal.Decimal, error) {
		since := util.MonthsBefore(now, months)
		totals, err := s.ledgerRepo.MonthlySums(ctx, domain.MonthlySumFilter{
			Category:      category,
			SubCategories: subs,
			Since:         &since,
			Until:         &now,
			Owner:         owner,
		})
		if err != nil {
			return decimal.Zero, fmt.Errorf("%d month spend for %q: %w", months, category, err)
		}
		return domain.SumMonthlyTotals(totals), nil
	}

	sum6, err := sum(6)
	if err != nil {
		return spendWindows{}, err
	}
	sum3, err := sum(3)
	if err != nil {
		return spendWindows{}, err
	}
	sum1, err := sum(1)
	if err != nil {
		return spendWindows{}, err
	}

	return spendWindows{
		avg6:    sum6.Div(sixMonths),
		avg3:    sum3.Div(threeMonths),
		actual1: sum1,
	}, nil
}
