package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const asOfLayout = time.DateOnly

// BudgetRecommendationHandler handles budget recommendation and migration HTTP requests
type BudgetRecommendationHandler struct {
	recommendationService *service.BudgetRecommendationService
	migrationService      *service.BudgetMigrationService
	now                   func() time.Time
}

// NewBudgetRecommendationHandler creates a new BudgetRecommendationHandler
func NewBudgetRecommendationHandler(
	recommendationService *service.BudgetRecommendationService,
	migrationService *service.BudgetMigrationService,
) *BudgetRecommendationHandler {
	return &BudgetRecommendationHandler{
		recommendationService: recommendationService,
		migrationService:      migrationService,
		now:                   time.Now,
	}
}

// RecommendationResponse represents one recommended budget
type RecommendationResponse struct {
	Category          string `json:"category"`
	SubCategory       string `json:"subCategory"`
	RecommendedBudget string `json:"recommendedBudget"`
	Last6MonthAvg     string `json:"last6moAvg"`
	Last3MonthAvg     string `json:"last3moAvg"`
	Last1MonthActual  string `json:"last1moActual"`
	DataMonths        int    `json:"dataMonths"`
	Confidence        string `json:"confidence"`
	BudgetByCategory  bool   `json:"budgetByCategory"`
}

// RecommendationListResponse represents the recommendations for one reference time
type RecommendationListResponse struct {
	ReferenceTime    time.Time                `json:"referenceTime"`
	TotalRecommended string                   `json:"totalRecommended"`
	Recommendations  []RecommendationResponse `json:"recommendations"`
}

// MigrationStatsResponse represents the outcome of a budget migration run
type MigrationStatsResponse struct {
	CategoriesProcessed  int    `json:"categoriesProcessed"`
	SubcategoriesCreated int    `json:"subcategoriesCreated"`
	TotalBudgetMigrated  string `json:"totalBudgetMigrated"`
}

// GetRecommendations godoc
// @Summary List budget recommendations
// @Description Recommended monthly budgets per category/subcategory from spending history
// @Tags budget-recommendations
// @Produce json
// @Param owner query string false "Restrict to one owner"
// @Param asOf query string false "Reference date (YYYY-MM-DD), windows end before it"
// @Success 200 {object} RecommendationListResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /budget-recommendations [get]
func (h *BudgetRecommendationHandler) GetRecommendations(c echo.Context) error {
	var owner *string
	if o := strings.TrimSpace(c.QueryParam("owner")); o != "" {
		if len(o) > domain.MaxOwnerLength {
			return NewValidationError(c, "Invalid owner", []ValidationError{
				{Field: "owner", Message: "Owner must be 255 characters or less"},
			})
		}
		owner = &o
	}

	referenceTime := h.now()
	if asOf := c.QueryParam("asOf"); asOf != "" {
		parsed, err := time.Parse(asOfLayout, asOf)
		if err != nil {
			return NewValidationError(c, "Invalid asOf date", []ValidationError{
				{Field: "asOf", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		referenceTime = parsed
	}

	recommendations, err := h.recommendationService.CalculateRecommendations(c.Request().Context(), owner, referenceTime)
	if err != nil {
		return h.serviceError(c, err, "Failed to calculate budget recommendations")
	}

	return c.JSON(http.StatusOK, toRecommendationListResponse(referenceTime, recommendations))
}

// MigrateBudgets godoc
// @Summary Migrate category budgets to subcategories
// @Description Distributes each active category budget across its subcategories by historical spend share
// @Tags budget-recommendations
// @Produce json
// @Success 200 {object} MigrationStatsResponse
// @Failure 503 {object} ProblemDetails
// @Router /budget-recommendations/migrate [post]
func (h *BudgetRecommendationHandler) MigrateBudgets(c echo.Context) error {
	stats, err := h.migrationService.MigrateCategoryBudgets(c.Request().Context())
	if err != nil {
		return h.serviceError(c, err, "Failed to migrate category budgets")
	}

	return c.JSON(http.StatusOK, MigrationStatsResponse{
		CategoriesProcessed:  stats.CategoriesProcessed,
		SubcategoriesCreated: stats.SubcategoriesCreated,
		TotalBudgetMigrated:  stats.TotalBudgetMigrated.StringFixed(2),
	})
}

func (h *BudgetRecommendationHandler) serviceError(c echo.Context, err error, detail string) error {
	switch {
	case errors.Is(err, domain.ErrInvalidOwner):
		return NewValidationError(c, "Invalid owner", []ValidationError{
			{Field: "owner", Message: "Owner must be 255 characters or less"},
		})
	case errors.Is(err, domain.ErrStoreUnavailable):
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Budget store unavailable")
		return NewServiceUnavailableError(c, "Budget data is temporarily unavailable")
	default:
		log.Error().Err(err).Str("path", c.Request().URL.Path).Msg(detail)
		return NewInternalError(c, detail)
	}
}

// Helper functions

func toRecommendationResponse(r *domain.Recommendation) RecommendationResponse {
	return RecommendationResponse{
		Category:          r.Category,
		SubCategory:       r.SubCategory,
		RecommendedBudget: r.RecommendedBudget.StringFixed(2),
		Last6MonthAvg:     r.Last6MonthAvg.StringFixed(2),
		Last3MonthAvg:     r.Last3MonthAvg.StringFixed(2),
		Last1MonthActual:  r.Last1MonthActual.StringFixed(2),
		DataMonths:        r.DataMonths,
		Confidence:        string(r.Confidence),
		BudgetByCategory:  r.BudgetByCategory,
	}
}

func toRecommendationListResponse(referenceTime time.Time, recommendations []*domain.Recommendation) RecommendationListResponse {
	total := decimal.Zero
	items := make([]RecommendationResponse, len(recommendations))
	for i, r := range recommendations {
		items[i] = toRecommendationResponse(r)
		total = total.Add(r.RecommendedBudget)
	}
	return RecommendationListResponse{
		ReferenceTime:    referenceTime,
		TotalRecommended: total.StringFixed(2),
		Recommendations:  items,
	}
}
