package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
	"github.com/dafibh/fortuna/fortuna-budget/internal/service"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// BudgetTemplateHandler handles budget template HTTP requests
type BudgetTemplateHandler struct {
	budgetTemplateService *service.BudgetTemplateService
}

// NewBudgetTemplateHandler creates a new BudgetTemplateHandler
func NewBudgetTemplateHandler(budgetTemplateService *service.BudgetTemplateService) *BudgetTemplateHandler {
	return &BudgetTemplateHandler{budgetTemplateService: budgetTemplateService}
}

// SubcategoryBudgetResponse represents a subcategory budget in API responses
type SubcategoryBudgetResponse struct {
	Category         string    `json:"category"`
	SubCategory      string    `json:"subCategory"`
	BudgetAmount     string    `json:"budgetAmount"`
	Notes            string    `json:"notes"`
	IsActive         bool      `json:"isActive"`
	BudgetByCategory bool      `json:"budgetByCategory"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// ListSubcategoryBudgets godoc
// @Summary List subcategory budgets
// @Description Subcategory budgets of one category, ordered by subcategory
// @Tags budget-recommendations
// @Produce json
// @Param category query string true "Category name"
// @Success 200 {array} SubcategoryBudgetResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /budget-recommendations/subcategory-budgets [get]
func (h *BudgetTemplateHandler) ListSubcategoryBudgets(c echo.Context) error {
	budgets, err := h.budgetTemplateService.ListSubcategoryBudgets(c.Request().Context(), c.QueryParam("category"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidCategory):
			return NewValidationError(c, "Invalid category", []ValidationError{
				{Field: "category", Message: "Category is required and must be 255 characters or less"},
			})
		case errors.Is(err, domain.ErrStoreUnavailable):
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Budget store unavailable")
			return NewServiceUnavailableError(c, "Budget data is temporarily unavailable")
		default:
			log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Failed to list subcategory budgets")
			return NewInternalError(c, "Failed to list subcategory budgets")
		}
	}

	response := make([]SubcategoryBudgetResponse, len(budgets))
	for i, b := range budgets {
		response[i] = SubcategoryBudgetResponse{
			Category:         b.Category,
			SubCategory:      b.SubCategory,
			BudgetAmount:     b.BudgetAmount.StringFixed(2),
			Notes:            b.Notes,
			IsActive:         b.IsActive,
			BudgetByCategory: b.BudgetByCategory,
			UpdatedAt:        b.UpdatedAt,
		}
	}
	return c.JSON(http.StatusOK, response)
}
