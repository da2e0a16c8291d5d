package handler

import (
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(
	e *echo.Echo,
	budgetRecommendationHandler *BudgetRecommendationHandler,
	budgetTemplateHandler *BudgetTemplateHandler,
	middlewares ...echo.MiddlewareFunc,
) {
	// API version 1
	api := e.Group("/api/v1", middlewares...)

	// Budget recommendation routes
	recommendations := api.Group("/budget-recommendations")
	recommendations.GET("", budgetRecommendationHandler.GetRecommendations)
	recommendations.POST("/migrate", budgetRecommendationHandler.MigrateBudgets)
	recommendations.GET("/subcategory-budgets", budgetTemplateHandler.ListSubcategoryBudgets)
}
