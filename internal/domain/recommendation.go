package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Month-count thresholds for confidence grades
const (
	HighConfidenceMonths   = 12
	MediumConfidenceMonths = 6
)

// ConfidenceForMonths grades how much history backs a recommendation
func ConfidenceForMonths(months int) Confidence {
	switch {
	case months >= HighConfidenceMonths:
		return ConfidenceHigh
	case months >= MediumConfidenceMonths:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Recommendation is a suggested monthly budget for one spending group
type Recommendation struct {
	Category          string          `json:"category"`
	SubCategory       string          `json:"subCategory"`
	RecommendedBudget decimal.Decimal `json:"recommendedBudget"`
	Last6MonthAvg     decimal.Decimal `json:"last6moAvg"`
	Last3MonthAvg     decimal.Decimal `json:"last3moAvg"`
	Last1MonthActual  decimal.Decimal `json:"last1moActual"`
	DataMonths        int             `json:"dataMonths"`
	Confidence        Confidence      `json:"confidence"`
	BudgetByCategory  bool            `json:"budgetByCategory"`
}

// MergedSubcategoryLabel is the sub_category label of a pooled category group
func MergedSubcategoryLabel(n int) string {
	return fmt.Sprintf("ALL (%d subcategories)", n)
}
