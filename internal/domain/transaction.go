package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeNeeds    TransactionType = "Needs"
	TransactionTypeWants    TransactionType = "Wants"
	TransactionTypeBusiness TransactionType = "Business"
	TransactionTypeSavings  TransactionType = "Savings"
	TransactionTypeIncome   TransactionType = "Income"
)

// SpendingTransactionTypes are the types counted toward budget recommendations and migration.
var SpendingTransactionTypes = []TransactionType{
	TransactionTypeNeeds,
	TransactionTypeWants,
	TransactionTypeBusiness,
}

// IsSpending reports whether the type counts toward spend-based budgets
func (t TransactionType) IsSpending() bool {
	for _, s := range SpendingTransactionTypes {
		if t == s {
			return true
		}
	}
	return false
}

// SpendingTypeStrings returns SpendingTransactionTypes as plain strings for query binding
func SpendingTypeStrings() []string {
	out := make([]string, len(SpendingTransactionTypes))
	for i, t := range SpendingTransactionTypes {
		out[i] = string(t)
	}
	return out
}

// LedgerEntry is a single transaction as seen by the budget engine
type LedgerEntry struct {
	ID          int64           `json:"id"`
	Category    string          `json:"category"`
	SubCategory *string         `json:"subCategory,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	Type        TransactionType `json:"type"`
	Owner       *string         `json:"owner,omitempty"`
	Active      bool            `json:"active"`
}

// IsEligible reports whether the entry participates in recommendation and migration math
func (e *LedgerEntry) IsEligible() bool {
	return e.Active && e.Type.IsSpending()
}

// SubCategoryName returns the subcategory or an empty string when unset
func (e *LedgerEntry) SubCategoryName() string {
	if e.SubCategory == nil {
		return ""
	}
	return *e.SubCategory
}
