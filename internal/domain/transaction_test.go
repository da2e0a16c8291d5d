package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLedgerEntry_IsEligible(t *testing.T) {
	tests := []struct {
		name     string
		txType   TransactionType
		active   bool
		expected bool
	}{
		{"needs active", TransactionTypeNeeds, true, true},
		{"wants active", TransactionTypeWants, true, true},
		{"business active", TransactionTypeBusiness, true, true},
		{"savings excluded", TransactionTypeSavings, true, false},
		{"income excluded", TransactionTypeIncome, true, false},
		{"inactive needs", TransactionTypeNeeds, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := &LedgerEntry{Category: "Groceries", Amount: decimal.NewFromInt(-10), Type: tt.txType, Active: tt.active}
			assert.Equal(t, tt.expected, entry.IsEligible())
		})
	}
}

func TestLedgerEntry_SubCategoryName(t *testing.T) {
	entry := &LedgerEntry{Category: "Groceries"}
	assert.Equal(t, "", entry.SubCategoryName())

	sub := "Bakery"
	entry.SubCategory = &sub
	assert.Equal(t, "Bakery", entry.SubCategoryName())
}

func TestSpendingTypeStrings(t *testing.T) {
	assert.Equal(t, []string{"Needs", "Wants", "Business"}, SpendingTypeStrings())
}
