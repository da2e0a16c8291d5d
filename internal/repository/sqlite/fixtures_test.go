package sqlite

import (
	"context"
	"fmt"

	"github.com/dafibh/fortuna/fortuna-budget/internal/domain"
)

// insertEntry appends a ledger entry for test fixtures
func (r *LedgerRepository) insertEntry(ctx context.Context, entry *domain.LedgerEntry) error {
	res, err := r.db.ExecContext(ctx, `
INSERT INTO transactions (category, sub_category, amount, transaction_date, type, owner, is_active)
VALUES (?1, ?2, ?3, ?4, ?5, ?6, ?7)`,
		entry.Category,
		entry.SubCategory,
		entry.Amount.String(),
		entry.Date.UTC().Format(dateLayout),
		string(entry.Type),
		entry.Owner,
		entry.Active,
	)
	if err != nil {
		return fmt.Errorf("insert ledger entry: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("read ledger entry id: %w", err)
	}
	entry.ID = id
	return nil
}
