package memory

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
)

// EntryRepository implements persistence.EntryRepository over the Store
type EntryRepository struct {
	store *Store
}

// NewEntryRepository creates an entry repository over the store
func NewEntryRepository(store *Store) *EntryRepository {
	return &EntryRepository{store: store}
}

// Append stages a new ledger entry
func (r *EntryRepository) Append(ctx context.Context, entry *entity.LedgerEntry) error {
	if tx := txFromContext(ctx); tx != nil {
		tx.entries = append(tx.entries, copyEntry(entry))
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	r.store.entries[entry.AccountID] = append(r.store.entries[entry.AccountID], copyEntry(entry))
	return nil
}

// ListByAccount returns the account's most recent entries, newest first
func (r *EntryRepository) ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.LedgerEntry, error) {
	r.store.mu.Lock()
	stored := r.store.entries[accountID]
	all := make([]*entity.LedgerEntry, 0, len(stored))
	for _, entry := range stored {
		all = append(all, copyEntry(entry))
	}
	r.store.mu.Unlock()

	if tx := txFromContext(ctx); tx != nil {
		for _, entry := range tx.entries {
			if entry.AccountID == accountID {
				all = append(all, copyEntry(entry))
			}
		}
	}

	// Stored append order is chronological; reverse for newest first
	result := make([]*entity.LedgerEntry, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		result = append(result, all[i])
		if limit > 0 && len(result) >= limit {
			break
		}
	}
	return result, nil
}

// SumByAccount returns the sum of all entry amounts for an account,
// including entries staged in the current transaction
func (r *EntryRepository) SumByAccount(ctx context.Context, accountID string) (int64, error) {
	var sum int64

	r.store.mu.Lock()
	for _, entry := range r.store.entries[accountID] {
		sum += entry.Amount
	}
	r.store.mu.Unlock()

	if tx := txFromContext(ctx); tx != nil {
		for _, entry := range tx.entries {
			if entry.AccountID == accountID {
				sum += entry.Amount
			}
		}
	}

	return sum, nil
}
