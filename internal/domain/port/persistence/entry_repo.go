package persistence

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
)

// EntryRepository defines methods to interact with the append-only ledger
// entry log. Entries are never updated or deleted.
type EntryRepository interface {
	// Append persists a new ledger entry. Callers append entries in the same
	// unit of work that mutates the affected account so a partial apply is
	// impossible.
	//
	// Possible errors:
	// - ErrStorage: If the storage layer fails
	Append(ctx context.Context, entry *entity.LedgerEntry) error

	// ListByAccount returns the account's most recent entries, newest first
	//
	// Possible errors:
	// - ErrStorage: If the storage layer fails
	ListByAccount(ctx context.Context, accountID string, limit int) ([]*entity.LedgerEntry, error)

	// SumByAccount returns the sum of all entry amounts for an account.
	// Used by the reconciliation check: the sum must equal the account's
	// balance.
	//
	// Possible errors:
	// - ErrStorage: If the storage layer fails
	SumByAccount(ctx context.Context, accountID string) (int64, error)
}
