package persistence

import (
	"context"
)

// UnitOfWork coordinates operations across multiple repositories inside one
// atomic storage transaction. A transfer's balance check, both balance
// mutations, both ledger entries and (for purchases) the receipt insert all
// happen between Begin and Commit; Rollback leaves no partial state.
type UnitOfWork interface {
	// Begin starts a new transaction and returns a transactional context
	Begin(ctx context.Context) (context.Context, error)

	// Commit commits the transaction in the given context
	Commit(ctx context.Context) error

	// Rollback rolls back the transaction in the given context
	Rollback(ctx context.Context) error

	// GetAccountRepository returns an account repository bound to the current transaction
	GetAccountRepository(ctx context.Context) AccountRepository

	// GetEntryRepository returns a ledger entry repository bound to the current transaction
	GetEntryRepository(ctx context.Context) EntryRepository

	// GetItemRepository returns an item repository bound to the current transaction
	GetItemRepository(ctx context.Context) ItemRepository

	// GetUnlockRepository returns an unlock repository bound to the current transaction
	GetUnlockRepository(ctx context.Context) UnlockRepository
}
