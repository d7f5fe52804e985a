package persistence

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
)

// AccountRepository defines methods to interact with account data
type AccountRepository interface {
	// GetByID retrieves an account by ID
	//
	// Possible errors:
	// - ErrAccountNotFound: If no account with the given ID exists
	// - ErrStorage: If the storage layer fails
	GetByID(ctx context.Context, id string) (*entity.Account, error)

	// GetForUpdate retrieves an account with an exclusive row lock for the
	// remainder of the surrounding unit of work. The check-and-debit of a
	// transfer happens under this lock so concurrent transfers touching the
	// same payer cannot interleave.
	//
	// Possible errors:
	// - ErrAccountNotFound: If no account with the given ID exists
	// - ErrStorage: If the storage layer fails
	GetForUpdate(ctx context.Context, id string) (*entity.Account, error)

	// Create creates a new account
	//
	// Possible errors:
	// - ErrDuplicateAccount: If an account with the same ID already exists
	// - ErrStorage: If the storage layer fails
	Create(ctx context.Context, account *entity.Account) error

	// Ensure idempotently creates a zero-balance account if absent.
	// Concurrent calls for the same ID never create duplicates or error;
	// exactly one row results.
	//
	// Possible errors:
	// - ErrStorage: If the storage layer fails
	Ensure(ctx context.Context, id string) error

	// Save persists the account's balance, aggregate counters and timestamp
	//
	// Possible errors:
	// - ErrAccountNotFound: If the account doesn't exist
	// - ErrStorage: If the storage layer fails
	Save(ctx context.Context, account *entity.Account) error
}
