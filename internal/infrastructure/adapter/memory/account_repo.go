package memory

import (
	"context"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	domainerror "github.com/creatorhub/token-ledger/internal/domain/error"
)

// AccountRepository implements persistence.AccountRepository over the Store
type AccountRepository struct {
	store *Store
}

// NewAccountRepository creates an account repository over the store
func NewAccountRepository(store *Store) *AccountRepository {
	return &AccountRepository{store: store}
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	if tx := txFromContext(ctx); tx != nil {
		if staged, ok := tx.accounts[id]; ok {
			return copyAccount(staged), nil
		}
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	account, ok := r.store.accounts[id]
	if !ok {
		return nil, domainerror.ErrAccountNotFound
	}
	return copyAccount(account), nil
}

// GetForUpdate retrieves an account holding its row lock until the
// transaction ends. Without a transaction it degrades to a plain read.
func (r *AccountRepository) GetForUpdate(ctx context.Context, id string) (*entity.Account, error) {
	tx := txFromContext(ctx)
	if tx == nil {
		return r.GetByID(ctx, id)
	}

	tx.lockRow(accountLockKey(id))
	return r.GetByID(ctx, id)
}

// Create creates a new account
func (r *AccountRepository) Create(ctx context.Context, account *entity.Account) error {
	if tx := txFromContext(ctx); tx != nil {
		if _, staged := tx.accounts[account.ID]; staged {
			return domainerror.ErrDuplicateAccount
		}
		if r.exists(account.ID) {
			return domainerror.ErrDuplicateAccount
		}
		tx.accounts[account.ID] = copyAccount(account)
		tx.createdAccount[account.ID] = true
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.ID]; ok {
		return domainerror.ErrDuplicateAccount
	}
	r.store.accounts[account.ID] = copyAccount(account)
	return nil
}

// Ensure idempotently creates a zero-balance account if absent
func (r *AccountRepository) Ensure(ctx context.Context, id string) error {
	if tx := txFromContext(ctx); tx != nil {
		tx.ensures = append(tx.ensures, id)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[id]; ok {
		return nil
	}
	account, err := entity.NewAccount(id, r.store.timeProvider)
	if err != nil {
		return err
	}
	r.store.accounts[id] = account
	return nil
}

// Save persists the account's current state
func (r *AccountRepository) Save(ctx context.Context, account *entity.Account) error {
	if tx := txFromContext(ctx); tx != nil {
		if !r.exists(account.ID) && !tx.createdAccount[account.ID] {
			return domainerror.ErrAccountNotFound
		}
		tx.accounts[account.ID] = copyAccount(account)
		return nil
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.accounts[account.ID]; !ok {
		return domainerror.ErrAccountNotFound
	}
	r.store.accounts[account.ID] = copyAccount(account)
	return nil
}

func (r *AccountRepository) exists(id string) bool {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	_, ok := r.store.accounts[id]
	return ok
}
