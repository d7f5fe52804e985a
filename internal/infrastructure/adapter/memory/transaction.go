package memory

import (
	"context"
	"sync"
	"time"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	domainerror "github.com/creatorhub/token-ledger/internal/domain/error"
	"github.com/creatorhub/token-ledger/internal/domain/port/persistence"
)

type contextKey string

const txKey contextKey = "memory_tx"

// memTx stages all writes of one unit of work. Row locks acquired by
// GetForUpdate are held until Commit or Rollback, which gives the same
// serialization the SQL adapter gets from SELECT ... FOR UPDATE.
type memTx struct {
	store *Store

	accounts       map[string]*entity.Account
	createdAccount map[string]bool
	ensures        []string
	entries        []*entity.LedgerEntry
	items          map[string]*entity.PurchasableItem
	createdItem    map[string]bool
	unlocks        []*entity.Unlock
	viewed         map[string]time.Time

	heldKeys map[string]bool
	held     []*sync.Mutex
	done     bool
}

func newMemTx(store *Store) *memTx {
	return &memTx{
		store:          store,
		accounts:       make(map[string]*entity.Account),
		createdAccount: make(map[string]bool),
		items:          make(map[string]*entity.PurchasableItem),
		createdItem:    make(map[string]bool),
		viewed:         make(map[string]time.Time),
		heldKeys:       make(map[string]bool),
	}
}

// lockRow blocks until the row lock is held. Re-acquiring a key already held
// by this transaction is a no-op, matching row-lock semantics in SQL.
func (tx *memTx) lockRow(key string) {
	if tx.heldKeys[key] {
		return
	}
	lock := tx.store.rowLock(key)
	lock.Lock()
	tx.heldKeys[key] = true
	tx.held = append(tx.held, lock)
}

func (tx *memTx) releaseLocks() {
	for i := len(tx.held) - 1; i >= 0; i-- {
		tx.held[i].Unlock()
	}
	tx.held = nil
	tx.heldKeys = make(map[string]bool)
}

func txFromContext(ctx context.Context) *memTx {
	tx, _ := ctx.Value(txKey).(*memTx)
	return tx
}

// UnitOfWork implements persistence.UnitOfWork over an in-memory Store
type UnitOfWork struct {
	store *Store
}

// NewUnitOfWork creates a transaction coordinator over the store
func NewUnitOfWork(store *Store) *UnitOfWork {
	return &UnitOfWork{store: store}
}

// Begin starts a transaction and stores it in the returned context
func (u *UnitOfWork) Begin(ctx context.Context) (context.Context, error) {
	if txFromContext(ctx) != nil {
		return nil, domainerror.ErrInvalidOperation
	}
	return context.WithValue(ctx, txKey, newMemTx(u.store)), nil
}

// Commit applies all staged writes atomically and releases held row locks
func (u *UnitOfWork) Commit(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil || tx.done {
		return domainerror.ErrInvalidOperation
	}
	tx.done = true
	defer tx.releaseLocks()

	s := tx.store
	s.mu.Lock()
	defer s.mu.Unlock()

	// Ensures create only when still absent, so concurrent ensures of the
	// same ID collapse to one row.
	for _, id := range tx.ensures {
		if _, exists := s.accounts[id]; exists {
			continue
		}
		if _, staged := tx.accounts[id]; staged {
			continue
		}
		account, err := entity.NewAccount(id, s.timeProvider)
		if err != nil {
			return err
		}
		s.accounts[id] = account
	}

	for id, account := range tx.accounts {
		s.accounts[id] = copyAccount(account)
	}
	for id, item := range tx.items {
		s.items[id] = copyItem(item)
	}
	for _, entry := range tx.entries {
		s.entries[entry.AccountID] = append(s.entries[entry.AccountID], copyEntry(entry))
	}
	for _, unlock := range tx.unlocks {
		cp := copyUnlock(unlock)
		s.unlocks[unlockKey(cp.BuyerAccountID, cp.ItemID)] = cp
		s.unlocksByID[cp.ID] = cp
	}
	for id, at := range tx.viewed {
		if unlock, ok := s.unlocksByID[id]; ok {
			viewedAt := at
			unlock.LastViewedAt = &viewedAt
		}
	}

	return nil
}

// Rollback discards staged writes and releases held row locks
func (u *UnitOfWork) Rollback(ctx context.Context) error {
	tx := txFromContext(ctx)
	if tx == nil || tx.done {
		return domainerror.ErrInvalidOperation
	}
	tx.done = true
	tx.releaseLocks()
	return nil
}

// GetAccountRepository returns the account repository for this store
func (u *UnitOfWork) GetAccountRepository(ctx context.Context) persistence.AccountRepository {
	return &AccountRepository{store: u.store}
}

// GetEntryRepository returns the ledger entry repository for this store
func (u *UnitOfWork) GetEntryRepository(ctx context.Context) persistence.EntryRepository {
	return &EntryRepository{store: u.store}
}

// GetItemRepository returns the item repository for this store
func (u *UnitOfWork) GetItemRepository(ctx context.Context) persistence.ItemRepository {
	return &ItemRepository{store: u.store}
}

// GetUnlockRepository returns the unlock repository for this store
func (u *UnitOfWork) GetUnlockRepository(ctx context.Context) persistence.UnlockRepository {
	return &UnlockRepository{store: u.store}
}
