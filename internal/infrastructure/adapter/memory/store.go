// Package memory provides an in-process implementation of the persistence
// ports. It mirrors the row-locking semantics of the SQL adapter with
// per-row mutexes, which makes it suitable for integration-style tests and
// for running the service without a database.
package memory

import (
	"sync"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// Store holds all ledger state in process memory. All access goes through
// the repositories returned by its UnitOfWork.
type Store struct {
	mu          sync.Mutex
	accounts    map[string]*entity.Account
	entries     map[string][]*entity.LedgerEntry // per account, append order
	items       map[string]*entity.PurchasableItem
	unlocks     map[string]*entity.Unlock // keyed by buyer and item
	unlocksByID map[string]*entity.Unlock

	lockMu   sync.Mutex
	rowLocks map[string]*sync.Mutex

	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewStore creates an empty in-memory store
func NewStore(timeProvider coreport.TimeProvider, logger coreport.Logger) *Store {
	return &Store{
		accounts:     make(map[string]*entity.Account),
		entries:      make(map[string][]*entity.LedgerEntry),
		items:        make(map[string]*entity.PurchasableItem),
		unlocks:      make(map[string]*entity.Unlock),
		unlocksByID:  make(map[string]*entity.Unlock),
		rowLocks:     make(map[string]*sync.Mutex),
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// rowLock returns the mutex guarding one logical row, creating it on first use
func (s *Store) rowLock(key string) *sync.Mutex {
	s.lockMu.Lock()
	defer s.lockMu.Unlock()

	lock, ok := s.rowLocks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.rowLocks[key] = lock
	}
	return lock
}

func unlockKey(buyerAccountID, itemID string) string {
	return buyerAccountID + "\x00" + itemID
}

func accountLockKey(id string) string {
	return "account:" + id
}

func itemLockKey(id string) string {
	return "item:" + id
}

// copyAccount returns an independent copy so callers never mutate stored
// state outside a committed transaction.
func copyAccount(a *entity.Account) *entity.Account {
	cp := *a
	return &cp
}

func copyItem(i *entity.PurchasableItem) *entity.PurchasableItem {
	cp := *i
	if i.EarlyBirdDeadline != nil {
		d := *i.EarlyBirdDeadline
		cp.EarlyBirdDeadline = &d
	}
	if i.ExpiresAt != nil {
		e := *i.ExpiresAt
		cp.ExpiresAt = &e
	}
	return &cp
}

func copyUnlock(u *entity.Unlock) *entity.Unlock {
	cp := *u
	if u.LastViewedAt != nil {
		v := *u.LastViewedAt
		cp.LastViewedAt = &v
	}
	return &cp
}

func copyEntry(e *entity.LedgerEntry) *entity.LedgerEntry {
	cp := *e
	return &cp
}
