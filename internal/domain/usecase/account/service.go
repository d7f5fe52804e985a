// Package account implements account-level ledger operations: balance
// queries, idempotent account creation, token-pack credits, refunds and the
// reconciliation audit.
package account

import (
	"time"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/domain/port/persistence"
)

// BalanceSnapshot is a read-only view of an account's balance and aggregates
type BalanceSnapshot struct {
	AccountID      string
	Balance        int64
	TotalEarned    int64
	TotalSpent     int64
	TotalPurchased int64
	UpdatedAt      time.Time
}

// ReconciliationReport compares an account's balance against the sum of its
// ledger entries. The two agree for any account only ever touched through
// the engine.
type ReconciliationReport struct {
	AccountID  string
	Balance    int64
	EntrySum   int64
	Reconciled bool
}

// Service exposes account operations. Reads go straight to the repositories;
// mutations run inside a unit of work so the entry and the balance change
// land together.
type Service struct {
	uow          persistence.UnitOfWork
	accounts     persistence.AccountRepository
	entries      persistence.EntryRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewService creates a new account service
func NewService(
	uow persistence.UnitOfWork,
	accounts persistence.AccountRepository,
	entries persistence.EntryRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Service {
	return &Service{
		uow:          uow,
		accounts:     accounts,
		entries:      entries,
		timeProvider: timeProvider,
		logger:       logger,
	}
}
