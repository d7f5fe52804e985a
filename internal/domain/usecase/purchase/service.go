// Package purchase implements the unlock/purchase coordinator: pay-once
// unlock semantics for PPV messages, show tickets and tip goals, layered on
// the transfer engine.
package purchase

import (
	"context"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/domain/port/persistence"
	"github.com/creatorhub/token-ledger/internal/domain/usecase/ledger"
)

// UnlockCache is a best-effort read-through cache of existing receipts. A
// positive Seen answer is authoritative (entries are only marked after a
// committed purchase); a negative answer falls through to storage.
type UnlockCache interface {
	Seen(ctx context.Context, buyerAccountID, itemID string) bool
	Mark(ctx context.Context, buyerAccountID, itemID string)
}

// PurchaseResult reports a completed unlock
type PurchaseResult struct {
	UnlockID    string
	ContentRef  string
	TokensSpent int64
	Free        bool
}

// Service coordinates purchases. The transfer, the receipt insert and the
// item's sales aggregates share one unit of work; there is no state where
// tokens moved but no receipt exists, or the reverse.
type Service struct {
	uow          persistence.UnitOfWork
	items        persistence.ItemRepository
	unlocks      persistence.UnlockRepository
	transfers    *ledger.Service
	cache        UnlockCache
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	events       coreport.EventPublisher
	feeBps       int
}

// NewService creates a new purchase coordinator. cache may be nil to disable
// the fast path; feeBps is the platform commission applied to every paid
// purchase (0 for fee-free operation).
func NewService(
	uow persistence.UnitOfWork,
	items persistence.ItemRepository,
	unlocks persistence.UnlockRepository,
	transfers *ledger.Service,
	cache UnlockCache,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	events coreport.EventPublisher,
	feeBps int,
) *Service {
	return &Service{
		uow:          uow,
		items:        items,
		unlocks:      unlocks,
		transfers:    transfers,
		cache:        cache,
		timeProvider: timeProvider,
		logger:       logger,
		events:       events,
		feeBps:       feeBps,
	}
}
