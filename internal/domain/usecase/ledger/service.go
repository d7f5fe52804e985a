// Package ledger implements the transfer engine: atomic movement of tokens
// between two accounts with sufficiency checks, double-entry logging and
// optional platform commission.
package ledger

import (
	"time"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
	"github.com/creatorhub/token-ledger/internal/domain/port/persistence"
)

// TransferKind names the monetization path a transfer belongs to. It selects
// the ledger entry kinds written for the payer and payee sides.
type TransferKind string

// Transfer kinds
const (
	TransferTip    TransferKind = "tip"
	TransferPPV    TransferKind = "ppv_unlock"
	TransferTicket TransferKind = "ticket"
)

// EntryKinds returns the payer-side and payee-side entry kinds for this
// transfer kind.
func (k TransferKind) EntryKinds() (debit entity.EntryKind, credit entity.EntryKind) {
	switch k {
	case TransferTip:
		return entity.KindTipSent, entity.KindTipReceived
	case TransferTicket:
		return entity.KindTicketPurchase, entity.KindTicketPurchase
	default:
		return entity.KindPPVUnlock, entity.KindPPVUnlock
	}
}

func isValidTransferKind(k TransferKind) bool {
	switch k {
	case TransferTip, TransferPPV, TransferTicket:
		return true
	}
	return false
}

// TransferRequest describes one transfer between two accounts.
// FeeBps is an explicit platform commission in basis points; the fee policy
// is always supplied by the caller, never inferred per monetization path.
type TransferRequest struct {
	PayerID     string
	PayeeID     string
	Amount      int64
	Kind        TransferKind
	ReferenceID string
	FeeBps      int
}

// TransferResult reports the committed outcome of a transfer
type TransferResult struct {
	PayerBalance int64
	PayeeBalance int64
	Fee          int64
	EntryIDs     []string
	CompletedAt  time.Time
}

// Service is the transfer engine. All mutations run inside a single unit of
// work; a failure at any point leaves both balances unchanged.
type Service struct {
	uow               persistence.UnitOfWork
	timeProvider      coreport.TimeProvider
	logger            coreport.Logger
	events            coreport.EventPublisher
	platformAccountID string
}

// NewService creates a new transfer engine. platformAccountID receives fee
// tokens and may be empty when no commission is ever charged.
func NewService(
	uow persistence.UnitOfWork,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	events coreport.EventPublisher,
	platformAccountID string,
) *Service {
	return &Service{
		uow:               uow,
		timeProvider:      timeProvider,
		logger:            logger,
		events:            events,
		platformAccountID: platformAccountID,
	}
}
