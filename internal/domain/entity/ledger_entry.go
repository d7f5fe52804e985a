package entity

import (
	"time"

	"github.com/google/uuid"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// EntryKind classifies a single balance-affecting event
type EntryKind string

// Entry kinds
const (
	KindTipSent        EntryKind = "tip_sent"
	KindTipReceived    EntryKind = "tip_received"
	KindPPVUnlock      EntryKind = "ppv_unlock"
	KindTicketPurchase EntryKind = "ticket_purchase"
	KindPurchase       EntryKind = "purchase"
	KindRefund         EntryKind = "refund"
)

// LedgerEntry is an immutable record of one balance change. Entries are only
// ever appended; the sum of a given account's entry amounts reconciles with
// that account's balance.
type LedgerEntry struct {
	ID          string    // Unique entry identifier
	AccountID   string    // Account whose balance this entry affected
	Amount      int64     // Signed token amount (negative for debits)
	Kind        EntryKind // What kind of event produced this entry
	ReferenceID string    // Links to the originating purchasable or tip
	CreatedAt   time.Time // When the entry was recorded
}

// NewLedgerEntry creates a new entry with basic validation
func NewLedgerEntry(
	accountID string,
	amount int64,
	kind EntryKind,
	referenceID string,
	timeProvider coreport.TimeProvider,
) (*LedgerEntry, error) {
	if accountID == "" {
		return nil, errs.ErrInvalidAccountID
	}
	if amount == 0 {
		return nil, errs.ErrInvalidAmount
	}
	if !isValidEntryKind(kind) {
		return nil, errs.ErrInvalidOperation
	}

	return &LedgerEntry{
		ID:          uuid.NewString(),
		AccountID:   accountID,
		Amount:      amount,
		Kind:        kind,
		ReferenceID: referenceID,
		CreatedAt:   timeProvider.Now(),
	}, nil
}

// IsCredit returns true if this entry increased the account's balance
func (e *LedgerEntry) IsCredit() bool {
	return e.Amount > 0
}

// IsDebit returns true if this entry decreased the account's balance
func (e *LedgerEntry) IsDebit() bool {
	return e.Amount < 0
}

func isValidEntryKind(kind EntryKind) bool {
	switch kind {
	case KindTipSent, KindTipReceived, KindPPVUnlock, KindTicketPurchase, KindPurchase, KindRefund:
		return true
	}
	return false
}
