package core

import (
	"context"
	"time"
)

// TransferCompletedEvent is emitted after a transfer commits. It carries
// enough information for notification and analytics consumers to react
// without querying the ledger.
type TransferCompletedEvent struct {
	PayerID     string    `json:"payer_id"`
	PayeeID     string    `json:"payee_id"`
	Amount      int64     `json:"amount"`
	Fee         int64     `json:"fee,omitempty"`
	Kind        string    `json:"kind"`
	ReferenceID string    `json:"reference_id"`
	CompletedAt time.Time `json:"completed_at"`
}

// UnlockCreatedEvent is emitted after a purchase commits and the receipt
// exists.
type UnlockCreatedEvent struct {
	UnlockID       string    `json:"unlock_id"`
	BuyerAccountID string    `json:"buyer_account_id"`
	OwnerAccountID string    `json:"owner_account_id"`
	ItemID         string    `json:"item_id"`
	ItemKind       string    `json:"item_kind"`
	TokensSpent    int64     `json:"tokens_spent"`
	Free           bool      `json:"free"`
	CreatedAt      time.Time `json:"created_at"`
}

// EventPublisher delivers durable events to downstream consumers. Publishing
// happens after the storage transaction commits; failures are logged and
// never fail the originating operation.
type EventPublisher interface {
	PublishTransferCompleted(ctx context.Context, event TransferCompletedEvent) error
	PublishUnlockCreated(ctx context.Context, event UnlockCreatedEvent) error
	Close() error
}
