package events

import (
	"context"

	coreport "github.com/creatorhub/token-ledger/internal/domain/port/core"
)

// NoopPublisher discards events. Used when no broker is configured and in
// tests that don't assert on event delivery.
type NoopPublisher struct{}

// NewNoopPublisher creates a publisher that does nothing
func NewNoopPublisher() *NoopPublisher {
	return &NoopPublisher{}
}

// PublishTransferCompleted discards the event
func (p *NoopPublisher) PublishTransferCompleted(ctx context.Context, event coreport.TransferCompletedEvent) error {
	return nil
}

// PublishUnlockCreated discards the event
func (p *NoopPublisher) PublishUnlockCreated(ctx context.Context, event coreport.UnlockCreatedEvent) error {
	return nil
}

// Close is a no-op
func (p *NoopPublisher) Close() error {
	return nil
}
