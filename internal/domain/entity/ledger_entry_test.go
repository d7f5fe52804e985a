package entity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

func TestNewLedgerEntry(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newTestClock(fixedTime)

	t.Run("Valid debit entry", func(t *testing.T) {
		entry, err := NewLedgerEntry("fan_1", -100, KindTipSent, "tip_9", clock)

		require.NoError(t, err)
		assert.NotEmpty(t, entry.ID)
		assert.Equal(t, "fan_1", entry.AccountID)
		assert.Equal(t, int64(-100), entry.Amount)
		assert.Equal(t, fixedTime, entry.CreatedAt)
		assert.True(t, entry.IsDebit())
		assert.False(t, entry.IsCredit())
	})

	t.Run("Valid credit entry", func(t *testing.T) {
		entry, err := NewLedgerEntry("creator_1", 100, KindTipReceived, "tip_9", clock)

		require.NoError(t, err)
		assert.True(t, entry.IsCredit())
		assert.False(t, entry.IsDebit())
	})

	t.Run("Entry IDs are unique", func(t *testing.T) {
		first, err := NewLedgerEntry("fan_1", -100, KindPPVUnlock, "item_1", clock)
		require.NoError(t, err)
		second, err := NewLedgerEntry("fan_1", -100, KindPPVUnlock, "item_1", clock)
		require.NoError(t, err)

		assert.NotEqual(t, first.ID, second.ID)
	})

	t.Run("Empty account ID rejected", func(t *testing.T) {
		_, err := NewLedgerEntry("", 100, KindPurchase, "", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})

	t.Run("Zero amount rejected", func(t *testing.T) {
		_, err := NewLedgerEntry("fan_1", 0, KindPurchase, "", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("Unknown kind rejected", func(t *testing.T) {
		_, err := NewLedgerEntry("fan_1", 100, EntryKind("barter"), "", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})
}

func TestNewUnlock(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newTestClock(fixedTime)

	t.Run("Paid unlock", func(t *testing.T) {
		unlock, err := NewUnlock("fan_1", "item_1", 150, clock)

		require.NoError(t, err)
		assert.NotEmpty(t, unlock.ID)
		assert.Equal(t, int64(150), unlock.TokensSpent)
		assert.False(t, unlock.Free)
		assert.Nil(t, unlock.LastViewedAt)
	})

	t.Run("Paid unlock requires a positive price", func(t *testing.T) {
		_, err := NewUnlock("fan_1", "item_1", 0, clock)
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})

	t.Run("Free unlock for the owner", func(t *testing.T) {
		unlock, err := NewFreeUnlock("creator_1", "item_1", clock)

		require.NoError(t, err)
		assert.True(t, unlock.Free)
		assert.Equal(t, int64(0), unlock.TokensSpent)
	})

	t.Run("Missing identifiers rejected", func(t *testing.T) {
		_, err := NewUnlock("", "item_1", 100, clock)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)

		_, err = NewUnlock("fan_1", "", 100, clock)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)

		_, err = NewFreeUnlock("", "item_1", clock)
		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
	})
}

func TestUnlockMarkViewed(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	unlock, err := NewUnlock("fan_1", "item_1", 150, clock)
	require.NoError(t, err)

	clock.Advance(time.Hour)
	unlock.MarkViewed(clock)

	require.NotNil(t, unlock.LastViewedAt)
	assert.Equal(t, clock.Now(), *unlock.LastViewedAt)
}
