package entity

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	errs "github.com/creatorhub/token-ledger/internal/domain/error"
)

func TestNewAccount(t *testing.T) {
	fixedTime := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := newTestClock(fixedTime)

	t.Run("Valid account creation", func(t *testing.T) {
		account, err := NewAccount("fan_1", clock)

		require.NoError(t, err)
		assert.Equal(t, "fan_1", account.ID)
		assert.Equal(t, int64(0), account.Balance())
		assert.Equal(t, fixedTime, account.CreatedAt)
		assert.Equal(t, fixedTime, account.UpdatedAt)
	})

	t.Run("Empty ID should return error", func(t *testing.T) {
		account, err := NewAccount("", clock)

		assert.ErrorIs(t, err, errs.ErrInvalidAccountID)
		assert.Nil(t, account)
	})
}

func TestAccountCredit(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	t.Run("Credit increases balance and total earned", func(t *testing.T) {
		account, _ := NewAccount("creator_1", clock)

		require.NoError(t, account.Credit(250, clock))

		assert.Equal(t, int64(250), account.Balance())
		assert.Equal(t, int64(250), account.TotalEarned)
		assert.Equal(t, int64(0), account.TotalSpent)
	})

	t.Run("Non-positive amounts rejected", func(t *testing.T) {
		account, _ := NewAccount("creator_1", clock)

		assert.ErrorIs(t, account.Credit(0, clock), errs.ErrInvalidAmount)
		assert.ErrorIs(t, account.Credit(-10, clock), errs.ErrInvalidAmount)
		assert.Equal(t, int64(0), account.Balance())
	})

	t.Run("Overflow rejected", func(t *testing.T) {
		account, _ := NewAccount("creator_1", clock)
		require.NoError(t, account.Credit(math.MaxInt64-1, clock))

		err := account.Credit(2, clock)

		assert.ErrorIs(t, err, errs.ErrAmountOverflow)
		assert.Equal(t, int64(math.MaxInt64-1), account.Balance())
	})
}

func TestAccountDebit(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	t.Run("Debit decreases balance and advances total spent", func(t *testing.T) {
		account, _ := NewAccount("fan_1", clock)
		require.NoError(t, account.CreditPurchased(500, clock))

		require.NoError(t, account.Debit(200, clock))

		assert.Equal(t, int64(300), account.Balance())
		assert.Equal(t, int64(200), account.TotalSpent)
	})

	t.Run("Debit beyond balance fails with detailed error", func(t *testing.T) {
		account, _ := NewAccount("fan_1", clock)
		require.NoError(t, account.CreditPurchased(100, clock))

		err := account.Debit(150, clock)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

		var detailed *errs.InsufficientFundsError
		require.ErrorAs(t, err, &detailed)
		assert.Equal(t, int64(150), detailed.Required)
		assert.Equal(t, int64(100), detailed.Available)

		// Balance unchanged after a rejected debit
		assert.Equal(t, int64(100), account.Balance())
		assert.Equal(t, int64(0), account.TotalSpent)
	})

	t.Run("Exact balance can be spent to zero", func(t *testing.T) {
		account, _ := NewAccount("fan_1", clock)
		require.NoError(t, account.CreditPurchased(100, clock))

		require.NoError(t, account.Debit(100, clock))

		assert.Equal(t, int64(0), account.Balance())
	})
}

func TestAccountCreditPurchased(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	account, _ := NewAccount("fan_1", clock)

	require.NoError(t, account.CreditPurchased(1000, clock))

	assert.Equal(t, int64(1000), account.Balance())
	assert.Equal(t, int64(1000), account.TotalPurchased)
	// Token packs are not earnings
	assert.Equal(t, int64(0), account.TotalEarned)
}

func TestAccountCreditRefund(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	account, _ := NewAccount("fan_1", clock)
	require.NoError(t, account.CreditPurchased(500, clock))
	require.NoError(t, account.Debit(200, clock))

	require.NoError(t, account.CreditRefund(200, clock))

	assert.Equal(t, int64(500), account.Balance())
	// Lifetime counters stay monotone through refunds
	assert.Equal(t, int64(500), account.TotalPurchased)
	assert.Equal(t, int64(200), account.TotalSpent)
}

func TestAccountCanDeduct(t *testing.T) {
	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	account, _ := NewAccount("fan_1", clock)
	require.NoError(t, account.CreditPurchased(100, clock))

	assert.True(t, account.CanDeduct(100))
	assert.True(t, account.CanDeduct(1))
	assert.False(t, account.CanDeduct(101))
	assert.False(t, account.CanDeduct(0))
	assert.False(t, account.CanDeduct(-5))
}
