package account

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/logger"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/memory"
)

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock(now time.Time) *testClock {
	return &testClock{now: now}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *testClock) Since(t time.Time) time.Duration { return c.Now().Sub(t) }

func (c *testClock) Sleep(d time.Duration) { c.Advance(d) }

func (c *testClock) WithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	return context.WithCancel(ctx)
}

type accountEnv struct {
	store *memory.Store
	svc   *Service
	clock *testClock
}

func newAccountEnv(t *testing.T) *accountEnv {
	t.Helper()

	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	noopLog := logger.NewNoopLogger()
	store := memory.NewStore(clock, noopLog)
	uow := memory.NewUnitOfWork(store)

	svc := NewService(
		uow,
		memory.NewAccountRepository(store),
		memory.NewEntryRepository(store),
		clock,
		noopLog,
	)
	return &accountEnv{store: store, svc: svc, clock: clock}
}

func TestEnsureAccount(t *testing.T) {
	ctx := context.Background()

	t.Run("Creates a zero-balance account", func(t *testing.T) {
		env := newAccountEnv(t)

		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))

		snapshot, err := env.svc.GetBalance(ctx, "fan_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), snapshot.Balance)
	})

	t.Run("Repeated ensure keeps the existing balance", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
		_, err := env.svc.CreditPurchase(ctx, "fan_1", 500, "pack_1")
		require.NoError(t, err)

		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))

		snapshot, err := env.svc.GetBalance(ctx, "fan_1")
		require.NoError(t, err)
		assert.Equal(t, int64(500), snapshot.Balance)
	})

	t.Run("Concurrent ensures collapse to one account", func(t *testing.T) {
		env := newAccountEnv(t)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				assert.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
			}()
		}
		wg.Wait()

		snapshot, err := env.svc.GetBalance(ctx, "fan_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), snapshot.Balance)
	})

	t.Run("Empty ID rejected", func(t *testing.T) {
		env := newAccountEnv(t)
		assert.ErrorIs(t, env.svc.EnsureAccount(ctx, ""), errs.ErrInvalidAccountID)
	})
}

func TestGetBalance(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown account", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.svc.GetBalance(ctx, "ghost")

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})

	t.Run("Snapshot carries the aggregate counters", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
		_, err := env.svc.CreditPurchase(ctx, "fan_1", 500, "pack_1")
		require.NoError(t, err)

		snapshot, err := env.svc.GetBalance(ctx, "fan_1")

		require.NoError(t, err)
		assert.Equal(t, "fan_1", snapshot.AccountID)
		assert.Equal(t, int64(500), snapshot.Balance)
		assert.Equal(t, int64(500), snapshot.TotalPurchased)
		assert.Equal(t, int64(0), snapshot.TotalEarned)
		assert.Equal(t, int64(0), snapshot.TotalSpent)
	})
}

func TestCreditPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Credits tokens with a purchase entry", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))

		snapshot, err := env.svc.CreditPurchase(ctx, "fan_1", 500, "pack_1")

		require.NoError(t, err)
		assert.Equal(t, int64(500), snapshot.Balance)
		assert.Equal(t, int64(500), snapshot.TotalPurchased)

		entries, err := env.svc.GetStatement(ctx, "fan_1", 10)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, entity.KindPurchase, entries[0].Kind)
		assert.Equal(t, int64(500), entries[0].Amount)
		assert.Equal(t, "pack_1", entries[0].ReferenceID)
	})

	t.Run("Unknown account", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.svc.CreditPurchase(ctx, "ghost", 500, "pack_1")

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})

	t.Run("Non-positive amount rejected", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))

		_, err := env.svc.CreditPurchase(ctx, "fan_1", 0, "pack_1")
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)

		_, err = env.svc.CreditPurchase(ctx, "fan_1", -10, "pack_1")
		assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	})
}

func TestRefund(t *testing.T) {
	ctx := context.Background()

	env := newAccountEnv(t)
	require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
	_, err := env.svc.CreditPurchase(ctx, "fan_1", 500, "pack_1")
	require.NoError(t, err)

	snapshot, err := env.svc.Refund(ctx, "fan_1", 100, "dispute_7")

	require.NoError(t, err)
	assert.Equal(t, int64(600), snapshot.Balance)
	// A refund restores balance without inflating the lifetime counters
	assert.Equal(t, int64(500), snapshot.TotalPurchased)
	assert.Equal(t, int64(0), snapshot.TotalSpent)

	entries, err := env.svc.GetStatement(ctx, "fan_1", 10)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, entity.KindRefund, entries[0].Kind)
	assert.Equal(t, int64(100), entries[0].Amount)
}

func TestGetStatement(t *testing.T) {
	ctx := context.Background()

	t.Run("Unknown account surfaces not-found, not an empty page", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.svc.GetStatement(ctx, "ghost", 10)

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})

	t.Run("Entries come back newest first, capped at the limit", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
		for i := int64(1); i <= 5; i++ {
			_, err := env.svc.CreditPurchase(ctx, "fan_1", i*100, "pack")
			require.NoError(t, err)
		}

		entries, err := env.svc.GetStatement(ctx, "fan_1", 3)

		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, int64(500), entries[0].Amount)
		assert.Equal(t, int64(400), entries[1].Amount)
		assert.Equal(t, int64(300), entries[2].Amount)
	})

	t.Run("Non-positive limit falls back to the default page size", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
		_, err := env.svc.CreditPurchase(ctx, "fan_1", 100, "pack")
		require.NoError(t, err)

		entries, err := env.svc.GetStatement(ctx, "fan_1", 0)

		require.NoError(t, err)
		assert.Len(t, entries, 1)
	})
}

func TestReconcile(t *testing.T) {
	ctx := context.Background()

	t.Run("Engine-driven accounts always reconcile", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))
		_, err := env.svc.CreditPurchase(ctx, "fan_1", 500, "pack_1")
		require.NoError(t, err)
		_, err = env.svc.Refund(ctx, "fan_1", 50, "dispute_1")
		require.NoError(t, err)

		report, err := env.svc.Reconcile(ctx, "fan_1")

		require.NoError(t, err)
		assert.True(t, report.Reconciled)
		assert.Equal(t, int64(550), report.Balance)
		assert.Equal(t, int64(550), report.EntrySum)
	})

	t.Run("Fresh account reconciles at zero", func(t *testing.T) {
		env := newAccountEnv(t)
		require.NoError(t, env.svc.EnsureAccount(ctx, "fan_1"))

		report, err := env.svc.Reconcile(ctx, "fan_1")

		require.NoError(t, err)
		assert.True(t, report.Reconciled)
		assert.Equal(t, int64(0), report.EntrySum)
	})

	t.Run("Unknown account", func(t *testing.T) {
		env := newAccountEnv(t)

		_, err := env.svc.Reconcile(ctx, "ghost")

		assert.ErrorIs(t, err, errs.ErrAccountNotFound)
	})
}
