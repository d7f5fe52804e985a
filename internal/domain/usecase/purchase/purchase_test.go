package purchase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creatorhub/token-ledger/internal/domain/entity"
	errs "github.com/creatorhub/token-ledger/internal/domain/error"
	"github.com/creatorhub/token-ledger/internal/domain/usecase/ledger"
	"github.com/creatorhub/token-ledger/internal/infrastructure/adapter/events"
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

// fakeCache records Seen/Mark traffic and can be primed with known receipts
type fakeCache struct {
	mu     sync.Mutex
	seen   map[string]bool
	marked []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{seen: make(map[string]bool)}
}

func (c *fakeCache) Seen(ctx context.Context, buyerAccountID, itemID string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seen[buyerAccountID+":"+itemID]
}

func (c *fakeCache) Mark(ctx context.Context, buyerAccountID, itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := buyerAccountID + ":" + itemID
	c.seen[key] = true
	c.marked = append(c.marked, key)
}

type purchaseEnv struct {
	store *memory.Store
	uow   *memory.UnitOfWork
	svc   *Service
	clock *testClock
	cache *fakeCache
}

func newPurchaseEnv(t *testing.T, feeBps int, cache *fakeCache) *purchaseEnv {
	t.Helper()

	clock := newTestClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	noopLog := logger.NewNoopLogger()
	store := memory.NewStore(clock, noopLog)
	uow := memory.NewUnitOfWork(store)

	platformAccountID := ""
	if feeBps > 0 {
		platformAccountID = "platform"
	}
	transfers := ledger.NewService(uow, clock, noopLog, events.NewNoopPublisher(), platformAccountID)

	var unlockCache UnlockCache
	if cache != nil {
		unlockCache = cache
	}

	svc := NewService(
		uow,
		memory.NewItemRepository(store),
		memory.NewUnlockRepository(store),
		transfers,
		unlockCache,
		clock,
		noopLog,
		events.NewNoopPublisher(),
		feeBps,
	)

	env := &purchaseEnv{store: store, uow: uow, svc: svc, clock: clock, cache: cache}
	if platformAccountID != "" {
		env.seedAccount(t, platformAccountID, 0)
	}
	return env
}

func (e *purchaseEnv) seedAccount(t *testing.T, id string, balance int64) {
	t.Helper()

	acct, err := entity.NewAccount(id, e.clock)
	require.NoError(t, err)
	if balance > 0 {
		require.NoError(t, acct.CreditPurchased(balance, e.clock))
	}
	require.NoError(t, memory.NewAccountRepository(e.store).Create(context.Background(), acct))
}

func (e *purchaseEnv) seedItem(t *testing.T, req CreateItemRequest) *entity.PurchasableItem {
	t.Helper()

	item, err := e.svc.CreateItem(context.Background(), req)
	require.NoError(t, err)
	return item
}

func (e *purchaseEnv) balance(t *testing.T, id string) int64 {
	t.Helper()

	acct, err := memory.NewAccountRepository(e.store).GetByID(context.Background(), id)
	require.NoError(t, err)
	return acct.Balance()
}

func (e *purchaseEnv) entrySum(t *testing.T, id string) int64 {
	t.Helper()

	sum, err := memory.NewEntryRepository(e.store).SumByAccount(context.Background(), id)
	require.NoError(t, err)
	return sum
}

func TestPurchase(t *testing.T) {
	ctx := context.Background()

	t.Run("Paid purchase charges the price and creates the receipt", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150, ContentRef: "media/42",
		})

		result, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		require.NoError(t, err)
		assert.NotEmpty(t, result.UnlockID)
		assert.Equal(t, "media/42", result.ContentRef)
		assert.Equal(t, int64(150), result.TokensSpent)
		assert.False(t, result.Free)

		assert.Equal(t, int64(350), env.balance(t, "fan_1"))
		assert.Equal(t, int64(150), env.balance(t, "creator_1"))

		item, err := memory.NewItemRepository(env.store).GetByID(ctx, "msg_1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.SoldCount)
		assert.Equal(t, int64(150), item.Revenue)

		unlock, err := memory.NewUnlockRepository(env.store).GetByBuyerAndItem(ctx, "fan_1", "msg_1")
		require.NoError(t, err)
		assert.Equal(t, result.UnlockID, unlock.ID)
		assert.Equal(t, int64(150), unlock.TokensSpent)
	})

	t.Run("Second purchase of the same item is rejected without a charge", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})

		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")
		require.NoError(t, err)

		_, err = env.svc.Purchase(ctx, "fan_1", "msg_1")

		assert.ErrorIs(t, err, errs.ErrAlreadyUnlocked)
		assert.Equal(t, int64(350), env.balance(t, "fan_1"))

		item, err := memory.NewItemRepository(env.store).GetByID(ctx, "msg_1")
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.SoldCount)
	})

	t.Run("Creator unlocks own content for free, repeatably", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150, ContentRef: "media/42",
		})

		first, err := env.svc.Purchase(ctx, "creator_1", "msg_1")
		require.NoError(t, err)
		assert.True(t, first.Free)
		assert.Equal(t, int64(0), first.TokensSpent)
		assert.Equal(t, "media/42", first.ContentRef)

		// Repeat access returns the same receipt instead of failing
		second, err := env.svc.Purchase(ctx, "creator_1", "msg_1")
		require.NoError(t, err)
		assert.Equal(t, first.UnlockID, second.UnlockID)

		assert.Equal(t, int64(0), env.balance(t, "creator_1"))

		item, err := memory.NewItemRepository(env.store).GetByID(ctx, "msg_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), item.SoldCount)
	})

	t.Run("Fee applies to paid purchases", func(t *testing.T) {
		env := newPurchaseEnv(t, 2000, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 100,
		})

		result, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		require.NoError(t, err)
		assert.Equal(t, int64(100), result.TokensSpent)
		assert.Equal(t, int64(400), env.balance(t, "fan_1"))
		assert.Equal(t, int64(80), env.balance(t, "creator_1"))
		assert.Equal(t, int64(20), env.balance(t, "platform"))
	})

	t.Run("Insufficient funds leaves no receipt and no sale", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 50)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})

		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Equal(t, int64(50), env.balance(t, "fan_1"))
		assert.Equal(t, int64(0), env.balance(t, "creator_1"))

		exists, err := memory.NewUnlockRepository(env.store).Exists(ctx, "fan_1", "msg_1")
		require.NoError(t, err)
		assert.False(t, exists)

		item, err := memory.NewItemRepository(env.store).GetByID(ctx, "msg_1")
		require.NoError(t, err)
		assert.Equal(t, int64(0), item.SoldCount)

		assert.Equal(t, env.entrySum(t, "fan_1"), env.balance(t, "fan_1"))
	})

	t.Run("Unknown item", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "fan_1", 500)

		_, err := env.svc.Purchase(ctx, "fan_1", "ghost")

		assert.ErrorIs(t, err, errs.ErrItemNotFound)
	})
}

func TestPurchaseWindow(t *testing.T) {
	ctx := context.Background()

	t.Run("Early-bird price applies strictly before the deadline", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 1000)
		env.seedAccount(t, "fan_2", 1000)

		deadline := env.clock.Now().Add(time.Hour)
		env.seedItem(t, CreateItemRequest{
			ItemID: "show_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 300,
			EarlyBirdPrice: 200, EarlyBirdDeadline: &deadline,
		})

		early, err := env.svc.Purchase(ctx, "fan_1", "show_1")
		require.NoError(t, err)
		assert.Equal(t, int64(200), early.TokensSpent)

		// At the deadline the discount no longer applies
		env.clock.Advance(time.Hour)
		late, err := env.svc.Purchase(ctx, "fan_2", "show_1")
		require.NoError(t, err)
		assert.Equal(t, int64(300), late.TokensSpent)
	})

	t.Run("Expired item", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)

		expiry := env.clock.Now().Add(time.Hour)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 100, ExpiresAt: &expiry,
		})

		env.clock.Advance(2 * time.Hour)
		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		assert.ErrorIs(t, err, errs.ErrExpired)
		assert.Equal(t, int64(500), env.balance(t, "fan_1"))
	})

	t.Run("Ended item is no longer purchasable", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "show_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 100,
		})

		require.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_1", entity.StatusStarted))
		require.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_1", entity.StatusEnded))

		_, err := env.svc.Purchase(ctx, "fan_1", "show_1")

		assert.ErrorIs(t, err, errs.ErrNotPurchasable)
	})

	t.Run("Sold-out cap holds under concurrent buyers", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedItem(t, CreateItemRequest{
			ItemID: "show_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 100, MaxQuantity: 3,
		})

		const buyers = 10
		for i := 0; i < buyers; i++ {
			env.seedAccount(t, "fan_"+string(rune('a'+i)), 500)
		}

		var wg sync.WaitGroup
		errCh := make(chan error, buyers)
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(buyerID string) {
				defer wg.Done()
				_, err := env.svc.Purchase(ctx, buyerID, "show_1")
				errCh <- err
			}("fan_" + string(rune('a'+i)))
		}
		wg.Wait()
		close(errCh)

		succeeded, soldOut := 0, 0
		for err := range errCh {
			switch {
			case err == nil:
				succeeded++
			case errors.Is(err, errs.ErrSoldOut):
				soldOut++
			default:
				t.Fatalf("unexpected purchase error: %v", err)
			}
		}

		assert.Equal(t, 3, succeeded)
		assert.Equal(t, buyers-3, soldOut)

		item, err := memory.NewItemRepository(env.store).GetByID(ctx, "show_1")
		require.NoError(t, err)
		assert.Equal(t, int64(3), item.SoldCount)
		assert.Equal(t, int64(300), env.balance(t, "creator_1"))
	})

	t.Run("Concurrent purchases of the same item by one buyer charge once", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})

		const attempts = 8
		var wg sync.WaitGroup
		errCh := make(chan error, attempts)
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")
				errCh <- err
			}()
		}
		wg.Wait()
		close(errCh)

		succeeded := 0
		for err := range errCh {
			if err == nil {
				succeeded++
			} else {
				assert.ErrorIs(t, err, errs.ErrAlreadyUnlocked)
			}
		}

		assert.Equal(t, 1, succeeded)
		assert.Equal(t, int64(350), env.balance(t, "fan_1"))
	})
}

func TestPurchaseCache(t *testing.T) {
	ctx := context.Background()

	t.Run("Committed purchase marks the cache", func(t *testing.T) {
		cache := newFakeCache()
		env := newPurchaseEnv(t, 0, cache)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})

		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		require.NoError(t, err)
		assert.Equal(t, []string{"fan_1:msg_1"}, cache.marked)
	})

	t.Run("Cached receipt short-circuits before any storage work", func(t *testing.T) {
		cache := newFakeCache()
		env := newPurchaseEnv(t, 0, cache)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})
		cache.Mark(ctx, "fan_1", "msg_1")

		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		assert.ErrorIs(t, err, errs.ErrAlreadyUnlocked)
		assert.Equal(t, int64(500), env.balance(t, "fan_1"))
	})

	t.Run("Failed purchase never marks the cache", func(t *testing.T) {
		cache := newFakeCache()
		env := newPurchaseEnv(t, 0, cache)
		env.seedAccount(t, "creator_1", 0)
		env.seedAccount(t, "fan_1", 10)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 150,
		})

		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")

		assert.ErrorIs(t, err, errs.ErrInsufficientFunds)
		assert.Empty(t, cache.marked)
	})
}

func TestMarkViewed(t *testing.T) {
	ctx := context.Background()

	env := newPurchaseEnv(t, 0, nil)
	env.seedAccount(t, "creator_1", 0)
	env.seedAccount(t, "fan_1", 500)
	env.seedItem(t, CreateItemRequest{
		ItemID: "msg_1", OwnerAccountID: "creator_1",
		Kind: entity.ItemPPVMessage, Price: 150,
	})

	t.Run("Marks an existing receipt", func(t *testing.T) {
		_, err := env.svc.Purchase(ctx, "fan_1", "msg_1")
		require.NoError(t, err)

		env.clock.Advance(time.Hour)
		require.NoError(t, env.svc.MarkViewed(ctx, "fan_1", "msg_1"))

		unlock, err := memory.NewUnlockRepository(env.store).GetByBuyerAndItem(ctx, "fan_1", "msg_1")
		require.NoError(t, err)
		require.NotNil(t, unlock.LastViewedAt)
		assert.Equal(t, env.clock.Now(), *unlock.LastViewedAt)
	})

	t.Run("Rejects a buyer without a receipt", func(t *testing.T) {
		err := env.svc.MarkViewed(ctx, "fan_2", "msg_1")
		assert.ErrorIs(t, err, errs.ErrUnlockNotFound)
	})
}

func TestCreateItem(t *testing.T) {
	ctx := context.Background()

	t.Run("Early-bird price must undercut the regular price", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		deadline := env.clock.Now().Add(time.Hour)

		_, err := env.svc.CreateItem(ctx, CreateItemRequest{
			ItemID: "show_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 200,
			EarlyBirdPrice: 200, EarlyBirdDeadline: &deadline,
		})

		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})

	t.Run("Early-bird price requires a deadline", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)

		_, err := env.svc.CreateItem(ctx, CreateItemRequest{
			ItemID: "show_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 300, EarlyBirdPrice: 200,
		})

		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})

	t.Run("Duplicate item ID", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedItem(t, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 100,
		})

		_, err := env.svc.CreateItem(ctx, CreateItemRequest{
			ItemID: "msg_1", OwnerAccountID: "creator_1",
			Kind: entity.ItemPPVMessage, Price: 100,
		})

		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})
}

func TestChangeItemStatus(t *testing.T) {
	ctx := context.Background()

	env := newPurchaseEnv(t, 0, nil)
	env.seedItem(t, CreateItemRequest{
		ItemID: "show_1", OwnerAccountID: "creator_1",
		Kind: entity.ItemShowTicket, Price: 100,
	})

	t.Run("Only the owner may change the status", func(t *testing.T) {
		err := env.svc.ChangeItemStatus(ctx, "fan_1", "show_1", entity.StatusStarted)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})

	t.Run("Owner walks the lifecycle", func(t *testing.T) {
		require.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_1", entity.StatusStarted))
		require.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_1", entity.StatusEnded))

		item, err := env.svc.GetItem(ctx, "show_1")
		require.NoError(t, err)
		assert.Equal(t, entity.StatusEnded, item.Status)
	})

	t.Run("Terminal states reject further transitions", func(t *testing.T) {
		err := env.svc.ChangeItemStatus(ctx, "creator_1", "show_1", entity.StatusStarted)
		assert.ErrorIs(t, err, errs.ErrInvalidOperation)
	})

	t.Run("Status change preserves committed sale aggregates", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedAccount(t, "fan_1", 500)
		env.seedItem(t, CreateItemRequest{
			ItemID: "show_2", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 100, MaxQuantity: 1,
		})

		_, err := env.svc.Purchase(ctx, "fan_1", "show_2")
		require.NoError(t, err)

		require.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_2", entity.StatusStarted))

		item, err := env.svc.GetItem(ctx, "show_2")
		require.NoError(t, err)
		assert.Equal(t, int64(1), item.SoldCount)
		assert.Equal(t, int64(100), item.Revenue)

		// The cap must still hold after the status write-back
		env.seedAccount(t, "fan_2", 500)
		_, err = env.svc.Purchase(ctx, "fan_2", "show_2")
		assert.ErrorIs(t, err, errs.ErrSoldOut)
	})

	t.Run("Status changes racing purchases never lose a sale", func(t *testing.T) {
		env := newPurchaseEnv(t, 0, nil)
		env.seedItem(t, CreateItemRequest{
			ItemID: "show_3", OwnerAccountID: "creator_1",
			Kind: entity.ItemShowTicket, Price: 100,
		})

		const buyers = 8
		for i := 0; i < buyers; i++ {
			env.seedAccount(t, fmt.Sprintf("fan_%d", i), 200)
		}

		var wg sync.WaitGroup
		var sold int64
		for i := 0; i < buyers; i++ {
			wg.Add(1)
			go func(n int) {
				defer wg.Done()
				if _, err := env.svc.Purchase(ctx, fmt.Sprintf("fan_%d", n), "show_3"); err == nil {
					atomic.AddInt64(&sold, 1)
				}
			}(i)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, env.svc.ChangeItemStatus(ctx, "creator_1", "show_3", entity.StatusStarted))
		}()
		wg.Wait()

		// Every committed purchase survives the concurrent write-back
		item, err := env.svc.GetItem(ctx, "show_3")
		require.NoError(t, err)
		assert.Equal(t, sold, item.SoldCount)
		assert.Equal(t, sold*100, item.Revenue)
		assert.Equal(t, entity.StatusStarted, item.Status)
	})
}

func TestTransferKindFor(t *testing.T) {
	assert.Equal(t, ledger.TransferTicket, transferKindFor(entity.ItemShowTicket))
	assert.Equal(t, ledger.TransferTip, transferKindFor(entity.ItemTipGoal))
	assert.Equal(t, ledger.TransferPPV, transferKindFor(entity.ItemPPVMessage))
}
