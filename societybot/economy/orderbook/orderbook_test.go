package orderbook

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot/database/memstore"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

const testGuild int64 = 1000

func newTestBook(t *testing.T) (*Book, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	return New(store.Orders()), store
}

func sellOrder(ownerID int64, price float64, amount int) *models.Order {
	return &models.Order{
		GuildID:   testGuild,
		OwnerID:   ownerID,
		Side:      models.OrderSideSell,
		ItemTag:   "Wood",
		Amount:    amount,
		UnitPrice: price,
		ExpiresAt: time.Now().Add(OrderTTL),
	}
}

// permissiveCallbacks settles everything against a flat funds figure and
// records the fills.
func permissiveCallbacks(funds float64, settled *[]Fill) Callbacks {
	return Callbacks{
		PayerFunds: func(context.Context, economy.AccountRef) (float64, error) {
			return funds, nil
		},
		OwnerExists: func(context.Context, economy.AccountRef) (bool, error) {
			return true, nil
		},
		Settle: func(_ context.Context, fill Fill) error {
			*settled = append(*settled, fill)
			return nil
		},
	}
}

func TestPlaceOrMergeIdempotence(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	first := sellOrder(1, 10, 3)
	merged, err := b.PlaceOrMerge(ctx, first)
	require.NoError(t, err)
	require.False(t, merged)

	laterExpiry := time.Now().Add(OrderTTL + time.Hour)
	second := sellOrder(1, 10, 2)
	second.ExpiresAt = laterExpiry
	merged, err = b.PlaceOrMerge(ctx, second)
	require.NoError(t, err)
	require.True(t, merged)

	orders, err := store.Orders().ListByOwner(ctx, testGuild, 1, false, time.Now())
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 5, orders[0].Amount)
	require.True(t, orders[0].ExpiresAt.Equal(laterExpiry))

	// A different price is a different key.
	merged, err = b.PlaceOrMerge(ctx, sellOrder(1, 11, 1))
	require.NoError(t, err)
	require.False(t, merged)
}

func TestMatchPricePriority(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBook(t)

	// Asks inserted at 5, 3, 4: matching must visit 3 then 4, not
	// insertion order.
	for _, price := range []float64{5, 3, 4} {
		_, err := b.PlaceOrMerge(ctx, sellOrder(int64(price), price, 1))
		require.NoError(t, err)
	}

	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       2,
	}, permissiveCallbacks(1000, &settled))
	require.NoError(t, err)
	require.Len(t, fills, 2)
	require.Equal(t, 3.0, fills[0].UnitPrice)
	require.Equal(t, 4.0, fills[1].UnitPrice)
	require.Equal(t, fills, settled)
}

func TestMatchTiesOldestFirst(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(1, 10, 1))
	require.NoError(t, err)
	_, err = b.PlaceOrMerge(ctx, sellOrder(2, 10, 1))
	require.NoError(t, err)

	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       1,
	}, permissiveCallbacks(1000, &settled))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	require.Equal(t, int64(1), fills[0].Counterparty.OwnerID)
}

func TestMatchFundsClampStopsScan(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(1, 5, 3))
	require.NoError(t, err)
	_, err = b.PlaceOrMerge(ctx, sellOrder(2, 6, 3))
	require.NoError(t, err)

	// $9 affords 1 unit at $5; the scan stops there instead of trying $6.
	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       3,
	}, permissiveCallbacks(9, &settled))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	require.Equal(t, 1, fills[0].Qty)
	require.Equal(t, 5.0, fills[0].UnitPrice)

	// The partially matched order was decremented in place, the other left
	// untouched.
	orders, err := store.Orders().ListByItem(ctx, testGuild, "Wood", time.Now())
	require.NoError(t, err)
	require.Len(t, orders, 2)
	require.Equal(t, 2, orders[0].Amount)
	require.Equal(t, 3, orders[1].Amount)
}

func TestMatchDeletesFilledOrders(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(1, 5, 2))
	require.NoError(t, err)

	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       2,
	}, permissiveCallbacks(1000, &settled))
	require.NoError(t, err)
	require.Len(t, fills, 1)
	require.Equal(t, 2, fills[0].Qty)

	orders, err := store.Orders().ListByItem(ctx, testGuild, "Wood", time.Now())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestMatchSkipsStaleOrders(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(1, 5, 1)) // owner vanished
	require.NoError(t, err)
	_, err = b.PlaceOrMerge(ctx, sellOrder(2, 6, 1))
	require.NoError(t, err)

	var settled []Fill
	cb := permissiveCallbacks(1000, &settled)
	cb.OwnerExists = func(_ context.Context, owner economy.AccountRef) (bool, error) {
		return owner.OwnerID != 1, nil
	}

	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       1,
	}, cb)
	require.NoError(t, err)
	require.Len(t, fills, 1)
	require.Equal(t, int64(2), fills[0].Counterparty.OwnerID)

	// The stale order is gone without anyone being charged for it.
	orders, err := store.Orders().ListByItem(ctx, testGuild, "Wood", time.Now())
	require.NoError(t, err)
	require.Empty(t, orders)
}

func TestMatchClampsToDeliverableStock(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(1, 5, 10)) // seller only holds 2
	require.NoError(t, err)
	_, err = b.PlaceOrMerge(ctx, sellOrder(2, 6, 10)) // seller holds nothing
	require.NoError(t, err)
	_, err = b.PlaceOrMerge(ctx, sellOrder(3, 7, 10))
	require.NoError(t, err)

	var settled []Fill
	cb := permissiveCallbacks(10000, &settled)
	cb.DeliverableStock = func(_ context.Context, owner economy.AccountRef) (int, error) {
		switch owner.OwnerID {
		case 1:
			return 2, nil
		case 2:
			return 0, nil
		default:
			return 10, nil
		}
	}

	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       5,
	}, cb)
	require.NoError(t, err)
	require.Len(t, fills, 2)
	require.Equal(t, 2, fills[0].Qty)
	require.Equal(t, 5.0, fills[0].UnitPrice)
	require.Equal(t, 3, fills[1].Qty)
	require.Equal(t, 7.0, fills[1].UnitPrice)

	// The unbacked order at $6 was deleted, not matched.
	orders, err := store.Orders().ListByItem(ctx, testGuild, "Wood", time.Now())
	require.NoError(t, err)
	for _, o := range orders {
		require.NotEqual(t, 6.0, o.UnitPrice)
	}
}

func TestMatchSkipsOwnOrders(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBook(t)

	_, err := b.PlaceOrMerge(ctx, sellOrder(99, 5, 1))
	require.NoError(t, err)

	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       1,
	}, permissiveCallbacks(1000, &settled))
	require.NoError(t, err)
	require.Empty(t, fills)
}

func TestExpiredOrdersInvisibleAndSwept(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBook(t)

	stale := sellOrder(1, 5, 1)
	stale.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, store.Orders().Create(ctx, stale))

	var settled []Fill
	fills, err := b.Match(ctx, Request{
		Requester: economy.AccountRef{GuildID: testGuild, OwnerID: 99},
		Side:      models.OrderSideBuy,
		ItemTag:   "Wood",
		Limit:     10,
		Qty:       1,
	}, permissiveCallbacks(1000, &settled))
	require.NoError(t, err)
	require.Empty(t, fills)

	// The match pass swept the expired row.
	removed, err := b.ExpireSweep(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Zero(t, removed)
}
