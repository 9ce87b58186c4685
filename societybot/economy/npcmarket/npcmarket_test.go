package npcmarket

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/memstore"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

const testGuild int64 = 1000

func newTestMarket(t *testing.T) (*Market, *memstore.Store) {
	t.Helper()
	store := memstore.New()
	cat, err := catalog.Load(context.Background(), store.Items())
	require.NoError(t, err)
	return New(cat, store.Market()), store
}

func TestQuoteSeedsLazily(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMarket(t)

	// Wood has base price 10.
	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 7.50, state.MinPrice)
	require.Equal(t, 12.50, state.MaxPrice)
	require.Equal(t, 500, state.Stockpile)

	// A second quote reads the same row, it does not reseed.
	again, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, state.ID, again.ID)

	_, err = m.Quote(ctx, testGuild, "Unobtainium")
	require.ErrorIs(t, err, economy.ErrUnknownItem)
}

func TestBuyFromNPCDriftScenario(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMarket(t)

	fill, price, err := m.BuyFromNPC(ctx, testGuild, "Wood", 5, 1000)
	require.NoError(t, err)
	require.Equal(t, 5, fill)
	require.Equal(t, 12.50, price)

	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 495, state.Stockpile)
	require.Equal(t, 7.69, state.MinPrice)
	require.Equal(t, 12.81, state.MaxPrice)
}

func TestBuyFromNPCFundsClamp(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMarket(t)

	require.NoError(t, store.Market().Create(ctx, &models.MarketItem{
		GuildID:   testGuild,
		ItemTag:   "Wood",
		MinPrice:  3,
		MaxPrice:  5,
		Stockpile: 100,
	}))

	// $9 at unit price $5 affords exactly 1 unit.
	fill, price, err := m.BuyFromNPC(ctx, testGuild, "Wood", 3, 9)
	require.NoError(t, err)
	require.Equal(t, 1, fill)
	require.Equal(t, 5.0, price)

	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 99, state.Stockpile)
}

func TestBuyFromNPCStockpileClamp(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMarket(t)

	require.NoError(t, store.Market().Create(ctx, &models.MarketItem{
		GuildID:   testGuild,
		ItemTag:   "Wood",
		MinPrice:  3,
		MaxPrice:  5,
		Stockpile: 2,
	}))

	fill, _, err := m.BuyFromNPC(ctx, testGuild, "Wood", 10, 10000)
	require.NoError(t, err)
	require.Equal(t, 2, fill)

	// Stockpile exhausted: further buys fill nothing and leave no trace.
	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	before := *state

	fill, _, err = m.BuyFromNPC(ctx, testGuild, "Wood", 1, 10000)
	require.NoError(t, err)
	require.Zero(t, fill)

	state, err = m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, before.MinPrice, state.MinPrice)
	require.Equal(t, before.MaxPrice, state.MaxPrice)
	require.Equal(t, 0, state.Stockpile)
}

func TestSellToNPC(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMarket(t)

	fill, price, err := m.SellToNPC(ctx, testGuild, "Wood", 4)
	require.NoError(t, err)
	require.Equal(t, 4, fill)
	require.Equal(t, 7.50, price)

	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 504, state.Stockpile)
	// 1 - 0.005*4 = 0.98
	require.Equal(t, 7.35, state.MinPrice)
	require.Equal(t, 12.25, state.MaxPrice)
}

func TestDriftFloor(t *testing.T) {
	ctx := context.Background()
	m, store := newTestMarket(t)

	require.NoError(t, store.Market().Create(ctx, &models.MarketItem{
		GuildID:   testGuild,
		ItemTag:   "Wood",
		MinPrice:  0.01,
		MaxPrice:  0.02,
		Stockpile: 0,
	}))

	// Heavy sell pressure cannot push the band to zero or cross it.
	for i := 0; i < 50; i++ {
		_, _, err := m.SellToNPC(ctx, testGuild, "Wood", 100)
		require.NoError(t, err)
	}

	state, err := m.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.GreaterOrEqual(t, state.MinPrice, 0.01)
	require.GreaterOrEqual(t, state.MaxPrice, state.MinPrice)
}

func TestInvalidQuantity(t *testing.T) {
	ctx := context.Background()
	m, _ := newTestMarket(t)

	_, _, err := m.BuyFromNPC(ctx, testGuild, "Wood", 0, 100)
	require.ErrorIs(t, err, economy.ErrInvalidInput)
	_, _, err = m.SellToNPC(ctx, testGuild, "Wood", -1)
	require.ErrorIs(t, err, economy.ErrInvalidInput)
}
