package trade

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/memstore"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
	"github.com/ellavondegurechaff/societybot/societybot/economy/ledger"
	"github.com/ellavondegurechaff/societybot/societybot/economy/npcmarket"
	"github.com/ellavondegurechaff/societybot/societybot/economy/orderbook"
	"github.com/ellavondegurechaff/societybot/societybot/economy/trade/mock"
)

const testGuild int64 = 1000

type fixture struct {
	engine *Engine
	store  *memstore.Store
	cat    *catalog.Catalog
	book   *orderbook.Book
}

func newFixture(t *testing.T, notifier Notifier) *fixture {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()
	cat, err := catalog.Load(ctx, store.Items())
	require.NoError(t, err)

	l := ledger.New(store.Players(), store.Companies(), store.Governments())
	npc := npcmarket.New(cat, store.Market())
	book := orderbook.New(store.Orders())
	engine := New(l, npc, book, store.Players(), store.Inventory(), cat, notifier)
	return &fixture{engine: engine, store: store, cat: cat, book: book}
}

func (f *fixture) player(t *testing.T, userID int64, money float64) economy.AccountRef {
	t.Helper()
	ctx := context.Background()
	p, err := f.store.Players().GetOrCreate(ctx, testGuild, userID)
	require.NoError(t, err)
	p.Money = money
	require.NoError(t, f.store.Players().Update(ctx, p))
	return economy.AccountRef{GuildID: testGuild, OwnerID: userID}
}

func (f *fixture) give(t *testing.T, ref economy.AccountRef, itemTag string, amount int) {
	t.Helper()
	require.NoError(t, f.store.Inventory().Add(context.Background(),
		ref.GuildID, ref.OwnerID, ref.IsCompany, itemTag, amount, nil))
}

func (f *fixture) money(t *testing.T, userID int64) float64 {
	t.Helper()
	p, err := f.store.Players().GetByUserID(context.Background(), testGuild, userID)
	require.NoError(t, err)
	return p.Money
}

func (f *fixture) held(t *testing.T, ref economy.AccountRef, itemTag string) int {
	t.Helper()
	line, err := f.store.Inventory().Get(context.Background(),
		ref.GuildID, ref.OwnerID, ref.IsCompany, itemTag)
	if err != nil {
		return 0
	}
	return line.Amount
}

func TestTradeValidation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	buyer := f.player(t, 1, 1000)

	tests := []struct {
		name    string
		req     Request
		wantErr error
	}{
		{
			name:    "zero amount",
			req:     Request{Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 5, Amount: 0},
			wantErr: economy.ErrInvalidInput,
		},
		{
			name:    "negative price that is not the sentinel",
			req:     Request{Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: -2, Amount: 1},
			wantErr: economy.ErrInvalidInput,
		},
		{
			name:    "unknown item",
			req:     Request{Account: buyer, Side: models.OrderSideBuy, ItemTag: "Unobtainium", UnitPrice: 5, Amount: 1},
			wantErr: economy.ErrUnknownItem,
		},
		{
			name:    "sell without the goods",
			req:     Request{Account: buyer, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: 5, Amount: 1},
			wantErr: economy.ErrInsufficientResources,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.Trade(ctx, tt.req)
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestTradeMergesExistingOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	buyer := f.player(t, 1, 10000)

	// First request can't fill (empty book, limit below the NPC band) and
	// places an order.
	out, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 5, Amount: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, out.PlacedQty)
	require.False(t, out.Merged)

	// Second request at the same price merges and terminates.
	out, err = f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 5, Amount: 2,
	})
	require.NoError(t, err)
	require.True(t, out.Merged)
	require.Equal(t, 5, out.MergedTotal)
	require.Zero(t, out.PlayerQty)

	orders, err := f.book.ListByOwner(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 5, orders[0].Amount)
}

func TestTradeBuyFillsPlayersFirst(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	f := newFixture(t, notifier)

	buyer := f.player(t, 1, 1000)
	seller := f.player(t, 2, 0)
	f.give(t, seller, "Wood", 10)

	// Standing ask below the NPC band.
	_, err := f.engine.Trade(ctx, Request{
		Account: seller, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: 9, Amount: 10,
	})
	require.NoError(t, err)

	notifier.EXPECT().Notify(gomock.Any(), int64(2), gomock.Any()).Return(nil)

	out, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 9, Amount: 4,
	})
	require.NoError(t, err)
	require.Equal(t, 4, out.PlayerQty)
	require.Equal(t, 36.0, out.PlayerTotal)
	require.Zero(t, out.NPCQty)
	require.Zero(t, out.PlacedQty)

	// Conservation of money and goods.
	require.Equal(t, 964.0, f.money(t, 1))
	require.Equal(t, 36.0, f.money(t, 2))
	require.Equal(t, 4, f.held(t, buyer, "Wood"))
	require.Equal(t, 6, f.held(t, seller, "Wood"))

	// Tax billed to the seller on the gross, GDP accrued.
	p, err := f.store.Players().GetByUserID(ctx, testGuild, 2)
	require.NoError(t, err)
	require.Equal(t, 3.6, p.TaxesOwed)

	entry, err := f.store.Governments().GetGdp(ctx, testGuild, models.GdpDay(time.Now()))
	require.NoError(t, err)
	require.Equal(t, 36.0, entry.Value)
}

func TestTradeBuyNPCFallback(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	buyer := f.player(t, 1, 1000)

	// Wood NPC band seeds at 7.50/12.50, stockpile 500. Limit at the ask.
	out, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 12.50, Amount: 5,
	})
	require.NoError(t, err)
	require.Zero(t, out.PlayerQty)
	require.Equal(t, 5, out.NPCQty)
	require.Equal(t, 12.50, out.NPCUnitPrice)
	require.Equal(t, 62.50, out.NPCTotal)
	require.Zero(t, out.PlacedQty)

	require.Equal(t, 937.50, f.money(t, 1))
	require.Equal(t, 5, f.held(t, buyer, "Wood"))

	state, err := f.store.Market().Get(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 495, state.Stockpile)
	require.Equal(t, 7.69, state.MinPrice)
	require.Equal(t, 12.81, state.MaxPrice)
}

func TestTradeBuyNPCFundsClamp(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	buyer := f.player(t, 1, 9)

	require.NoError(t, f.store.Market().Create(ctx, &models.MarketItem{
		GuildID: testGuild, ItemTag: "Wood", MinPrice: 3, MaxPrice: 5, Stockpile: 100,
	}))

	// The sentinel resolves to max_price; $9 affords floor(9/5) = 1 unit.
	out, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: UseNPCPrice, Amount: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.NPCQty)
	require.Equal(t, 4.0, f.money(t, 1))

	state, err := f.store.Market().Get(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 99, state.Stockpile)

	// The unaffordable remainder became a standing order.
	require.Equal(t, 2, out.PlacedQty)
}

func TestTradeSellToNPCIsTaxed(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)
	seller := f.player(t, 1, 0)
	f.give(t, seller, "Wood", 10)

	// Sentinel sell resolves to min_price 7.50 and always fully fills.
	out, err := f.engine.Trade(ctx, Request{
		Account: seller, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: UseNPCPrice, Amount: 10,
	})
	require.NoError(t, err)
	require.Equal(t, 10, out.NPCQty)
	require.Equal(t, 7.50, out.NPCUnitPrice)
	require.Equal(t, 75.0, out.NPCTotal)

	require.Equal(t, 75.0, f.money(t, 1))
	require.Zero(t, f.held(t, seller, "Wood"))

	p, err := f.store.Players().GetByUserID(ctx, testGuild, 1)
	require.NoError(t, err)
	require.Equal(t, 7.5, p.TaxesOwed)

	state, err := f.store.Market().Get(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, 510, state.Stockpile)
}

func TestTradeSellMatchesBuyOrders(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	f := newFixture(t, notifier)

	buyer := f.player(t, 1, 1000)
	seller := f.player(t, 2, 0)
	f.give(t, seller, "Wood", 3)

	// Standing bid above the NPC floor.
	_, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 10, Amount: 5,
	})
	require.NoError(t, err)

	notifier.EXPECT().Notify(gomock.Any(), int64(1), gomock.Any()).Return(nil)

	out, err := f.engine.Trade(ctx, Request{
		Account: seller, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: 10, Amount: 3,
	})
	require.NoError(t, err)
	require.Equal(t, 3, out.PlayerQty)
	require.Equal(t, 30.0, out.PlayerTotal)

	require.Equal(t, 970.0, f.money(t, 1))
	require.Equal(t, 30.0, f.money(t, 2))
	require.Equal(t, 3, f.held(t, buyer, "Wood"))
	require.Zero(t, f.held(t, seller, "Wood"))

	// The bid was partially consumed in place.
	orders, err := f.book.ListByOwner(ctx, buyer)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	require.Equal(t, 2, orders[0].Amount)
}

func TestTradeTaxAccumulatesAcrossPartialFills(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	f := newFixture(t, notifier)

	seller := f.player(t, 9, 0)
	f.give(t, seller, "Wood", 10)
	_, err := f.engine.Trade(ctx, Request{
		Account: seller, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: 10, Amount: 10,
	})
	require.NoError(t, err)

	notifier.EXPECT().Notify(gomock.Any(), int64(9), gomock.Any()).Return(nil).Times(2)

	// Two buyers each take $50 of the same ask: the seller's tax and the
	// day's GDP must equal one $100 sale.
	for _, buyerID := range []int64{1, 2} {
		buyer := f.player(t, buyerID, 1000)
		_, err := f.engine.Trade(ctx, Request{
			Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 10, Amount: 5,
		})
		require.NoError(t, err)
	}

	p, err := f.store.Players().GetByUserID(ctx, testGuild, 9)
	require.NoError(t, err)
	require.Equal(t, 10.0, p.TaxesOwed)

	entry, err := f.store.Governments().GetGdp(ctx, testGuild, models.GdpDay(time.Now()))
	require.NoError(t, err)
	require.Equal(t, 100.0, entry.Value)
}

func TestTradeNotificationFailureIsSwallowed(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	notifier := mock.NewMockNotifier(ctrl)
	f := newFixture(t, notifier)

	buyer := f.player(t, 1, 1000)
	seller := f.player(t, 2, 0)
	f.give(t, seller, "Wood", 1)
	_, err := f.engine.Trade(ctx, Request{
		Account: seller, Side: models.OrderSideSell, ItemTag: "Wood", UnitPrice: 9, Amount: 1,
	})
	require.NoError(t, err)

	notifier.EXPECT().Notify(gomock.Any(), int64(2), gomock.Any()).
		Return(context.DeadlineExceeded)

	out, err := f.engine.Trade(ctx, Request{
		Account: buyer, Side: models.OrderSideBuy, ItemTag: "Wood", UnitPrice: 9, Amount: 1,
	})
	require.NoError(t, err)
	require.Equal(t, 1, out.PlayerQty)
}
