package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/memstore"
	"github.com/ellavondegurechaff/societybot/societybot/economy/ledger"
	"github.com/ellavondegurechaff/societybot/societybot/economy/npcmarket"
	"github.com/ellavondegurechaff/societybot/societybot/economy/orderbook"
	"github.com/ellavondegurechaff/societybot/societybot/economy/production"
)

const testGuild int64 = 1000

// newTestBot wires the bot aggregate over an in-memory store and the default
// item catalog, the way main wires it over postgres.
func newTestBot(t *testing.T) (*societybot.Bot, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	cat, err := catalog.Load(ctx, store.Items())
	require.NoError(t, err)

	b := &societybot.Bot{
		PlayerRepository:     store.Players(),
		CompanyRepository:    store.Companies(),
		ItemRepository:       store.Items(),
		InventoryRepository:  store.Inventory(),
		MarketRepository:     store.Market(),
		OrderRepository:      store.Orders(),
		GovernmentRepository: store.Governments(),
		Catalog:              cat,
	}
	b.Ledger = ledger.New(store.Players(), store.Companies(), store.Governments())
	b.NPCMarket = npcmarket.New(cat, store.Market())
	b.OrderBook = orderbook.New(store.Orders())
	b.Production = production.New(store.Companies(), store.Inventory(), cat)
	return b, store
}
