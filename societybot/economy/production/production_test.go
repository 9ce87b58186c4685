package production

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot/catalog"
	"github.com/ellavondegurechaff/societybot/societybot/database/memstore"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

const (
	testGuild    int64 = 1000
	entrepreneur int64 = 1
)

func intPtr(v int) *int { return &v }

// newTestPipeline builds a pipeline over a minimal catalog: a Crate needing
// 2 Wood over 3 worksteps.
func newTestPipeline(t *testing.T) (*Pipeline, *memstore.Store) {
	t.Helper()
	ctx := context.Background()
	store := memstore.New()

	require.NoError(t, store.Items().Create(ctx, &models.Item{ItemTag: "Wood", BasePrice: 10}))
	require.NoError(t, store.Items().Create(ctx, &models.Item{
		ItemTag: "Crate", Producible: true, Ingredients: "Wood:2", Worksteps: 3, BasePrice: 30,
	}))
	require.NoError(t, store.Items().Create(ctx, &models.Item{
		ItemTag: "Hammer", Producible: true, Ingredients: "Wood:1", Worksteps: 1, BasePrice: 15, Durability: intPtr(3),
	}))

	cat, err := catalog.Load(ctx, store.Items())
	require.NoError(t, err)

	company := &models.Company{
		EntrepreneurID: entrepreneur,
		GuildID:        testGuild,
		Name:           "Crateworks",
		Capital:        900,
		Wage:           100,
	}
	company.SetProducibleList([]string{"Crate", "Hammer"})
	require.NoError(t, store.Companies().Create(ctx, company))

	return New(store.Companies(), store.Inventory(), cat), store
}

func companyHeld(t *testing.T, store *memstore.Store, itemTag string) int {
	t.Helper()
	line, err := store.Inventory().Get(context.Background(), testGuild, entrepreneur, true, itemTag)
	if err != nil {
		return 0
	}
	return line.Amount
}

func TestAdvanceDeterminism(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline(t)
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Wood", 2, nil))

	// worksteps=3: exactly three advances per unit, ingredients consumed
	// only on the first.
	res, err := p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.NoError(t, err)
	require.True(t, res.Started)
	require.False(t, res.Finished)
	require.Equal(t, 2, res.RemainingSteps)
	require.Zero(t, companyHeld(t, store, "Wood"))

	res, err = p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.NoError(t, err)
	require.False(t, res.Started)
	require.False(t, res.Finished)
	require.Equal(t, 1, res.RemainingSteps)

	res, err = p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.NoError(t, err)
	require.False(t, res.Started)
	require.True(t, res.Finished)
	require.Zero(t, res.RemainingSteps)
	require.Equal(t, 1, companyHeld(t, store, "Crate"))

	// The next advance is a new build; Wood is gone, so it fails without
	// consuming anything and the counter stays at zero.
	_, err = p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.ErrorIs(t, err, economy.ErrInsufficientResources)

	company, err := store.Companies().GetByEntrepreneur(ctx, testGuild, entrepreneur)
	require.NoError(t, err)
	require.Zero(t, company.WorkstepList()[0])
}

func TestAdvanceNoPartialConsumption(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline(t)
	// One Wood is short of the required two.
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Wood", 1, nil))

	_, err := p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.ErrorIs(t, err, economy.ErrInsufficientResources)
	require.Equal(t, 1, companyHeld(t, store, "Wood"))
}

func TestAdvanceGates(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline(t)

	_, err := p.Advance(ctx, testGuild, entrepreneur, "Furniture")
	require.ErrorIs(t, err, economy.ErrUnknownItem)

	// Wood exists but is not producible.
	_, err = p.Advance(ctx, testGuild, entrepreneur, "Wood")
	require.ErrorIs(t, err, economy.ErrNotAllowed)

	_, err = p.Advance(ctx, testGuild, 999, "Crate")
	require.ErrorIs(t, err, economy.ErrCounterpartyMissing)

	// Reconfiguring the slots resets every counter.
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Wood", 2, nil))
	res, err := p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.NoError(t, err)
	require.Equal(t, 2, res.RemainingSteps)

	company, err := store.Companies().GetByEntrepreneur(ctx, testGuild, entrepreneur)
	require.NoError(t, err)
	company.SetProducibleList([]string{"Hammer"})
	require.NoError(t, store.Companies().Update(ctx, company))

	_, err = p.Advance(ctx, testGuild, entrepreneur, "Crate")
	require.ErrorIs(t, err, economy.ErrNotAllowed)
}

func TestFinishedToolCarriesDurability(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline(t)
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Wood", 1, nil))

	res, err := p.Advance(ctx, testGuild, entrepreneur, "Hammer")
	require.NoError(t, err)
	require.True(t, res.Finished)

	line, err := store.Inventory().Get(ctx, testGuild, entrepreneur, true, "Hammer")
	require.NoError(t, err)
	require.NotNil(t, line.Durability)
	require.Equal(t, 3, *line.Durability)
}

func TestUseTool(t *testing.T) {
	ctx := context.Background()
	p, store := newTestPipeline(t)
	owner := economy.AccountRef{GuildID: testGuild, OwnerID: 7}

	t.Run("wears down and breaks one unit at zero", func(t *testing.T) {
		require.NoError(t, store.Inventory().Add(ctx, owner.GuildID, owner.OwnerID, false, "Hammer", 2, intPtr(2)))

		remaining, err := p.UseTool(ctx, owner, "Hammer")
		require.NoError(t, err)
		require.NotNil(t, remaining)
		require.Equal(t, 1, *remaining)

		// Second use breaks the unit: amount drops, durability resets from
		// the catalog.
		remaining, err = p.UseTool(ctx, owner, "Hammer")
		require.NoError(t, err)
		require.NotNil(t, remaining)
		require.Equal(t, 3, *remaining)

		line, err := store.Inventory().Get(ctx, owner.GuildID, owner.OwnerID, false, "Hammer")
		require.NoError(t, err)
		require.Equal(t, 1, line.Amount)
	})

	t.Run("last unit breaking deletes the stack", func(t *testing.T) {
		other := economy.AccountRef{GuildID: testGuild, OwnerID: 8}
		require.NoError(t, store.Inventory().Add(ctx, other.GuildID, other.OwnerID, false, "Hammer", 1, intPtr(1)))

		remaining, err := p.UseTool(ctx, other, "Hammer")
		require.NoError(t, err)
		require.NotNil(t, remaining)
		require.Zero(t, *remaining)

		_, err = p.UseTool(ctx, other, "Hammer")
		require.ErrorIs(t, err, economy.ErrInsufficientResources)
	})

	t.Run("indestructible stacks are a no-op", func(t *testing.T) {
		other := economy.AccountRef{GuildID: testGuild, OwnerID: 9}
		require.NoError(t, store.Inventory().Add(ctx, other.GuildID, other.OwnerID, false, "Wood", 1, nil))

		remaining, err := p.UseTool(ctx, other, "Wood")
		require.NoError(t, err)
		require.Nil(t, remaining)
	})
}
