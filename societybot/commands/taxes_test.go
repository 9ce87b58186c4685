package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
)

func TestPayTaxesCompanyDebtFirst(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	player, err := store.Players().GetOrCreate(ctx, testGuild, 1)
	require.NoError(t, err)
	player.Money = 500
	require.NoError(t, store.Players().Update(ctx, player))
	require.NoError(t, store.Players().AddTaxesOwed(ctx, testGuild, 1, 30))

	require.NoError(t, store.Companies().Create(ctx, &models.Company{
		EntrepreneurID: 1,
		GuildID:        testGuild,
		Name:           "Sawmill",
		Capital:        200,
		TaxesOwed:      50,
	}))

	// A capped payment clears the company debt before touching the
	// personal one.
	paid, err := payTaxes(ctx, b, testGuild, 1, 60)
	require.NoError(t, err)
	require.Equal(t, 60.0, paid)

	company, err := store.Companies().GetByEntrepreneur(ctx, testGuild, 1)
	require.NoError(t, err)
	require.Zero(t, company.TaxesOwed)
	require.Equal(t, 150.0, company.Capital)

	player, err = store.Players().GetByUserID(ctx, testGuild, 1)
	require.NoError(t, err)
	require.Equal(t, 20.0, player.TaxesOwed)
	require.Equal(t, 490.0, player.Money)

	gov, err := store.Governments().GetOrCreate(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, 60.0, gov.Treasury)

	// An open-ended payment clears the rest.
	paid, err = payTaxes(ctx, b, testGuild, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 20.0, paid)

	owed, err := totalTaxDebt(ctx, b, testGuild, 1)
	require.NoError(t, err)
	require.Zero(t, owed)

	gov, err = store.Governments().GetOrCreate(ctx, testGuild)
	require.NoError(t, err)
	require.Equal(t, 80.0, gov.Treasury)
}

func TestPayTaxesClampsToMoney(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	player, err := store.Players().GetOrCreate(ctx, testGuild, 1)
	require.NoError(t, err)
	player.Money = 10
	require.NoError(t, store.Players().Update(ctx, player))
	require.NoError(t, store.Players().AddTaxesOwed(ctx, testGuild, 1, 30))

	paid, err := payTaxes(ctx, b, testGuild, 1, 0)
	require.NoError(t, err)
	require.Equal(t, 10.0, paid)

	player, err = store.Players().GetByUserID(ctx, testGuild, 1)
	require.NoError(t, err)
	require.Zero(t, player.Money)
	require.Equal(t, 20.0, player.TaxesOwed)
}
