package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

func TestPerformShift(t *testing.T) {
	ctx := context.Background()
	b, store := newTestBot(t)

	const (
		entrepreneur int64 = 1
		workerID     int64 = 5
	)

	_, err := store.Players().GetOrCreate(ctx, testGuild, workerID)
	require.NoError(t, err)
	worker := economy.AccountRef{GuildID: testGuild, OwnerID: workerID}

	company := &models.Company{
		EntrepreneurID: entrepreneur,
		GuildID:        testGuild,
		Name:           "Steelworks",
		Capital:        900,
		Wage:           100,
	}
	company.SetProducibleList([]string{"Steel"})
	require.NoError(t, store.Companies().Create(ctx, company))

	require.NoError(t, store.Inventory().Add(ctx, testGuild, workerID, false, ToolTag, 1, intPtr(3)))

	toolDurability := func() int {
		line, err := store.Inventory().Get(ctx, testGuild, workerID, false, ToolTag)
		require.NoError(t, err)
		require.NotNil(t, line.Durability)
		return *line.Durability
	}

	// The floor has no Iron or Coal: the wage is still paid, the advance
	// fails, and the tool keeps its durability.
	report, err := performShift(ctx, b, worker, company, "Steel")
	require.NoError(t, err)
	require.Equal(t, 100.0, report.wage)
	require.Equal(t, 10.0, report.tax)
	require.Len(t, report.produced, 1)
	require.Empty(t, report.toolLine)
	require.Equal(t, 3, toolDurability())

	player, err := store.Players().GetByUserID(ctx, testGuild, workerID)
	require.NoError(t, err)
	require.Equal(t, 100.0, player.Money)

	// Stock the floor: now the shift advances production and wears the
	// tool by one use.
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Iron", 2, nil))
	require.NoError(t, store.Inventory().Add(ctx, testGuild, entrepreneur, true, "Coal", 1, nil))

	report, err = performShift(ctx, b, worker, company, "Steel")
	require.NoError(t, err)
	require.Equal(t, "Your Tool has **2** uses left.", report.toolLine)
	require.Equal(t, 2, toolDurability())
}
