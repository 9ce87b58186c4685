package commands

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNPCQuoteLine(t *testing.T) {
	ctx := context.Background()
	b, _ := newTestBot(t)

	// Wood seeds at a 75%..125% band around its base price of 10 and a
	// stockpile of floor(5000 / 10).
	quote, err := b.NPCMarket.Quote(ctx, testGuild, "Wood")
	require.NoError(t, err)
	require.Equal(t, "🏪 NPC buys at $7.50, sells at $12.50 (stockpile 500)", npcQuoteLine(quote))
}
