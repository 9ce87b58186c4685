package commands

import (
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"

	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy/trade"
)

// outcomeEmbed renders a trade outcome. The sections are cumulative: one
// request can merge, fill against players, fill against the NPC and still
// leave a residual order.
func outcomeEmbed(o *trade.Outcome) discord.Embed {
	verb := "Buy"
	if o.Side == models.OrderSideSell {
		verb = "Sell"
	}

	var lines []string
	if o.Merged {
		lines = append(lines, fmt.Sprintf(
			"Merged into your standing order: now **%dx %s** at %s each, expiry refreshed.",
			o.MergedTotal, o.ItemTag, formatMoney(o.UnitPrice)))
	}
	if o.PlayerQty > 0 {
		lines = append(lines, fmt.Sprintf(
			"Traded **%dx %s** with other players for %s total.",
			o.PlayerQty, o.ItemTag, formatMoney(o.PlayerTotal)))
	}
	if o.NPCQty > 0 {
		lines = append(lines, fmt.Sprintf(
			"Traded **%dx %s** with the market at %s each (%s total).",
			o.NPCQty, o.ItemTag, formatMoney(o.NPCUnitPrice), formatMoney(o.NPCTotal)))
	}
	if o.PlacedQty > 0 {
		lines = append(lines, fmt.Sprintf(
			"Placed a standing order for the remaining **%dx %s** at %s each. It expires in 3 days.",
			o.PlacedQty, o.ItemTag, formatMoney(o.UnitPrice)))
	}
	if len(lines) == 0 {
		lines = append(lines, "Nothing happened.")
	}

	color := successColor
	if !o.Filled() && !o.Merged && o.PlacedQty == 0 {
		color = neutralColor
	}

	return discord.Embed{
		Title:       fmt.Sprintf("%s: %s", verb, o.ItemTag),
		Description: strings.Join(lines, "\n"),
		Color:       color,
	}
}
