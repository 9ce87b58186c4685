package commands

import (
	"fmt"
	"math"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
)

const itemsPerPage = 6

var Items = discord.SlashCommandCreate{
	Name:        "items",
	Description: "📦 Browse the item catalog",
}

func ItemsHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		items := b.Catalog.All()
		totalPages := int(math.Ceil(float64(len(items)) / float64(itemsPerPage)))

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: e.User().ID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				startIdx := page * itemsPerPage
				endIdx := min(startIdx+itemsPerPage, len(items))

				embed.SetTitle("📦 Item Catalog").SetColor(neutralColor)
				for _, item := range items[startIdx:endIdx] {
					embed.AddField(item.ItemTag, itemFieldValue(item), false)
				}
				embed.SetFooter(fmt.Sprintf("Page %d/%d • %d items", page+1, totalPages, len(items)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func itemFieldValue(item *models.Item) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("**Base Price**: %s\n", formatMoney(item.BasePrice)))
	if item.Producible {
		sb.WriteString(fmt.Sprintf("**Ingredients**: %s\n", item.Ingredients))
		sb.WriteString(fmt.Sprintf("**Worksteps**: %d\n", item.Worksteps))
	} else {
		sb.WriteString("**Producible**: no\n")
	}
	if item.Durability != nil {
		sb.WriteString(fmt.Sprintf("**Durability**: %d\n", *item.Durability))
	}
	return strings.TrimRight(sb.String(), "\n")
}
