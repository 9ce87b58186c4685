package commands

import (
	"context"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/economy/trade"
)

var Buy = discord.SlashCommandCreate{
	Name:        "buy",
	Description: "🛒 Buy items from players or the market",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "item",
			Description: "The item to buy",
			Required:    true,
		},
		discord.ApplicationCommandOptionInt{
			Name:        "amount",
			Description: "How many to buy",
			Required:    true,
			MinValue:    intPtr(1),
		},
		discord.ApplicationCommandOptionFloat{
			Name:        "price",
			Description: "Maximum price per unit (defaults to the market ask)",
			Required:    false,
		},
	},
}

func BuyHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		data := e.SlashCommandInteractionData()
		item, ok := b.Catalog.Resolve(data.String("item"))
		if !ok {
			return errorMessage(e, "No such item. Try `/items` to browse the catalog.")
		}

		price := trade.UseNPCPrice
		if v, ok := data.OptFloat("price"); ok {
			price = v
		}

		outcome, err := b.Trade.Trade(ctx, trade.Request{
			Account:   playerRef(e, guild),
			Side:      models.OrderSideBuy,
			ItemTag:   item.ItemTag,
			UnitPrice: price,
			Amount:    data.Int("amount"),
		})
		if err != nil {
			return errorMessage(e, friendlyError(err))
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{outcomeEmbed(outcome)},
		})
	}
}
