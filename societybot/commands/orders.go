package commands

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
)

const ordersPerPage = 10

var Orders = discord.SlashCommandCreate{
	Name:        "orders",
	Description: "📋 Inspect and manage standing orders",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "List your standing orders, or the whole book for one item",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "item",
					Description: "Show every order for this item instead of your own",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "remove",
			Description: "Remove your standing orders for an item",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "item",
					Description: "The item to pull orders for",
					Required:    true,
				},
				discord.ApplicationCommandOptionFloat{
					Name:        "price",
					Description: "Only the order at this unit price",
					Required:    false,
				},
			},
		},
	},
}

func OrdersHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		data := e.SlashCommandInteractionData()
		switch *data.SubCommandName {
		case "view":
			return handleOrdersView(ctx, b, e, guild)
		case "remove":
			return handleOrdersRemove(ctx, b, e, guild)
		}
		return nil
	}
}

func handleOrdersView(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	data := e.SlashCommandInteractionData()

	var (
		orders     []*models.Order
		title      string
		marketLine string
		err        error
	)
	if query, ok := data.OptString("item"); ok {
		item, found := b.Catalog.Resolve(query)
		if !found {
			return errorMessage(e, "No such item. Try `/items` to browse the catalog.")
		}
		orders, err = b.OrderBook.ListByItem(ctx, guild, item.ItemTag)
		title = fmt.Sprintf("📋 Order book: %s", item.ItemTag)
		// The NPC is the standing counterparty of last resort, so the book
		// for one item always shows its quote alongside the player orders.
		if quote, qerr := b.NPCMarket.Quote(ctx, guild, item.ItemTag); qerr == nil {
			marketLine = npcQuoteLine(quote)
		}
	} else {
		orders, err = b.OrderBook.ListByOwner(ctx, playerRef(e, guild))
		title = "📋 Your standing orders"
	}
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if len(orders) == 0 {
		description := "No open orders."
		if marketLine != "" {
			description = marketLine + "\n\nNo open orders."
		}
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       title,
				Description: description,
				Color:       neutralColor,
			}},
		})
	}

	totalPages := int(math.Ceil(float64(len(orders)) / float64(ordersPerPage)))

	return b.Paginator.Create(e.Respond, paginator.Pages{
		ID:      e.ID().String(),
		Creator: e.User().ID,
		PageFunc: func(page int, embed *discord.EmbedBuilder) {
			startIdx := page * ordersPerPage
			endIdx := min(startIdx+ordersPerPage, len(orders))

			var description strings.Builder
			if marketLine != "" {
				description.WriteString(marketLine + "\n\n")
			}
			for _, order := range orders[startIdx:endIdx] {
				side := "BUY"
				if order.Side == models.OrderSideSell {
					side = "SELL"
				}
				owner := mention(order.OwnerID)
				if order.IsCompany {
					owner += " (company)"
				}
				description.WriteString(fmt.Sprintf("`%-4s` **%dx %s** at %s each — %s, expires <t:%d:R>\n",
					side, order.Amount, order.ItemTag, formatMoney(order.UnitPrice),
					owner, order.ExpiresAt.Unix()))
			}

			embed.SetTitle(title).
				SetDescription(description.String()).
				SetColor(neutralColor).
				SetFooter(fmt.Sprintf("Page %d/%d • %d orders", page+1, totalPages, len(orders)), "")
		},
		Pages:      totalPages,
		ExpireMode: paginator.ExpireModeAfterLastUsage,
	}, false)
}

// npcQuoteLine summarizes the NPC side of the book for one item.
func npcQuoteLine(quote *models.MarketItem) string {
	return fmt.Sprintf("🏪 NPC buys at %s, sells at %s (stockpile %d)",
		formatMoney(quote.MinPrice), formatMoney(quote.MaxPrice), quote.Stockpile)
}

func handleOrdersRemove(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	data := e.SlashCommandInteractionData()

	item, found := b.Catalog.Resolve(data.String("item"))
	if !found {
		return errorMessage(e, "No such item. Try `/items` to browse the catalog.")
	}

	var pricePtr *float64
	if price, ok := data.OptFloat("price"); ok {
		pricePtr = &price
	}

	removed, err := b.OrderBook.Remove(ctx, playerRef(e, guild), item.ItemTag, pricePtr)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if removed == 0 {
		return errorMessage(e, fmt.Sprintf("You have no matching orders for %s.", item.ItemTag))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "📋 Orders removed",
			Description: fmt.Sprintf("Removed %d order(s) for **%s**.", removed, item.ItemTag),
			Color:       successColor,
		}},
	})
}
