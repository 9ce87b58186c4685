// Package commands holds the slash command definitions and their handlers.
// Handlers validate shape, resolve Discord ids to plain int64 keys, and
// delegate everything economic to the engines on the Bot aggregate.
package commands

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

const (
	successColor = 0x2ecc71
	errorColor   = 0xe74c3c
	neutralColor = 0x2b2d31
)

var Commands = []discord.ApplicationCommandCreate{
	Buy,
	Sell,
	Work,
	Orders,
	Company,
	Government,
	Taxes,
	Items,
	Stats,
}

// guildID extracts the guild the command ran in. All economy commands are
// guild-scoped; DMs have no economy.
func guildID(e *handler.CommandEvent) (int64, bool) {
	g := e.GuildID()
	if g == nil {
		return 0, false
	}
	return int64(*g), true
}

func userID(e *handler.CommandEvent) int64 {
	return int64(e.User().ID)
}

func playerRef(e *handler.CommandEvent, guild int64) economy.AccountRef {
	return economy.AccountRef{GuildID: guild, OwnerID: userID(e)}
}

func errorMessage(e *handler.CommandEvent, msg string) error {
	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "Error",
			Description: msg,
			Color:       errorColor,
		}},
		Flags: discord.MessageFlagEphemeral,
	})
}

func guildOnlyMessage(e *handler.CommandEvent) error {
	return errorMessage(e, "This command only works inside a server.")
}

// friendlyError maps the economy sentinels onto user-facing text. Anything
// unrecognized is reported generically; the wrapped detail goes to the log,
// not the user.
func friendlyError(err error) string {
	switch {
	case errors.Is(err, economy.ErrInvalidInput):
		return "That request doesn't make sense. Check the amount and price."
	case errors.Is(err, economy.ErrInsufficientFunds):
		return "You can't afford that."
	case errors.Is(err, economy.ErrInsufficientResources):
		return "You don't have the goods for that."
	case errors.Is(err, economy.ErrInsufficientStock):
		return "The market is out of stock."
	case errors.Is(err, economy.ErrNotAllowed):
		return "You can't do that."
	case errors.Is(err, economy.ErrCounterpartyMissing):
		return "The other party doesn't exist here."
	case errors.Is(err, economy.ErrUnknownItem):
		return "No such item. Try `/items` to browse the catalog."
	default:
		return "Something went wrong. Please try again later."
	}
}

func intPtr(v int) *int { return &v }

func formatMoney(v float64) string {
	return fmt.Sprintf("$%.2f", v)
}

func mention(id int64) string {
	return fmt.Sprintf("<@%s>", snowflake.ID(id))
}
