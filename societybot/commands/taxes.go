package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

var Taxes = discord.SlashCommandCreate{
	Name:        "taxes",
	Description: "💸 View, pay and set taxes",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "List who owes taxes in this server",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "pay",
			Description: "Pay your tax debt into the treasury",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionFloat{
					Name:        "amount",
					Description: "How much to pay (default: everything you owe)",
					Required:    false,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "rate",
			Description: "Set the tax rate",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionFloat{
					Name:        "rate",
					Description: "The new rate as a fraction, 0 to 1",
					Required:    true,
				},
			},
		},
	},
}

func TaxesHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		switch *e.SlashCommandInteractionData().SubCommandName {
		case "view":
			return handleTaxesView(ctx, b, e, guild)
		case "pay":
			return handleTaxesPay(ctx, b, e, guild)
		case "rate":
			return handleTaxesRate(ctx, b, e, guild)
		}
		return nil
	}
}

func handleTaxesView(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	companies, err := b.CompanyRepository.ListTaxOwing(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	players, err := b.PlayerRepository.ListTaxOwing(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}

	var description strings.Builder
	for _, company := range companies {
		description.WriteString(fmt.Sprintf("🏭 **%s** owes %s\n", company.Name, formatMoney(company.TaxesOwed)))
	}
	for _, player := range players {
		description.WriteString(fmt.Sprintf("🧍 %s owes %s\n", mention(player.UserID), formatMoney(player.TaxesOwed)))
	}
	if description.Len() == 0 {
		description.WriteString("✅ Nobody owes taxes right now!")
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "💸 Tax debts",
			Description: description.String(),
			Color:       neutralColor,
		}},
	})
}

func handleTaxesPay(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	requested := 0.0 // everything owed
	if amount, ok := e.SlashCommandInteractionData().OptFloat("amount"); ok {
		requested = economy.Round2(amount)
		if requested <= 0 {
			return errorMessage(e, "The payment must be positive.")
		}
	}

	user := userID(e)
	owed, err := totalTaxDebt(ctx, b, guild, user)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if owed <= 0 {
		return errorMessage(e, "You don't owe any taxes.")
	}

	paid, err := payTaxes(ctx, b, guild, user, requested)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if paid <= 0 {
		return errorMessage(e, "You can't afford to pay anything right now.")
	}

	remaining, err := totalTaxDebt(ctx, b, guild, user)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}

	description := fmt.Sprintf("You paid %s into the treasury.", formatMoney(paid))
	if remaining > 0 {
		description += fmt.Sprintf(" You still owe %s.", formatMoney(remaining))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "💸 Taxes paid",
			Description: description,
			Color:       successColor,
		}},
	})
}

func handleTaxesRate(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	if !canGovern(e) {
		return errorMessage(e, "Setting the tax rate needs the Manage Server permission.")
	}

	rate := e.SlashCommandInteractionData().Float("rate")
	if rate < 0 || rate > 1 {
		return errorMessage(e, "The tax rate must be between 0 and 1.")
	}

	gov, err := b.GovernmentRepository.GetOrCreate(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	gov.TaxRate = rate
	if err := b.GovernmentRepository.Update(ctx, gov); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "📊 Tax rate set",
			Description: fmt.Sprintf("The new tax rate is **%.0f%%**.", rate*100),
			Color:       successColor,
		}},
	})
}

// totalTaxDebt sums the user's personal debt with their company's, if they
// run one.
func totalTaxDebt(ctx context.Context, b *societybot.Bot, guild, user int64) (float64, error) {
	player, err := b.PlayerRepository.GetOrCreate(ctx, guild, user)
	if err != nil {
		return 0, err
	}
	owed := player.TaxesOwed

	company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, user)
	if err == nil {
		owed += company.TaxesOwed
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return 0, err
	}
	return economy.Round2(owed), nil
}

// payTaxes settles the user's tax debt into the treasury, company debt
// first, then personal, never exceeding requested (non-positive means
// everything owed). Returns the total paid.
func payTaxes(ctx context.Context, b *societybot.Bot, guild, user int64, requested float64) (float64, error) {
	remaining := requested
	var total float64

	if _, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, user); err == nil {
		companyRef := economy.AccountRef{GuildID: guild, OwnerID: user, IsCompany: true}
		paid, err := b.Ledger.SettleTaxes(ctx, companyRef, remaining)
		if err != nil {
			return total, err
		}
		total += paid
		if requested > 0 {
			remaining = economy.Round2(requested - paid)
			if remaining <= 0 {
				return economy.Round2(total), nil
			}
		}
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return 0, err
	}

	paid, err := b.Ledger.SettleTaxes(ctx, economy.AccountRef{GuildID: guild, OwnerID: user}, remaining)
	if err != nil {
		return total, err
	}
	return economy.Round2(total + paid), nil
}
