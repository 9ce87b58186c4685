package commands

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/societybot/societybot"
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

var Government = discord.SlashCommandCreate{
	Name:        "government",
	Description: "🏛️ Treasury and fiscal interventions",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "view",
			Description: "Show the treasury, tax rate and today's GDP",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "subsidize",
			Description: "Pay a subsidy from the treasury into a company's capital",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "entrepreneur",
					Description: "The owner of the company to subsidize",
					Required:    true,
				},
				discord.ApplicationCommandOptionFloat{
					Name:        "amount",
					Description: "The subsidy amount",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "sponsor",
			Description: "Move treasury money into the public gambling pool",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionFloat{
					Name:        "amount",
					Description: "The sponsorship amount",
					Required:    true,
				},
			},
		},
	},
}

func GovernmentHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		sub := *e.SlashCommandInteractionData().SubCommandName
		if sub != "view" && !canGovern(e) {
			return errorMessage(e, "Fiscal interventions need the Manage Server permission.")
		}

		switch sub {
		case "view":
			return handleGovernmentView(ctx, b, e, guild)
		case "subsidize":
			return handleGovernmentSubsidize(ctx, b, e, guild)
		case "sponsor":
			return handleGovernmentSponsor(ctx, b, e, guild)
		}
		return nil
	}
}

// canGovern is the whole role model: server managers act as the government.
func canGovern(e *handler.CommandEvent) bool {
	member := e.Member()
	return member != nil && member.Permissions.Has(discord.PermissionManageGuild)
}

func handleGovernmentView(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	gov, err := b.GovernmentRepository.GetOrCreate(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}

	gdpToday := 0.0
	if entry, err := b.GovernmentRepository.GetGdp(ctx, guild, models.GdpDay(time.Now())); err == nil {
		gdpToday = entry.Value
	}

	description := fmt.Sprintf(
		"**Treasury:** %s\n**Gambling pool:** %s\n**Tax rate:** %.0f%%\n**Interest rate:** %.0f%%\n**GDP today:** %s",
		formatMoney(gov.Treasury),
		formatMoney(gov.GamblingPool),
		gov.TaxRate*100,
		gov.InterestRate*100,
		formatMoney(gdpToday),
	)

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🏛️ Government",
			Description: description,
			Color:       neutralColor,
		}},
	})
}

func handleGovernmentSubsidize(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	data := e.SlashCommandInteractionData()
	entrepreneur := int64(data.User("entrepreneur").ID)
	amount := economy.Round2(data.Float("amount"))

	if amount <= 0 {
		return errorMessage(e, "The subsidy must be positive.")
	}

	company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, entrepreneur)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorMessage(e, "That user doesn't run a company here.")
		}
		return errorMessage(e, friendlyError(err))
	}

	if err := spendTreasury(ctx, b, guild, amount); err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			return errorMessage(e, "The treasury doesn't hold that much.")
		}
		return errorMessage(e, friendlyError(err))
	}
	if err := b.CompanyRepository.AddCapital(ctx, guild, entrepreneur, amount); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	gov, err := b.GovernmentRepository.GetOrCreate(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "🏛️ Subsidy paid",
			Description: fmt.Sprintf("**%s** received %s from the treasury. Treasury now holds %s.",
				company.Name, formatMoney(amount), formatMoney(gov.Treasury)),
			Color: successColor,
		}},
	})
}

// spendTreasury debits the treasury through the repository's conditional
// update, so concurrent interventions cannot overdraw it.
func spendTreasury(ctx context.Context, b *societybot.Bot, guild int64, amount float64) error {
	if _, err := b.GovernmentRepository.GetOrCreate(ctx, guild); err != nil {
		return err
	}
	ok, err := b.GovernmentRepository.SpendTreasury(ctx, guild, amount)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("treasury spend of %.2f: %w", amount, economy.ErrInsufficientFunds)
	}
	return nil
}

func handleGovernmentSponsor(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	amount := economy.Round2(e.SlashCommandInteractionData().Float("amount"))
	if amount <= 0 {
		return errorMessage(e, "The sponsorship must be positive.")
	}

	if err := spendTreasury(ctx, b, guild, amount); err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			return errorMessage(e, "The treasury doesn't hold that much.")
		}
		return errorMessage(e, friendlyError(err))
	}
	if err := b.GovernmentRepository.AddGamblingPool(ctx, guild, amount); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	gov, err := b.GovernmentRepository.GetOrCreate(ctx, guild)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "🏛️ Pool sponsored",
			Description: fmt.Sprintf("%s moved into the gambling pool (now %s). Treasury holds %s.",
				formatMoney(amount), formatMoney(gov.GamblingPool), formatMoney(gov.Treasury)),
			Color: successColor,
		}},
	})
}
