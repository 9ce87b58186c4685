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
	"github.com/ellavondegurechaff/societybot/societybot/database/models"
	"github.com/ellavondegurechaff/societybot/societybot/database/repositories"
	"github.com/ellavondegurechaff/societybot/societybot/economy"
)

var Company = discord.SlashCommandCreate{
	Name:        "company",
	Description: "🏭 Found, configure and run a company",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionSubCommand{
			Name:        "create",
			Description: "Found a company ($1000 fee)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "name",
					Description: "The company name",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "setitems",
			Description: "Configure the production slots (up to 5 producible items)",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionString{
					Name:        "items",
					Description: "Comma-separated item names",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "disband",
			Description: "Disband your company: capital and inventory return to you",
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "join",
			Description: "Take a job at someone's company",
			Options: []discord.ApplicationCommandOption{
				discord.ApplicationCommandOptionUser{
					Name:        "entrepreneur",
					Description: "The owner of the company to join",
					Required:    true,
				},
			},
		},
		discord.ApplicationCommandOptionSubCommand{
			Name:        "leave",
			Description: "Quit your job",
		},
	},
}

func CompanyHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		switch *e.SlashCommandInteractionData().SubCommandName {
		case "create":
			return handleCompanyCreate(ctx, b, e, guild)
		case "setitems":
			return handleCompanySetItems(ctx, b, e, guild)
		case "disband":
			return handleCompanyDisband(ctx, b, e, guild)
		case "join":
			return handleCompanyJoin(ctx, b, e, guild)
		case "leave":
			return handleCompanyLeave(ctx, b, e, guild)
		}
		return nil
	}
}

func handleCompanyCreate(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	name := strings.TrimSpace(e.SlashCommandInteractionData().String("name"))
	if name == "" {
		return errorMessage(e, "The company needs a name.")
	}

	owner := userID(e)
	if exists, err := b.CompanyRepository.Exists(ctx, guild, owner); err != nil {
		return errorMessage(e, friendlyError(err))
	} else if exists {
		return errorMessage(e, "You already run a company. Disband it first.")
	}

	if _, err := b.PlayerRepository.GetOrCreate(ctx, guild, owner); err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if err := b.Ledger.Debit(ctx, playerRef(e, guild), models.CompanyCreationFee); err != nil {
		if errors.Is(err, economy.ErrInsufficientFunds) {
			return errorMessage(e, fmt.Sprintf("Founding a company costs %s.", formatMoney(models.CompanyCreationFee)))
		}
		return errorMessage(e, friendlyError(err))
	}

	now := time.Now()
	company := &models.Company{
		EntrepreneurID: owner,
		GuildID:        guild,
		Name:           name,
		Capital:        models.DefaultCompanyCapital,
		Wage:           models.DefaultCompanyWage,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := b.CompanyRepository.Create(ctx, company); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "🏭 Company founded",
			Description: fmt.Sprintf("**%s** is open for business with %s starting capital. Wage per shift: %s.\nConfigure production with `/company setitems`.",
				name, formatMoney(company.Capital), formatMoney(company.Wage)),
			Color: successColor,
		}},
	})
}

func handleCompanySetItems(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, userID(e))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorMessage(e, "You don't run a company. Found one with `/company create`.")
		}
		return errorMessage(e, friendlyError(err))
	}

	raw := strings.Split(e.SlashCommandInteractionData().String("items"), ",")
	if len(raw) > models.MaxProductionSlots {
		return errorMessage(e, fmt.Sprintf("A company can produce at most %d different items.", models.MaxProductionSlots))
	}

	tags := make([]string, 0, len(raw))
	for _, query := range raw {
		item, ok := b.Catalog.Resolve(strings.TrimSpace(query))
		if !ok {
			return errorMessage(e, fmt.Sprintf("Unknown item: %q.", strings.TrimSpace(query)))
		}
		if !item.Producible {
			return errorMessage(e, fmt.Sprintf("**%s** can't be manufactured.", item.ItemTag))
		}
		tags = append(tags, item.ItemTag)
	}

	// Reconfiguring the floor resets every workstep counter.
	company.SetProducibleList(tags)
	if err := b.CompanyRepository.Update(ctx, company); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🏭 Production configured",
			Description: fmt.Sprintf("**%s** now produces: %s.\nAll builds in progress were scrapped.", company.Name, strings.Join(tags, ", ")),
			Color:       successColor,
		}},
	})
}

func handleCompanyDisband(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	owner := userID(e)
	company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, owner)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorMessage(e, "You don't run a company.")
		}
		return errorMessage(e, friendlyError(err))
	}

	ownerRef := playerRef(e, guild)
	companyRef := economy.AccountRef{GuildID: guild, OwnerID: owner, IsCompany: true}

	if company.Capital > 0 {
		if err := b.Ledger.Transfer(ctx, companyRef, ownerRef, company.Capital); err != nil {
			return errorMessage(e, friendlyError(err))
		}
	}

	lines, err := b.InventoryRepository.List(ctx, guild, owner, true)
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	for _, line := range lines {
		if err := b.InventoryRepository.Add(ctx, guild, owner, false, line.ItemTag, line.Amount, line.Durability); err != nil {
			return errorMessage(e, friendlyError(err))
		}
	}
	if err := b.InventoryRepository.DeleteAllForOwner(ctx, guild, owner, true); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	if err := b.PlayerRepository.ReleaseEmployees(ctx, guild, owner); err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if err := b.CompanyRepository.Delete(ctx, guild, owner); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title: "🏭 Company disbanded",
			Description: fmt.Sprintf("**%s** closed its doors. Capital (%s) and %d inventory stack(s) returned to you; all employees were released.",
				company.Name, formatMoney(company.Capital), len(lines)),
			Color: neutralColor,
		}},
	})
}

func handleCompanyJoin(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	entrepreneur := int64(e.SlashCommandInteractionData().User("entrepreneur").ID)

	if entrepreneur == userID(e) {
		return errorMessage(e, "You can't be your own employee.")
	}
	if exists, err := b.CompanyRepository.Exists(ctx, guild, userID(e)); err != nil {
		return errorMessage(e, friendlyError(err))
	} else if exists {
		return errorMessage(e, "Entrepreneurs can't take a job. Disband your company first.")
	}

	company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, entrepreneur)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return errorMessage(e, "That user doesn't run a company here.")
		}
		return errorMessage(e, friendlyError(err))
	}

	player, err := b.PlayerRepository.GetOrCreate(ctx, guild, userID(e))
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	player.CompanyEntrepreneurID = &entrepreneur
	player.Job = "worker"
	if err := b.PlayerRepository.Update(ctx, player); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🏭 Hired",
			Description: fmt.Sprintf("You now work at **%s**. Wage per shift: %s. Grab a Tool and `/work`!", company.Name, formatMoney(company.Wage)),
			Color:       successColor,
		}},
	})
}

func handleCompanyLeave(ctx context.Context, b *societybot.Bot, e *handler.CommandEvent, guild int64) error {
	player, err := b.PlayerRepository.GetOrCreate(ctx, guild, userID(e))
	if err != nil {
		return errorMessage(e, friendlyError(err))
	}
	if player.CompanyEntrepreneurID == nil {
		return errorMessage(e, "You're not employed.")
	}

	player.CompanyEntrepreneurID = nil
	player.Job = ""
	if err := b.PlayerRepository.Update(ctx, player); err != nil {
		return errorMessage(e, friendlyError(err))
	}

	return e.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Title:       "🏭 Resigned",
			Description: "You quit your job.",
			Color:       neutralColor,
		}},
	})
}
