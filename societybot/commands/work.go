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

// WorkCooldown is how long a worker waits between shifts. Checked on access,
// no scheduler.
const WorkCooldown = time.Minute

// ToolTag is the inventory item every shift consumes one durability point of.
const ToolTag = "Tool"

var Work = discord.SlashCommandCreate{
	Name:        "work",
	Description: "🔨 Work a production shift at your company",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:        "item",
			Description: "The item to work on",
			Required:    true,
		},
	},
}

func WorkHandler(b *societybot.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		guild, ok := guildID(e)
		if !ok {
			return guildOnlyMessage(e)
		}

		player, err := b.PlayerRepository.GetOrCreate(ctx, guild, userID(e))
		if err != nil {
			return errorMessage(e, friendlyError(err))
		}
		if player.CompanyEntrepreneurID == nil {
			return errorMessage(e, "You don't work for a company. Join one with `/company join`.")
		}

		company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, *player.CompanyEntrepreneurID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return errorMessage(e, "Your company no longer exists.")
			}
			return errorMessage(e, friendlyError(err))
		}

		if player.Hunger <= 0 || player.Thirst <= 0 {
			return errorMessage(e, "You're too hungry or thirsty to work.")
		}

		now := time.Now()
		if now.Before(player.WorkCooldownUntil) {
			wait := time.Until(player.WorkCooldownUntil).Round(time.Second)
			return errorMessage(e, fmt.Sprintf("You're exhausted. Try again in %s.", wait))
		}

		item, ok := b.Catalog.Resolve(e.SlashCommandInteractionData().String("item"))
		if !ok {
			return errorMessage(e, "No such item. Try `/items` to browse the catalog.")
		}

		worker := playerRef(e, guild)
		if line, err := b.InventoryRepository.Get(ctx, guild, worker.OwnerID, false, ToolTag); err != nil || line.Amount <= 0 {
			return errorMessage(e, "You need a Tool in your inventory to work.")
		}

		if company.Capital < company.Wage {
			return errorMessage(e, "Your company can't afford your wage right now.")
		}

		report, err := performShift(ctx, b, worker, company, item.ItemTag)
		if err != nil {
			return errorMessage(e, friendlyError(err))
		}

		player.WorkCooldownUntil = now.Add(WorkCooldown)
		if err := b.PlayerRepository.Update(ctx, player); err != nil {
			return errorMessage(e, friendlyError(err))
		}

		lines := []string{fmt.Sprintf("You earned %s (taxes billed: %s).", formatMoney(report.wage), formatMoney(report.tax))}
		lines = append(lines, report.produced...)
		if report.toolLine != "" {
			lines = append(lines, report.toolLine)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       fmt.Sprintf("🔨 Shift at %s", company.Name),
				Description: strings.Join(lines, "\n"),
				Color:       successColor,
			}},
		})
	}
}

// shiftReport is what one paid shift came to, ready for rendering.
type shiftReport struct {
	wage     float64
	tax      float64
	produced []string
	toolLine string
}

// performShift pays the wage, bills tax on it, and advances production. The
// tool is only worn when the floor actually moved: a failed advance still
// costs the company the wage, but not the worker's tool.
func performShift(ctx context.Context, b *societybot.Bot, worker economy.AccountRef, company *models.Company, itemTag string) (*shiftReport, error) {
	companyRef := economy.AccountRef{GuildID: worker.GuildID, OwnerID: company.EntrepreneurID, IsCompany: true}
	if err := b.Ledger.Transfer(ctx, companyRef, worker, company.Wage); err != nil {
		return nil, err
	}
	tax, err := b.Ledger.WithholdTax(ctx, worker, company.Wage)
	if err != nil {
		return nil, err
	}

	report := &shiftReport{wage: company.Wage, tax: tax}

	result, advanceErr := b.Production.Advance(ctx, worker.GuildID, company.EntrepreneurID, itemTag)
	if advanceErr != nil {
		// The wage is already paid: the worker showed up. Report why the
		// floor didn't move.
		report.produced = append(report.produced, friendlyError(advanceErr))
		return report, nil
	}

	if result.Started {
		report.produced = append(report.produced, fmt.Sprintf("Started a new **%s** build, ingredients consumed.", itemTag))
	}
	if result.Finished {
		report.produced = append(report.produced, fmt.Sprintf("Finished a **%s**! It's in the company inventory.", itemTag))
	} else {
		report.produced = append(report.produced, fmt.Sprintf("**%d** worksteps left on the %s.", result.RemainingSteps, itemTag))
	}

	report.toolLine = "Your Tool held up."
	if remaining, err := b.Production.UseTool(ctx, worker, ToolTag); err == nil && remaining != nil {
		report.toolLine = fmt.Sprintf("Your Tool has **%d** uses left.", *remaining)
	}
	return report, nil
}
