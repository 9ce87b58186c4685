package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/societybot/societybot"
)

var Stats = discord.SlashCommandCreate{
	Name:        "stats",
	Description: "📊 View your economic standing",
}

func StatsHandler(b *societybot.Bot) handler.CommandHandler {
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

		var sb strings.Builder
		sb.WriteString(fmt.Sprintf("**Money**: %s\n", formatMoney(player.Money)))
		sb.WriteString(fmt.Sprintf("**Debt**: %s\n", formatMoney(player.Debt)))
		sb.WriteString(fmt.Sprintf("**Taxes owed**: %s\n", formatMoney(player.TaxesOwed)))
		sb.WriteString(fmt.Sprintf("**Condition**: 🍖 %d 💧 %d ❤️ %d\n", player.Hunger, player.Thirst, player.Health))

		if player.Job != "" {
			sb.WriteString(fmt.Sprintf("**Job**: %s\n", player.Job))
		}
		if player.CompanyEntrepreneurID != nil {
			if company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, *player.CompanyEntrepreneurID); err == nil {
				sb.WriteString(fmt.Sprintf("**Employer**: %s (wage %s)\n", company.Name, formatMoney(company.Wage)))
			}
		}
		if company, err := b.CompanyRepository.GetByEntrepreneur(ctx, guild, userID(e)); err == nil {
			sb.WriteString(fmt.Sprintf("**Your company**: %s (capital %s)\n", company.Name, formatMoney(company.Capital)))
		}

		now := time.Now()
		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "📊 Stats",
				Description: sb.String(),
				Color:       neutralColor,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Requested by %s", e.User().Username),
				},
				Timestamp: &now,
			}},
		})
	}
}
