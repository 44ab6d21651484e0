package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/services"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
)

var Leaderboard = discord.SlashCommandCreate{
	Name:        "leaderboard",
	Description: "Top members by total XP",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionInt{
			Name:        "limit",
			Description: "How many entries to show",
			Required:    false,
			MinValue:    intPtr(1),
			MaxValue:    intPtr(config.MaxPageSize),
		},
	},
}

func intPtr(v int) *int { return &v }

func LeaderboardHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		if b.Leaderboard == nil {
			return utils.EH.CreateInfoEmbed(e, "The leaderboard is not enabled on this server.")
		}

		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		limit := config.DefaultLeaderboardSize
		if n, ok := e.SlashCommandInteractionData().OptInt("limit"); ok {
			limit = n
		}

		top, err := b.Leaderboard.Top(ctx, limit)
		if err != nil {
			return replyError(b, e, "leaderboard", err)
		}
		if len(top) == 0 {
			return utils.EH.CreateInfoEmbed(e, "Nobody has earned XP yet.")
		}

		var description strings.Builder
		for _, s := range top {
			marker := ""
			if s.UserID == e.User().ID {
				marker = " ⬅️"
			}
			fmt.Fprintf(&description, "`#%-3d` <@%s> • **%s** XP%s\n", s.Rank, s.UserID, services.FormatXP(s.XP), marker)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title:       "🏆 Leaderboard",
				Description: description.String(),
				Color:       config.EmbedDefaultColor,
			}},
		})
	}
}
