package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/paginator"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var Quests = discord.SlashCommandCreate{
	Name:        "quests",
	Description: "List your quests and their progress",
}

func QuestsHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		if err := ensureUser(ctx, b, userID); err != nil {
			return replyError(b, e, "quests", err)
		}
		summary, err := b.Engine.GetProgressionSummary(ctx, userID)
		if err != nil {
			return replyError(b, e, "quests", err)
		}

		quests := summary.Quests
		done := 0
		for _, q := range quests {
			if q.Completed {
				done++
			}
		}
		totalPages := max((len(quests)+config.QuestsPerPage-1)/config.QuestsPerPage, 1)

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: userID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * config.QuestsPerPage
				end := min(start+config.QuestsPerPage, len(quests))

				var description strings.Builder
				for _, q := range quests[start:end] {
					description.WriteString(questLine(q))
					description.WriteString("\n\n")
				}

				embed.
					SetTitle("📜 Quests").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • Completed %d/%d", page+1, totalPages, done, len(quests)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

func questLine(q rewards.QuestStatus) string {
	mark := "⬜"
	if q.Completed {
		mark = "✅"
	}
	return fmt.Sprintf("%s **%s**\n%s `%d/%d` • %s XP • %s coins",
		mark, q.Quest.Title,
		utils.ProgressBar(q.Progress, q.Quest.Target, 10), q.Progress, q.Quest.Target,
		utils.FormatNumber(q.Quest.XPReward), utils.FormatNumber(q.Quest.CoinReward))
}
