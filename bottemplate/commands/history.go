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

const historyLimit = 100

var History = discord.SlashCommandCreate{
	Name:        "history",
	Description: "Your recent coin and XP transactions",
}

func HistoryHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		if err := ensureUser(ctx, b, userID); err != nil {
			return replyError(b, e, "history", err)
		}
		entries, err := b.Engine.History(ctx, userID, historyLimit)
		if err != nil {
			return replyError(b, e, "history", err)
		}
		if len(entries) == 0 {
			return utils.EH.CreateInfoEmbed(e, "No transactions yet. Try `/daily`!")
		}

		totalPages := (len(entries) + config.DefaultPageSize - 1) / config.DefaultPageSize

		return b.Paginator.Create(e.Respond, paginator.Pages{
			ID:      e.ID().String(),
			Creator: userID,
			PageFunc: func(page int, embed *discord.EmbedBuilder) {
				start := page * config.DefaultPageSize
				end := min(start+config.DefaultPageSize, len(entries))

				var description strings.Builder
				for _, entry := range entries[start:end] {
					description.WriteString(entryLine(entry))
					description.WriteByte('\n')
				}

				embed.
					SetTitle("🧾 History").
					SetDescription(description.String()).
					SetColor(config.EmbedDefaultColor).
					SetFooter(fmt.Sprintf("Page %d/%d • %d entries", page+1, totalPages, len(entries)), "")
			},
			Pages:      totalPages,
			ExpireMode: paginator.ExpireModeAfterLastUsage,
		}, false)
	}
}

var entryIcons = map[rewards.EntryType]string{
	rewards.EntryQuestReward: "📜",
	rewards.EntryStreakClaim: "🔥",
	rewards.EntryWheelSpin:   "🎡",
	rewards.EntryPurchase:    "🛒",
	rewards.EntryAdjustment:  "🛠️",
}

func entryLine(e rewards.LedgerEntry) string {
	line := fmt.Sprintf("%s `%s` **%s** coins", entryIcons[e.Type], e.Description, utils.FormatSigned(e.Amount))
	if e.XP != 0 {
		line += fmt.Sprintf(" • %s XP", utils.FormatSigned(e.XP))
	}
	return line + " • " + utils.RelativeTime(e.CreatedAt)
}
