package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var Progress = discord.SlashCommandCreate{
	Name:        "progress",
	Description: "Show level, balance, streak and wheel status",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionUser{
			Name:        "user",
			Description: "Whose progress to show",
			Required:    false,
		},
	},
}

func ProgressHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		target := e.User()
		if u, ok := e.SlashCommandInteractionData().OptUser("user"); ok {
			target = u
		}
		if target.ID == e.User().ID {
			if err := ensureUser(ctx, b, target.ID); err != nil {
				return replyError(b, e, "progress", err)
			}
		}

		summary, err := b.Engine.GetProgressionSummary(ctx, target.ID)
		if err != nil {
			return replyError(b, e, "progress", err)
		}

		embed := discord.NewEmbedBuilder().
			SetTitle(fmt.Sprintf("%s • Level %d", target.Username, summary.Level)).
			SetDescription(levelLine(summary.LevelProgress)).
			AddField("Coins", utils.FormatNumber(summary.CoinBalance), true).
			AddField("XP", utils.FormatNumber(summary.TotalXP), true).
			AddField("Reputation", utils.FormatNumber(summary.Reputation), true).
			AddField("Daily streak", streakLine(summary.Streak), false).
			AddField("Wheel", wheelLine(summary.Wheel), false).
			SetColor(config.EmbedDefaultColor)

		if b.Leaderboard != nil {
			standing, ok, err := b.Leaderboard.Rank(ctx, target.ID)
			switch {
			case err != nil:
				slog.Warn("Failed to load leaderboard rank",
					slog.String("type", "cmd"),
					slog.String("user_id", target.ID.String()),
					slog.Any("error", err))
			case ok:
				embed.AddField("Rank", fmt.Sprintf("#%d", standing.Rank), true)
			}
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}

func levelLine(p rewards.LevelProgress) string {
	return fmt.Sprintf("%s `%d/%d XP` to level %d",
		utils.ProgressBar(int(p.IntoLevel), rewards.XPPerLevel, 12),
		p.IntoLevel, rewards.XPPerLevel, p.Level+1)
}

func streakLine(s rewards.StreakStatus) string {
	line := fmt.Sprintf("🔥 %d day(s)", s.Length)
	if s.CanClaim {
		return line + fmt.Sprintf(" • `/daily` ready: +%d XP, +%d coins", s.NextReward.XP, s.NextReward.Coins)
	}
	return line + " • claimed today"
}

func wheelLine(w rewards.WheelStatus) string {
	if w.CanSpin {
		return "🎡 `/spin` is ready"
	}
	return "🎡 next spin " + utils.RelativeTime(w.NextAvailableAt)
}
