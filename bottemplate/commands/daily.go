package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var Daily = discord.SlashCommandCreate{
	Name:        "daily",
	Description: "Claim your daily streak reward",
}

func DailyHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		if err := ensureUser(ctx, b, userID); err != nil {
			return replyError(b, e, "daily", err)
		}

		result, err := b.Engine.ClaimDailyReward(ctx, userID)
		if err != nil {
			return replyError(b, e, "daily", err)
		}

		embed := discord.NewEmbedBuilder().
			SetTitle("Daily Reward Claimed!").
			SetDescription(fmt.Sprintf("🔥 Streak: **%d** day(s) • cycle day **%d/%d**\n\n+**%s** XP\n+**%s** coins",
				result.NewStreakLength, result.CycleDay, rewards.StreakCycleLength,
				utils.FormatNumber(result.XP), utils.FormatNumber(result.Coins))).
			SetColor(config.SuccessColor).
			SetFooter(fmt.Sprintf("Balance: %s coins", utils.FormatNumber(result.Receipt.State.CoinBalance)), "")
		if result.Receipt.LevelUp() {
			embed.AddField("Level up!", fmt.Sprintf("You reached level **%d**", result.Receipt.State.Level), false).
				SetColor(config.LevelUpColor)
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{embed.Build()},
		})
	}
}
