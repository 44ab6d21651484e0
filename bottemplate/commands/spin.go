package commands

import (
	"context"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
)

var Spin = discord.SlashCommandCreate{
	Name:        "spin",
	Description: "Spin the lottery wheel once per day",
}

func SpinHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		userID := e.User().ID
		if err := ensureUser(ctx, b, userID); err != nil {
			return replyError(b, e, "spin", err)
		}

		result, err := b.Engine.SpinLotteryWheel(ctx, userID, nil)
		if err != nil {
			return replyError(b, e, "spin", err)
		}

		color := config.InfoColor
		title := "🎡 The wheel stops on..."
		if result.Segment.ID == "jackpot" {
			color = config.JackpotColor
			title = "🎉 JACKPOT!"
		}

		return e.CreateMessage(discord.MessageCreate{
			Embeds: []discord.Embed{{
				Title: title,
				Description: fmt.Sprintf("**%s**\n\nYou won **%s** coins.",
					result.Segment.Label, utils.FormatNumber(result.CoinsWon)),
				Color: color,
				Footer: &discord.EmbedFooter{
					Text: fmt.Sprintf("Balance: %s coins", utils.FormatNumber(result.NewBalance)),
				},
			}},
		})
	}
}
