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

const maxAutocompleteChoices = 25

var Quest = discord.SlashCommandCreate{
	Name:        "quest",
	Description: "Show one quest in detail",
	Options: []discord.ApplicationCommandOption{
		discord.ApplicationCommandOptionString{
			Name:         "name",
			Description:  "Quest title or id",
			Required:     true,
			Autocomplete: true,
		},
	},
}

func QuestHandler(b *bottemplate.Bot) handler.CommandHandler {
	return func(e *handler.CommandEvent) error {
		ctx, cancel := context.WithTimeout(context.Background(), config.DefaultQueryTimeout)
		defer cancel()

		query := e.SlashCommandInteractionData().String("name")
		catalog := b.Engine.Catalog()
		def, ok := catalog.Quest(query)
		if !ok {
			matches := utils.MatchQuests(catalog.Quests, query, 1)
			if len(matches) == 0 {
				return utils.EH.CreateClassifiedError(e, utils.NotFoundError, fmt.Sprintf("No quest matches `%s`.", query))
			}
			def = matches[0]
		}

		userID := e.User().ID
		if err := ensureUser(ctx, b, userID); err != nil {
			return replyError(b, e, "quest", err)
		}
		summary, err := b.Engine.GetProgressionSummary(ctx, userID)
		if err != nil {
			return replyError(b, e, "quest", err)
		}

		for _, q := range summary.Quests {
			if q.Quest.ID != def.ID {
				continue
			}
			status := "In progress"
			if q.Completed && q.CompletedAt != nil {
				status = "Completed " + utils.RelativeTime(*q.CompletedAt)
			}
			return e.CreateMessage(discord.MessageCreate{
				Embeds: []discord.Embed{discord.NewEmbedBuilder().
					SetTitle(def.Title).
					SetDescription(def.Description).
					AddField("Progress", fmt.Sprintf("%s `%d/%d`", utils.ProgressBar(q.Progress, def.Target, 12), q.Progress, def.Target), false).
					AddField("XP", utils.FormatNumber(def.XPReward), true).
					AddField("Reputation", utils.FormatNumber(def.ReputationReward), true).
					AddField("Coins", utils.FormatNumber(def.CoinReward), true).
					AddField("Status", status, false).
					SetColor(config.InfoColor).
					SetFooterText(def.ID).
					Build()},
			})
		}
		return utils.EH.CreateClassifiedError(e, utils.NotFoundError, "That quest is not active.")
	}
}

func QuestAutocompleteHandler(b *bottemplate.Bot) handler.AutocompleteHandler {
	return func(e *handler.AutocompleteEvent) error {
		matches := utils.MatchQuests(b.Engine.Catalog().Quests, e.Data.String("name"), maxAutocompleteChoices)

		choices := make([]discord.AutocompleteChoice, 0, len(matches))
		for _, q := range matches {
			choices = append(choices, discord.AutocompleteChoiceString{
				Name:  q.Title,
				Value: q.ID,
			})
		}
		return e.AutocompleteResult(choices)
	}
}
