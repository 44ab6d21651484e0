package handlers

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/events"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// QuestEngine is the part of *rewards.Engine the message listener uses.
type QuestEngine interface {
	EnsureUser(ctx context.Context, userID snowflake.ID) (rewards.UserProgressionState, error)
	RecordQuestEvent(ctx context.Context, userID snowflake.ID, questType string) ([]rewards.QuestOutcome, error)
}

// MessageHandler reports message_sent for every guild message from a human.
func MessageHandler(engine QuestEngine) bot.EventListener {
	return bot.NewListenerFunc(func(e *events.MessageCreate) {
		if e.GuildID == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), config.CommandExecutionTimeout)
		defer cancel()

		if _, err := recordMessage(ctx, engine, e.Message.Author); err != nil {
			slog.Error("Failed to record message quest event",
				slog.String("type", "engine"),
				slog.String("user_id", e.Message.Author.ID.String()),
				slog.Any("error", err),
			)
		}
	})
}

func recordMessage(ctx context.Context, engine QuestEngine, author discord.User) ([]rewards.QuestOutcome, error) {
	if author.Bot || author.System {
		return nil, nil
	}
	if _, err := engine.EnsureUser(ctx, author.ID); err != nil {
		return nil, err
	}
	return engine.RecordQuestEvent(ctx, author.ID, rewards.QuestTypeMessageSent)
}
