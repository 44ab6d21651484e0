package commands

import (
	"context"
	"log/slog"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"
	"github.com/disgoorg/snowflake/v2"

	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/handlers"
	"github.com/ellavondegurechaff/progression/bottemplate/utils"
)

var Commands = []discord.ApplicationCommandCreate{
	Daily,
	Spin,
	Quests,
	Quest,
	Progress,
	Leaderboard,
	History,
}

// Register wires every slash command onto h.
func Register(h *handler.Mux, b *bottemplate.Bot) {
	h.Command("/daily", handlers.WrapWithLogging("daily", DailyHandler(b)))
	h.Command("/spin", handlers.WrapWithLogging("spin", SpinHandler(b)))
	h.Command("/quests", handlers.WrapWithLogging("quests", QuestsHandler(b)))
	h.Command("/quest", handlers.WrapWithLogging("quest", QuestHandler(b)))
	h.Autocomplete("/quest", QuestAutocompleteHandler(b))
	h.Command("/progress", handlers.WrapWithLogging("progress", ProgressHandler(b)))
	h.Command("/leaderboard", handlers.WrapWithLogging("leaderboard", LeaderboardHandler(b)))
	h.Command("/history", handlers.WrapWithLogging("history", HistoryHandler(b)))
}

// ensureUser provisions the invoking user on first contact.
func ensureUser(ctx context.Context, b *bottemplate.Bot, userID snowflake.ID) error {
	_, err := b.Engine.EnsureUser(ctx, userID)
	return err
}

// replyError answers with the friendly form of err. Refusals are counted as
// denials; system failures are logged.
func replyError(b *bottemplate.Bot, e *handler.CommandEvent, operation string, err error) error {
	if t, _ := utils.ClassifyError(err); t != utils.SystemError {
		b.Denied(operation, err)
	} else {
		slog.Error("Engine operation failed",
			slog.String("type", "engine"),
			slog.String("operation", operation),
			slog.String("user_id", e.User().ID.String()),
			slog.Any("error", err),
		)
	}
	return utils.EH.CreateEngineError(e, err)
}
