package utils

import (
	"errors"
	"fmt"

	"github.com/disgoorg/disgo/discord"
	"github.com/disgoorg/disgo/handler"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// ResponseHandler provides standardized response methods for commands
type ResponseHandler struct{}

var EH = &ResponseHandler{}

// ErrorType represents different categories of errors for consistent handling
type ErrorType int

const (
	// UserError - bad input
	UserError ErrorType = iota
	// SystemError - database or network failures
	SystemError
	// NotFoundError - requested resources don't exist
	NotFoundError
	// BusinessLogicError - cooldowns, insufficient balance, finished quests
	BusinessLogicError
)

func getErrorPrefix(errorType ErrorType) string {
	switch errorType {
	case UserError:
		return "⚠️"
	case SystemError:
		return "🔧"
	case NotFoundError:
		return "🔍"
	case BusinessLogicError:
		return "⏰"
	default:
		return "❌"
	}
}

func getErrorColor(errorType ErrorType) int {
	switch errorType {
	case UserError, BusinessLogicError:
		return config.WarningColor
	case NotFoundError:
		return config.InfoColor
	default:
		return config.ErrorColor
	}
}

// ClassifyError turns an engine error into a category and a user-facing line.
func ClassifyError(err error) (ErrorType, string) {
	var cooldown *rewards.SpinCooldownError
	switch {
	case errors.As(err, &cooldown):
		return BusinessLogicError, fmt.Sprintf("You already spun the wheel today. Next spin %s.", RelativeTime(cooldown.NextAvailableAt))
	case errors.Is(err, rewards.ErrAlreadySpun):
		return BusinessLogicError, "You already spun the wheel today."
	case errors.Is(err, rewards.ErrAlreadyClaimed):
		return BusinessLogicError, "You already claimed today's reward. Come back tomorrow!"
	case errors.Is(err, rewards.ErrAlreadyCompleted):
		return BusinessLogicError, "That quest is already complete."
	case errors.Is(err, rewards.ErrInsufficientBalance):
		return BusinessLogicError, "You don't have enough coins for that."
	case errors.Is(err, rewards.ErrInvalidAmount):
		return UserError, "That amount is not valid."
	case errors.Is(err, rewards.ErrNotFound):
		return NotFoundError, "Nothing found for that request."
	case errors.Is(err, rewards.ErrConcurrencyConflict):
		return SystemError, "Something else updated your progress at the same time. Please try again."
	default:
		return SystemError, "Something went wrong. Please try again later."
	}
}

func (h *ResponseHandler) CreateErrorEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.ErrorColor,
		}},
	})
}

func (h *ResponseHandler) CreateSuccessEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.SuccessColor,
		}},
	})
}

func (h *ResponseHandler) CreateInfoEmbed(event *handler.CommandEvent, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: message,
			Color:       config.InfoColor,
		}},
	})
}

// CreateClassifiedError creates an error response with automatic categorization
func (h *ResponseHandler) CreateClassifiedError(event *handler.CommandEvent, errorType ErrorType, message string) error {
	return event.CreateMessage(discord.MessageCreate{
		Embeds: []discord.Embed{{
			Description: getErrorPrefix(errorType) + " " + message,
			Color:       getErrorColor(errorType),
		}},
		Flags: ephemeralFor(errorType),
	})
}

// CreateEngineError answers an interaction with the friendly form of err.
func (h *ResponseHandler) CreateEngineError(event *handler.CommandEvent, err error) error {
	errorType, message := ClassifyError(err)
	return h.CreateClassifiedError(event, errorType, message)
}

func ephemeralFor(errorType ErrorType) discord.MessageFlags {
	if errorType == BusinessLogicError || errorType == UserError {
		return discord.MessageFlagEphemeral
	}
	return discord.MessageFlagsNone
}
