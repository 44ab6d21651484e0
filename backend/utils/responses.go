package utils

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/progression/backend/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// SendJSON sends a JSON response using Fiber
func SendJSON(c *fiber.Ctx, statusCode int, data any) error {
	return c.Status(statusCode).JSON(data)
}

// SendSuccess sends a successful JSON response
func SendSuccess(c *fiber.Ctx, data any, message string) error {
	return SendJSON(c, http.StatusOK, models.NewSuccessResponse(data, message))
}

// SendCreated sends a created resource JSON response
func SendCreated(c *fiber.Ctx, data any, message string) error {
	return SendJSON(c, http.StatusCreated, models.NewSuccessResponse(data, message))
}

// SendError sends an error JSON response
func SendError(c *fiber.Ctx, statusCode int, code, message string, details map[string]string) error {
	return SendJSON(c, statusCode, models.NewErrorResponse(code, message, details))
}

func SendBadRequest(c *fiber.Ctx, message string, details map[string]string) error {
	return SendError(c, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func SendNotFound(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func SendConflict(c *fiber.Ctx, code, message string, details map[string]string) error {
	return SendError(c, http.StatusConflict, code, message, details)
}

func SendInternalServerError(c *fiber.Ctx, message string) error {
	return SendError(c, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

func SendUnprocessableEntity(c *fiber.Ctx, code, message string, details map[string]string) error {
	return SendError(c, http.StatusUnprocessableEntity, code, message, details)
}

// HandleValidationErrors converts validation errors to API response
func HandleValidationErrors(c *fiber.Ctx, errs []models.ValidationError) error {
	details := make(map[string]string, len(errs))
	for _, err := range errs {
		details[err.Field] = err.Description
	}
	return SendUnprocessableEntity(c, "VALIDATION_ERROR", "Validation failed", details)
}

// SendEngineError maps a rewards error onto a status code. nextReset is
// reported for the once-per-day denials.
func SendEngineError(c *fiber.Ctx, err error, nextReset time.Time) error {
	var cooldown *rewards.SpinCooldownError
	switch {
	case errors.As(err, &cooldown):
		return SendConflict(c, "ALREADY_SPUN", "Wheel already spun today", map[string]string{
			"next_available_at": cooldown.NextAvailableAt.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, rewards.ErrAlreadySpun):
		return SendConflict(c, "ALREADY_SPUN", "Wheel already spun today", map[string]string{
			"next_available_at": nextReset.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, rewards.ErrAlreadyClaimed):
		return SendConflict(c, "ALREADY_CLAIMED", "Daily reward already claimed today", map[string]string{
			"next_available_at": nextReset.UTC().Format(time.RFC3339),
		})
	case errors.Is(err, rewards.ErrConcurrencyConflict):
		return SendConflict(c, "CONFLICT_RETRY_READ", "Concurrent update, read the state again before retrying", nil)
	case errors.Is(err, rewards.ErrNotFound):
		return SendNotFound(c, "User not found")
	case errors.Is(err, rewards.ErrInsufficientBalance):
		return SendUnprocessableEntity(c, "INSUFFICIENT_BALANCE", "Insufficient balance", nil)
	case errors.Is(err, rewards.ErrInvalidAmount):
		return SendBadRequest(c, "Invalid amount", nil)
	}

	slog.Error("Engine operation failed",
		slog.String("type", "api"),
		slog.String("method", c.Method()),
		slog.String("path", c.Path()),
		slog.Any("error", err))
	return SendInternalServerError(c, "Internal server error")
}

// GetIPAddress extracts the client IP address
func GetIPAddress(c *fiber.Ctx) string {
	if xff := c.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := c.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return c.IP()
}

func GetUserAgent(c *fiber.Ctx) string {
	return c.Get("User-Agent")
}
