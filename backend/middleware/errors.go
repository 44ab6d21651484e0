package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/progression/backend/utils"
)

// CustomErrorHandler renders errors that escape the handlers in the API envelope
func CustomErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal Server Error"

	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
		message = e.Message
	} else {
		slog.Error("Unhandled request error",
			slog.String("type", "api"),
			slog.String("path", c.Path()),
			slog.String("error", err.Error()))
	}

	return utils.SendError(c, code, "HTTP_ERROR", message, nil)
}

// SecurityHeaders adds security headers to responses
func SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "no-referrer")
		c.Set("Content-Security-Policy", "default-src 'none'")
		return c.Next()
	}
}
