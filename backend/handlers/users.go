package handlers

import (
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/progression/backend/models"
	"github.com/ellavondegurechaff/progression/backend/utils"
)

// userHandler adapts a handler that needs a parsed user ID.
func userHandler(fn func(c *fiber.Ctx, userID snowflake.ID) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := parseUserID(c)
		if !ok {
			return utils.SendBadRequest(c, "Invalid user ID", map[string]string{"id": c.Params("id")})
		}
		return fn(c, userID)
	}
}

func EnsureUser(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		state, err := webApp.Engine.EnsureUser(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, state, "User ready")
	})
}

func RecordQuestEvent(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		var req models.QuestEventRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidateQuestEventRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		outcomes, err := webApp.Engine.RecordQuestEventDelta(c.UserContext(), userID, req.QuestType, req.Delta)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, outcomes, "Event recorded")
	})
}

func EvaluateProfile(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		outcome, err := webApp.Engine.EvaluateProfileCompletion(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, outcome, "Profile evaluated")
	})
}

func ClaimDaily(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		result, err := webApp.Engine.ClaimDailyReward(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, webApp.Engine.NextReset())
		}
		return utils.SendCreated(c, result, "Daily reward claimed")
	})
}

func DailyStatus(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		can, err := webApp.Engine.CanClaimDailyReward(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}

		status := fiber.Map{"can_claim": can}
		if !can {
			status["next_available_at"] = webApp.Engine.NextReset().UTC()
		}
		return utils.SendSuccess(c, status, "Daily reward status")
	})
}

func Spin(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		result, err := webApp.Engine.SpinLotteryWheel(c.UserContext(), userID, nil)
		if err != nil {
			return utils.SendEngineError(c, err, webApp.Engine.NextReset())
		}
		return utils.SendCreated(c, result, "Wheel spun")
	})
}

func Summary(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		summary, err := webApp.Engine.GetProgressionSummary(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, summary, "Summary retrieved")
	})
}

func Purchase(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		var req models.PurchaseRequest
		if err := c.BodyParser(&req); err != nil {
			return utils.SendBadRequest(c, "Invalid request body", nil)
		}
		if errs := utils.ValidatePurchaseRequest(&req); len(errs) > 0 {
			return utils.HandleValidationErrors(c, errs)
		}

		receipt, err := webApp.Engine.Purchase(c.UserContext(), userID, req.ItemID, req.Price)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendCreated(c, receipt, "Purchase completed")
	})
}

func Ledger(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		limit := clampLimit(c.QueryInt("limit", defaultLedgerLimit), maxLedgerLimit)
		entries, err := webApp.Engine.History(c.UserContext(), userID, limit)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, entries, "Ledger retrieved")
	})
}

func Reconcile(webApp *WebApp) fiber.Handler {
	return userHandler(func(c *fiber.Ctx, userID snowflake.ID) error {
		rec, err := webApp.Engine.Reconcile(c.UserContext(), userID)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, rec, "Reconciliation complete")
	})
}
