package handlers

import (
	"context"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/gofiber/fiber/v2"

	"github.com/ellavondegurechaff/progression/backend/models"
	"github.com/ellavondegurechaff/progression/backend/utils"
	"github.com/ellavondegurechaff/progression/bottemplate/services"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

const (
	defaultLedgerLimit      = 20
	maxLedgerLimit          = 100
	defaultLeaderboardLimit = 10
	maxLeaderboardLimit     = 100
	healthTimeout           = 3 * time.Second
)

// Engine is the part of rewards.Engine the API exposes.
type Engine interface {
	Catalog() *rewards.Catalog
	NextReset() time.Time
	EnsureUser(ctx context.Context, userID snowflake.ID) (rewards.UserProgressionState, error)
	RecordQuestEventDelta(ctx context.Context, userID snowflake.ID, questType string, delta int) ([]rewards.QuestOutcome, error)
	EvaluateProfileCompletion(ctx context.Context, userID snowflake.ID) (rewards.QuestOutcome, error)
	CanClaimDailyReward(ctx context.Context, userID snowflake.ID) (bool, error)
	ClaimDailyReward(ctx context.Context, userID snowflake.ID) (rewards.DailyRewardResult, error)
	SpinLotteryWheel(ctx context.Context, userID snowflake.ID, rng rewards.Rand) (rewards.SpinResult, error)
	GetProgressionSummary(ctx context.Context, userID snowflake.ID) (rewards.Summary, error)
	Purchase(ctx context.Context, userID snowflake.ID, itemID string, price int64) (rewards.Receipt, error)
	History(ctx context.Context, userID snowflake.ID, limit int) ([]rewards.LedgerEntry, error)
	Reconcile(ctx context.Context, userID snowflake.ID) (rewards.Reconciliation, error)
}

type Leaderboard interface {
	Top(ctx context.Context, n int) ([]services.Standing, error)
}

type Pinger interface {
	Ping(ctx context.Context) error
}

// WebApp represents the web application with all dependencies
type WebApp struct {
	Engine Engine
	// Leaderboard and DB are optional.
	Leaderboard Leaderboard
	DB          Pinger
	Version     string
	Commit      string
}

func HealthCheck(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		health := models.NewHealthCheck(webApp.Version, webApp.Commit)

		if webApp.DB != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
			defer cancel()
			if err := webApp.DB.Ping(ctx); err != nil {
				health.AddComponent("database", "unhealthy", err.Error())
			} else {
				health.AddComponent("database", "healthy", "")
			}
		}

		if health.Status != "healthy" {
			response := models.NewSuccessResponse(health, "Health check failed")
			response.Success = false
			return utils.SendJSON(c, fiber.StatusServiceUnavailable, response)
		}
		return utils.SendSuccess(c, health, "Health check successful")
	}
}

func GetCatalog(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return utils.SendSuccess(c, webApp.Engine.Catalog(), "Catalog retrieved")
	}
}

func GetLeaderboard(webApp *WebApp) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if webApp.Leaderboard == nil {
			return utils.SendError(c, fiber.StatusServiceUnavailable, "LEADERBOARD_DISABLED", "Leaderboard is not enabled", nil)
		}

		limit := clampLimit(c.QueryInt("limit", defaultLeaderboardLimit), maxLeaderboardLimit)
		standings, err := webApp.Leaderboard.Top(c.UserContext(), limit)
		if err != nil {
			return utils.SendEngineError(c, err, time.Time{})
		}
		return utils.SendSuccess(c, standings, "Leaderboard retrieved")
	}
}

// parseUserID reads the :id route parameter as a snowflake
func parseUserID(c *fiber.Ctx) (snowflake.ID, bool) {
	id, err := snowflake.Parse(c.Params("id"))
	if err != nil || id == 0 {
		return 0, false
	}
	return id, true
}

func clampLimit(limit, upper int) int {
	if limit < 1 {
		return 1
	}
	if limit > upper {
		return upper
	}
	return limit
}
