package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ellavondegurechaff/progression/bottemplate/database"
	"github.com/ellavondegurechaff/progression/bottemplate/database/repositories"
	"github.com/ellavondegurechaff/progression/bottemplate/logger"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// openDatabase connects, bootstraps the schema and upserts the quest catalog.
func openDatabase(ctx context.Context) (*database.DB, error) {
	start := time.Now()
	slog.Info("Initializing database connection...", slog.String("type", "db"))

	db, err := database.New(ctx, cfg.DB)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err = db.InitializeSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("initialize schema: %w", err)
	}
	if err = db.SyncQuestDefinitions(ctx, cfg.Catalog.Quests); err != nil {
		db.Close()
		return nil, fmt.Errorf("sync quest definitions: %w", err)
	}

	slog.Info("Database ready",
		slog.String("type", "db"),
		slog.String("database", cfg.DB.Database),
		slog.Int("quests", len(cfg.Catalog.Quests)),
		logger.Since(start))
	return db, nil
}

// newEngine builds the engine over the Postgres store.
func newEngine(db *database.DB, listeners ...rewards.Listener) (*rewards.Engine, *repositories.ProgressionStore, error) {
	store := repositories.NewProgressionStore(db.BunDB())
	profiles := repositories.NewProfileRepository(db.BunDB())

	engine, err := rewards.NewEngine(store, cfg.Catalog, profiles,
		rewards.WithLocation(cfg.Location()),
		rewards.WithDayCacheSize(cfg.Rewards.DayCacheSize),
		rewards.WithListeners(listeners...),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build engine: %w", err)
	}
	return engine, store, nil
}
