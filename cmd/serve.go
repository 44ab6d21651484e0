package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/disgoorg/disgo/bot"
	"github.com/disgoorg/disgo/handler"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/ellavondegurechaff/progression/backend"
	apihandlers "github.com/ellavondegurechaff/progression/backend/handlers"
	"github.com/ellavondegurechaff/progression/bottemplate"
	"github.com/ellavondegurechaff/progression/bottemplate/commands"
	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/database"
	"github.com/ellavondegurechaff/progression/bottemplate/handlers"
	"github.com/ellavondegurechaff/progression/bottemplate/metrics"
	"github.com/ellavondegurechaff/progression/bottemplate/services"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Discord bot and the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		if !cfg.Bot.Enabled && !cfg.API.Enabled {
			return errors.New("nothing to serve: enable bot and/or api")
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		slog.Info("Starting progression",
			slog.String("version", version),
			slog.String("commit", commit))

		db, err := openDatabase(ctx)
		if err != nil {
			return err
		}
		defer db.Close()

		recorder := metrics.New(prometheus.DefaultRegisterer)
		listeners := []rewards.Listener{recorder}

		var board *services.Leaderboard
		if cfg.Redis.Enabled {
			rdb := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Address,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer rdb.Close()
			if err = rdb.Ping(ctx).Err(); err != nil {
				return fmt.Errorf("connect redis: %w", err)
			}
			board = services.NewLeaderboard(rdb)
			listeners = append(listeners, board)
		}

		engine, store, err := newEngine(db, listeners...)
		if err != nil {
			return err
		}

		if board != nil {
			n, err := board.Sync(ctx, store)
			if err != nil {
				return fmt.Errorf("seed leaderboard: %w", err)
			}
			slog.Info("Leaderboard seeded", slog.Int("users", n))
		}

		g, gctx := errgroup.WithContext(ctx)
		if cfg.Bot.Enabled {
			b, err := startBot(gctx, db, engine, recorder, board)
			if err != nil {
				return err
			}
			g.Go(func() error {
				<-gctx.Done()
				closeCtx, cancel := context.WithTimeout(context.Background(), config.ShutdownTimeout)
				defer cancel()
				b.Client.Close(closeCtx)
				slog.Info("Bot shutdown complete")
				return nil
			})
		}
		if cfg.API.Enabled {
			webApp := &apihandlers.WebApp{
				Engine:  engine,
				DB:      db,
				Version: version,
				Commit:  commit,
			}
			if board != nil {
				webApp.Leaderboard = board
			}
			app := backend.NewApp(webApp, backend.Options{
				AllowedOrigins: cfg.API.AllowedOrigins,
				Gatherer:       prometheus.DefaultGatherer,
			})
			g.Go(func() error {
				return backend.Run(gctx, app, cfg.API.Address)
			})
		}

		slog.Info("Progression is running. Press CTRL-C to exit.")
		return g.Wait()
	},
}

// startBot connects the Discord gateway with every command registered.
func startBot(ctx context.Context, db *database.DB, engine *rewards.Engine, recorder *metrics.Recorder, board *services.Leaderboard) (*bottemplate.Bot, error) {
	b := bottemplate.New(*cfg, version, commit)
	b.DB = db
	b.Engine = engine
	b.Metrics = recorder
	b.Leaderboard = board

	h := handler.New()
	commands.Register(h, b)

	if err := b.SetupBot(h, bot.NewListenerFunc(b.OnReady), handlers.MessageHandler(engine)); err != nil {
		return nil, fmt.Errorf("setup bot: %w", err)
	}

	if cfg.Bot.SyncCommands {
		slog.Info("Syncing commands", slog.Any("guild_ids", cfg.Bot.DevGuilds))
		if err := handler.SyncCommands(b.Client, commands.Commands, cfg.Bot.DevGuilds); err != nil {
			slog.Error("Failed to sync commands", slog.Any("error", err))
		}
	}

	if err := b.Client.OpenGateway(ctx); err != nil {
		b.Client.Close(context.Background())
		return nil, fmt.Errorf("connect gateway: %w", err)
	}
	return b, nil
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
