package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/database/models"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

const (
	defaultConnTimeout   = 5 * time.Second
	defaultMaxRetries    = 3
	defaultRetryInterval = time.Second
	schemaVersion        = 1 // bump when tables or indexes change
)

type DBConfig struct {
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	Database     string `toml:"database"`
	PoolSize     int    `toml:"pool_size"`
	MaxIdleConns int    `toml:"max_idle_conns"`
	MaxLifetime  int    `toml:"max_lifetime"`
}

// DB holds two handles on the same database: pgxpool for DDL and health
// checks, bun for the progression store.
type DB struct {
	pool  *pgxpool.Pool
	bunDB *bun.DB
}

func New(ctx context.Context, cfg DBConfig) (*DB, error) {
	if err := waitReachable(cfg); err != nil {
		return nil, err
	}

	poolConfig, err := pgxpool.ParseConfig(buildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to parse connection string: %w", err)
	}
	if cfg.PoolSize > 0 {
		poolConfig.MaxConns = int32(cfg.PoolSize)
	}
	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = int32(cfg.MaxIdleConns)
	}
	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = time.Duration(cfg.MaxLifetime) * time.Second
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}
	return &DB{pool: pool, bunDB: newBunDB(pool)}, nil
}

// waitReachable dials the server a few times before handing off to the pool,
// so a database that is still starting produces one clear error.
func waitReachable(cfg DBConfig) error {
	addr := net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
	network := "tcp"
	switch {
	case os.Getenv("DB_DIAL_FORCE_IPV4") == "1":
		network = "tcp4"
	case os.Getenv("DB_DIAL_FORCE_IPV6") == "1":
		network = "tcp6"
	}

	var err error
	for i := 0; i < defaultMaxRetries; i++ {
		var conn net.Conn
		conn, err = net.DialTimeout(network, addr, defaultConnTimeout)
		if err == nil {
			return conn.Close()
		}
		time.Sleep(defaultRetryInterval)
	}
	return fmt.Errorf("database server unreachable after %d attempts: %w", defaultMaxRetries, err)
}

func buildConnString(cfg DBConfig) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?connect_timeout=5",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
	)
}

func newBunDB(pool *pgxpool.Pool) *bun.DB {
	sslMode := os.Getenv("PG_SSLMODE")
	if sslMode == "" {
		sslMode = "disable"
	}

	conn := pool.Config().ConnConfig
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		conn.User, conn.Password, conn.Host, conn.Port, conn.Database, sslMode)

	sqldb := sql.OpenDB(pgdriver.NewConnector(pgdriver.WithDSN(dsn)))
	bunDB := bun.NewDB(sqldb, pgdialect.New())
	bunDB.AddQueryHook(NewQueryLogger(config.SlowQueryThreshold))
	return bunDB
}

func (db *DB) Pool() *pgxpool.Pool {
	return db.pool
}

func (db *DB) BunDB() *bun.DB {
	return db.bunDB
}

func (db *DB) ExecWithLog(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	start := time.Now()
	result, err := db.pool.Exec(ctx, sql, args...)
	took := time.Since(start)

	if err != nil {
		slog.Error("Query failed",
			slog.String("type", "db"),
			slog.String("operation", "exec"),
			slog.String("query", sql),
			slog.Any("args", args),
			slog.Duration("took", took),
			slog.Any("error", err),
		)
		return result, err
	}

	slog.Debug("Query executed",
		slog.String("type", "db"),
		slog.String("operation", "exec"),
		slog.String("query", sql),
		slog.Duration("took", took),
		slog.Int64("affected_rows", result.RowsAffected()),
	)
	return result, nil
}

func (db *DB) Close() {
	if db.pool != nil {
		db.pool.Close()
	}
	if db.bunDB != nil {
		db.bunDB.Close()
	}
}

func (db *DB) Ping(ctx context.Context) error {
	if err := db.pool.Ping(ctx); err != nil {
		return fmt.Errorf("pgxpool ping failed: %w", err)
	}
	if err := db.bunDB.PingContext(ctx); err != nil {
		return fmt.Errorf("bun ping failed: %w", err)
	}
	return nil
}

type tableSpec struct {
	model       any
	foreignKeys []string
}

const userFK = `("user_id") REFERENCES "user_progression" ("user_id")`

var tables = []tableSpec{
	{model: (*models.UserProgression)(nil)},
	{model: (*models.QuestDefinition)(nil)},
	{model: (*models.QuestProgress)(nil), foreignKeys: []string{userFK}},
	{model: (*models.DailyStreakClaim)(nil), foreignKeys: []string{userFK}},
	{model: (*models.WheelSpin)(nil), foreignKeys: []string{userFK}},
	{model: (*models.LedgerEntry)(nil), foreignKeys: []string{userFK}},
	{model: (*models.Profile)(nil)},
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_user_created ON ledger_entries(user_id, created_at DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ledger_entries_type ON ledger_entries(type)`,
	`CREATE INDEX IF NOT EXISTS idx_quest_progress_user ON quest_progress(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_daily_streak_claims_user_day ON daily_streak_claims(user_id, calendar_day DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_user_progression_total_xp ON user_progression(total_xp DESC)`,
}

// InitializeSchema creates the progression tables and indexes. With
// DB_FAST_INIT=1 it returns early once app_meta records the current version.
func (db *DB) InitializeSchema(ctx context.Context) error {
	if err := db.ensureUTF8Encoding(ctx); err != nil {
		return err
	}
	if err := db.ensureAppMeta(ctx); err != nil {
		return fmt.Errorf("failed to ensure app_meta: %w", err)
	}
	if os.Getenv("DB_FAST_INIT") == "1" {
		if v, err := db.getAppMeta(ctx, "schema_version"); err == nil && v == strconv.Itoa(schemaVersion) {
			slog.Info("Schema up to date, skipping initialization",
				slog.String("type", "db"),
				slog.Int("version", schemaVersion))
			return nil
		}
	}

	for _, t := range tables {
		q := db.bunDB.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.foreignKeys {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("failed to create table for %T: %w", t.model, err)
		}
	}

	for _, idx := range indexes {
		if _, err := db.ExecWithLog(ctx, idx); err != nil {
			return fmt.Errorf("failed to create index: %w", err)
		}
	}

	if err := db.setAppMeta(ctx, "schema_version", strconv.Itoa(schemaVersion)); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	slog.Info("Schema initialized",
		slog.String("type", "db"),
		slog.Int("tables", len(tables)),
		slog.Int("indexes", len(indexes)))
	return nil
}

// SyncQuestDefinitions upserts every catalog quest into quest_definitions.
func (db *DB) SyncQuestDefinitions(ctx context.Context, quests []rewards.QuestDefinition) error {
	const upsert = `
		INSERT INTO quest_definitions (
			quest_id, quest_type, title, description, target,
			xp_reward, reputation_reward, coin_reward, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, CURRENT_TIMESTAMP)
		ON CONFLICT (quest_id) DO UPDATE SET
			quest_type = EXCLUDED.quest_type,
			title = EXCLUDED.title,
			description = EXCLUDED.description,
			target = EXCLUDED.target,
			xp_reward = EXCLUDED.xp_reward,
			reputation_reward = EXCLUDED.reputation_reward,
			coin_reward = EXCLUDED.coin_reward,
			updated_at = CURRENT_TIMESTAMP`

	for _, q := range quests {
		if _, err := db.ExecWithLog(ctx, upsert,
			q.ID, q.Type, q.Title, q.Description, q.Target,
			q.XPReward, q.ReputationReward, q.CoinReward,
		); err != nil {
			return fmt.Errorf("failed to upsert quest %s: %w", q.ID, err)
		}
	}

	slog.Info("Quest definitions synced",
		slog.String("type", "db"),
		slog.Int("count", len(quests)))
	return nil
}

func (db *DB) ensureAppMeta(ctx context.Context) error {
	_, err := db.ExecWithLog(ctx, `CREATE TABLE IF NOT EXISTS app_meta (key TEXT PRIMARY KEY, value TEXT)`)
	return err
}

func (db *DB) getAppMeta(ctx context.Context, key string) (string, error) {
	var value string
	err := db.pool.QueryRow(ctx, `SELECT value FROM app_meta WHERE key = $1`, key).Scan(&value)
	return value, err
}

func (db *DB) setAppMeta(ctx context.Context, key, value string) error {
	_, err := db.ExecWithLog(ctx, `INSERT INTO app_meta(key, value) VALUES($1, $2)
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`, key, value)
	return err
}

func (db *DB) ensureUTF8Encoding(ctx context.Context) error {
	var encoding string
	if err := db.pool.QueryRow(ctx, "SHOW server_encoding").Scan(&encoding); err != nil {
		return fmt.Errorf("failed to check database encoding: %w", err)
	}
	if encoding != "UTF8" {
		slog.Warn("Database encoding is not UTF8",
			slog.String("type", "db"),
			slog.String("encoding", encoding))
	}
	return nil
}
