package bottemplate

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"github.com/pelletier/go-toml/v2"

	"github.com/ellavondegurechaff/progression/bottemplate/config"
	"github.com/ellavondegurechaff/progression/bottemplate/database"
	"github.com/ellavondegurechaff/progression/internal/domain/rewards"
)

// LoadConfig decodes the TOML file at path, fills defaults and validates the
// effective catalog.
func LoadConfig(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config: %w", err)
	}
	defer file.Close()

	cfg := DefaultConfig()
	if err = toml.NewDecoder(file).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if err = cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Log: LogConfig{Level: slog.LevelInfo},
		Bot: BotConfig{Enabled: true, SyncCommands: true},
		DB: database.DBConfig{
			Host:     "localhost",
			Port:     5432,
			Database: "progression",
			PoolSize: 10,
		},
		API: APIConfig{Address: ":8080", AllowedOrigins: "*"},
		Redis: RedisConfig{
			Address: "localhost:6379",
		},
		Spaces: SpacesConfig{ReportPrefix: "reports/reconcile"},
		Rewards: RewardsConfig{
			Timezone:     "UTC",
			DayCacheSize: config.DayCacheSize,
		},
	}
}

type Config struct {
	Log     LogConfig         `toml:"log"`
	Bot     BotConfig         `toml:"bot"`
	DB      database.DBConfig `toml:"db"`
	API     APIConfig         `toml:"api"`
	Redis   RedisConfig       `toml:"redis"`
	Spaces  SpacesConfig      `toml:"spaces"`
	Rewards RewardsConfig     `toml:"rewards"`
	// Catalog replaces the built-in catalog when present.
	Catalog *rewards.Catalog `toml:"catalog"`

	location *time.Location
}

type BotConfig struct {
	Enabled      bool           `toml:"enabled"`
	DevGuilds    []snowflake.ID `toml:"dev_guilds"`
	Token        string         `toml:"token"`
	SyncCommands bool           `toml:"sync_commands"`
}

type LogConfig struct {
	Level     slog.Level `toml:"level"`
	AddSource bool       `toml:"add_source"`
}

type APIConfig struct {
	Enabled        bool   `toml:"enabled"`
	Address        string `toml:"address"`
	AllowedOrigins string `toml:"allowed_origins"`
}

type RedisConfig struct {
	Enabled  bool   `toml:"enabled"`
	Address  string `toml:"address"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
}

type SpacesConfig struct {
	Key          string `toml:"key"`
	Secret       string `toml:"secret"`
	Region       string `toml:"region"`
	Bucket       string `toml:"bucket"`
	Endpoint     string `toml:"endpoint"`
	ReportPrefix string `toml:"report_prefix"`
}

// Enabled reports whether enough is configured to upload reports.
func (s SpacesConfig) Enabled() bool {
	return s.Key != "" && s.Secret != "" && s.Bucket != ""
}

type RewardsConfig struct {
	Timezone     string `toml:"timezone"`
	DayCacheSize int    `toml:"day_cache_size"`
}

func (c *Config) finish() error {
	if c.Bot.Enabled && c.Bot.Token == "" {
		return errors.New("bot.token is required when the bot is enabled")
	}

	loc, err := time.LoadLocation(c.Rewards.Timezone)
	if err != nil {
		return fmt.Errorf("invalid rewards.timezone %q: %w", c.Rewards.Timezone, err)
	}
	c.location = loc

	if c.Catalog == nil {
		c.Catalog = rewards.DefaultCatalog()
	}
	return c.Catalog.Validate()
}

// Location is the timezone that defines the reward day.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.UTC
	}
	return c.location
}
