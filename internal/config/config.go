package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config holds all runtime settings. Values come from the environment,
// optionally seeded from a .env file in the working directory.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"datastore.json"`

	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`

	CacheDir       string        `env:"CACHE_DIR" envDefault:"media_cache"`
	CacheMaxSizeMB int64         `env:"CACHE_MAX_SIZE_MB" envDefault:"100"`
	CacheMaxAge    time.Duration `env:"CACHE_MAX_AGE" envDefault:"72h"`

	// Tracks shorter than PrebufferLimit are downloaded to the cache before
	// playback; longer ones are streamed directly.
	PrebufferLimit time.Duration `env:"PREBUFFER_LIMIT" envDefault:"30m"`

	ResolveTimeout time.Duration `env:"RESOLVE_TIMEOUT" envDefault:"30s"`

	InitSlashCommands bool `env:"INIT_SLASH_COMMANDS" envDefault:"true"`

	GuildBlacklist []string `env:"GUILD_BLACKLIST" envSeparator:","`
}

func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("no .env file found, using system environment")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	return cfg, nil
}
