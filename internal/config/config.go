package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
type Config struct {
	BotToken       string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath         string        `envconfig:"DB_PATH" default:"./data/reminders.db"`
	TZName         string        `envconfig:"TZ_NAME" default:"Europe/Moscow"` // fixed for every reminder
	LogLevel       string        `envconfig:"LOG_LEVEL" default:"info"`        // debug|info|warn|error
	HTTPAddr       string        `envconfig:"HTTP_ADDR" default:":8080"`       // healthz
	ResyncInterval time.Duration `envconfig:"RESYNC_INTERVAL" default:"5m"`
}

// Load reads an optional dotenv file and then environment variables into Config.
// The dotenv path comes from ENV_FILE (default ".env"); values already present
// in the environment win over the file.
func Load() (Config, error) {
	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("load %s: %w", envFile, err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if _, err := cfg.Location(); err != nil {
		return cfg, err
	}
	if cfg.ResyncInterval <= 0 {
		return cfg, fmt.Errorf("RESYNC_INTERVAL must be positive, got %s", cfg.ResyncInterval)
	}
	return cfg, nil
}

// Location resolves TZName to a time zone.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.TZName)
	if err != nil {
		return nil, fmt.Errorf("TZ_NAME %q: %w", c.TZName, err)
	}
	return loc, nil
}
