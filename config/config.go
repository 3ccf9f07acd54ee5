package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

type Config struct {
	Server struct {
		// Port the HTTP API listens on
		Port string `env:"SERVER_PORT" envDefault:"8000"`

		// Gin mode: debug, release or test
		GinMode string `env:"GIN_MODE" envDefault:"release"`

		// Seconds to wait for in-flight requests on shutdown
		ShutdownTimeout int `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"10"`
	}

	Database struct {
		// Backend used for documents: sqlite or mongo
		Driver string `env:"DB_DRIVER" envDefault:"sqlite"`

		// SQLite file, relative to the working directory
		Path string `env:"DB_PATH" envDefault:"database/quickflip.db"`

		// MongoDB connection string and database name
		URL  string `env:"DATABASE_URL" envDefault:"mongodb://localhost:27017"`
		Name string `env:"DATABASE_NAME" envDefault:"quickflip"`

		// Seconds allowed for the initial connection
		ConnectTimeout int `env:"DB_CONNECT_TIMEOUT" envDefault:"10"`
	}

	Matching struct {
		// Maximum number of buyers fetched for a single match run
		BuyerPoolLimit int `env:"BUYER_POOL_LIMIT" envDefault:"200"`
	}

	Queue struct {
		// Number of deal events buffered before pushes are rejected
		Size int `env:"DEAL_QUEUE_SIZE" envDefault:"100"`
	}

	Log struct {
		Level string `env:"LOG_LEVEL" envDefault:"info"`
	}

	Metrics struct {
		Prefix string `env:"METRICS_PREFIX" envDefault:"quickflip"`
	}

	Telegram struct {
		Enabled  bool   `env:"TELEGRAM_ENABLED" envDefault:"false"`
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`

		// Lowest deal rank that triggers a notification
		MinRank string `env:"TELEGRAM_MIN_RANK" envDefault:"B"`
	}
}

// LoadConfig reads an optional .env file and then the process environment.
func LoadConfig() (*Config, error) {
	// .env is optional; variables already set in the environment win.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the server cannot start with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverMongo:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Matching.BuyerPoolLimit <= 0 {
		return fmt.Errorf("BUYER_POOL_LIMIT must be positive, got %d", c.Matching.BuyerPoolLimit)
	}
	if c.Queue.Size <= 0 {
		return fmt.Errorf("DEAL_QUEUE_SIZE must be positive, got %d", c.Queue.Size)
	}
	if c.Telegram.Enabled && (c.Telegram.BotToken == "" || c.Telegram.ChatID == "") {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN and TELEGRAM_CHAT_ID are required when Telegram is enabled")
	}
	return nil
}
