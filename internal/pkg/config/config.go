package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,       default=8080"`
	Env       string `env:"ENV,        default=development"`
	LogLevel  string `env:"LOG_LEVEL,  default=info"`
	JWTSecret string `env:"JWT_SECRET"`
	// BaseURL is the externally reachable address used in tracking links and
	// unsubscribe URLs.
	BaseURL string `env:"APP_BASE_URL, default=http://localhost:8080"`

	AdminUser     string `env:"ADMIN_USER,     default=admin"`
	AdminPassword string `env:"ADMIN_PASSWORD, default=change-me"`

	Mongo    MongoConfig
	Redis    RedisConfig
	SMTP     SMTPConfig
	Telegram TelegramConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=consignment_tracker"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type SMTPConfig struct {
	Host     string `env:"SMTP_HOST"`
	Port     int    `env:"SMTP_PORT, default=587"`
	Username string `env:"SMTP_USER"`
	Password string `env:"SMTP_PASS"`
	From     string `env:"SMTP_FROM, default=no-reply@example.com"`
}

type TelegramConfig struct {
	// Token empty disables the bot entirely.
	Token string `env:"TELEGRAM_TOKEN"`
	// Mode selects the ingestion front-end: "polling" or "webhook".
	Mode         string        `env:"TELEGRAM_MODE,          default=polling"`
	PollInterval time.Duration `env:"TELEGRAM_POLL_INTERVAL, default=2s"`
	Workers      int           `env:"TELEGRAM_WORKERS,       default=4"`
	// WebhookURL is the externally reachable base the bot route is mounted
	// under. When set in webhook mode, the webhook is registered with the
	// transport at startup; when empty, registration is left to the operator.
	WebhookURL string `env:"TELEGRAM_WEBHOOK_URL"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
