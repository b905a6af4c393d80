package config

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Store backends.
const (
	BackendMemory = "memory"
	BackendMongo  = "mongo"
)

type Config struct {
	Port      string        `env:"PORT,      default=8080"`
	Env       string        `env:"ENV,       default=development"`
	JWTSecret string        `env:"JWT_SECRET"`
	LogLevel  string        `env:"LOG_LEVEL, default=info"`
	TokenTTL  time.Duration `env:"TOKEN_TTL, default=24h"`

	// StoreBackend selects where staff, activity, messages and notifications live.
	StoreBackend      string        `env:"STORE_BACKEND,       default=memory"`
	SimulatedLatency  time.Duration `env:"SIMULATED_LATENCY,   default=0s"`
	SeedAdminPassword string        `env:"SEED_ADMIN_PASSWORD, default=Password12434@12"`

	Session  SessionConfig
	Reset    ResetConfig
	Mongo    MongoConfig
	Redis    RedisConfig
	RabbitMQ RabbitMQConfig
	Mail     MailConfig
}

type SessionConfig struct {
	IdleTimeout   time.Duration `env:"SESSION_IDLE_TIMEOUT,   default=30m"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL, default=1m"`
}

type ResetConfig struct {
	TokenTTL       time.Duration `env:"RESET_TOKEN_TTL,       default=15m"`
	ThrottleWindow time.Duration `env:"RESET_THROTTLE_WINDOW, default=1m"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=admin_console"`
}

// RedisConfig enables the Redis reset token store when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB, default=0"`
}

// RabbitMQConfig enables queued mail delivery when URL is set.
type RabbitMQConfig struct {
	URL string `env:"RABBITMQ_URL"`
}

type MailConfig struct {
	Workers      int    `env:"MAIL_WORKERS,   default=4"`
	SMTPHost     string `env:"SMTP_HOST,      default=localhost"`
	SMTPPort     int    `env:"SMTP_PORT,      default=587"`
	SMTPUsername string `env:"SMTP_USERNAME"`
	SMTPPassword string `env:"SMTP_PASSWORD"`
	From         string `env:"MAIL_FROM,      default=no-reply@admin-console.local"`
	ResetURL     string `env:"MAIL_RESET_URL, default=http://localhost:5173/reset-password"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	cfg, err := load(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return cfg
}

func load(ctx context.Context, l envconfig.Lookuper) (*Config, error) {
	var cfg Config
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// IsDevelopment reports whether the service runs in the development environment.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Validate rejects settings the service cannot start with.
func (c *Config) Validate() error {
	if c.StoreBackend != BackendMemory && c.StoreBackend != BackendMongo {
		return fmt.Errorf("STORE_BACKEND must be %q or %q, got %q", BackendMemory, BackendMongo, c.StoreBackend)
	}
	if c.JWTSecret == "" && !c.IsDevelopment() {
		return errors.New("JWT_SECRET is required outside development")
	}
	if c.SimulatedLatency < 0 {
		return errors.New("SIMULATED_LATENCY must not be negative")
	}
	return nil
}

// MailerConfig is the configuration of the mail consumer.
type MailerConfig struct {
	Env         string `env:"ENV,                 default=development"`
	LogLevel    string `env:"LOG_LEVEL,           default=info"`
	MetricsAddr string `env:"MAILER_METRICS_ADDR, default=:9091"`

	RabbitMQ RabbitMQConfig
	Mail     MailConfig
}

// IsDevelopment reports whether the mailer runs in the development environment.
func (c *MailerConfig) IsDevelopment() bool {
	return c.Env == "development"
}

// LoadMailer reads the mailer configuration from environment variables.
func LoadMailer() *MailerConfig {
	cfg, err := loadMailer(context.Background(), envconfig.OsLookuper())
	if err != nil {
		panic(fmt.Sprintf("config: failed to load mailer configuration: %v", err))
	}
	return cfg
}

func loadMailer(ctx context.Context, l envconfig.Lookuper) (*MailerConfig, error) {
	var cfg MailerConfig
	if err := envconfig.ProcessWith(ctx, &envconfig.Config{Target: &cfg, Lookuper: l}); err != nil {
		return nil, err
	}
	if cfg.RabbitMQ.URL == "" {
		return nil, errors.New("RABBITMQ_URL is required")
	}
	return &cfg, nil
}
