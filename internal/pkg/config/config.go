package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: Values that differ between environments (port, DB connection, etc.), security settings
// - default: Values common across all environments (intervals, thresholds, etc.), standard settings
//
// Every tunable the schedulers and limiters consume lives here and is
// validated once at startup; nothing reads ad hoc toggles elsewhere.
// -----------------------------------------------------------------------------

type Config struct {
	Server    ServerConfig
	DB        DBConfig
	CORS      CORSConfig
	Log       LogConfig
	JWT       JWTConfig
	Scheduler SchedulerConfig
	Cooldown  CooldownConfig
	RateLimit RateLimitConfig
	Notifier  NotifierConfig
	Cache     CacheConfig
	Vault     VaultConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" required:"true"`
}

type DBConfig struct {
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" required:"true"`
	Password string `envconfig:"DB_PASSWORD" required:"true"`
	DBName   string `envconfig:"DB_NAME" required:"true"`
	SSLMode  string `envconfig:"DB_SSL_MODE" default:"disable"`
}

type CORSConfig struct {
	AllowOrigins     []string      `envconfig:"CORS_ALLOW_ORIGINS" default:"http://localhost:3000"`
	AllowMethods     []string      `envconfig:"CORS_ALLOW_METHODS" default:"GET,POST,PUT,PATCH,DELETE,OPTIONS"`
	AllowHeaders     []string      `envconfig:"CORS_ALLOW_HEADERS" default:"Origin,Content-Type,Accept,Authorization"`
	ExposeHeaders    []string      `envconfig:"CORS_EXPOSE_HEADERS" default:"Content-Length"`
	AllowCredentials bool          `envconfig:"CORS_ALLOW_CREDENTIALS" default:"true"`
	MaxAge           time.Duration `envconfig:"CORS_MAX_AGE" default:"12h"`
}

type LogConfig struct {
	Level string `envconfig:"LOG_LEVEL" default:"info"`
}

type JWTConfig struct {
	Secret   string `envconfig:"JWT_SECRET" required:"true"`
	Duration string `envconfig:"JWT_DURATION" default:"24h"`
}

type SchedulerConfig struct {
	// RestockTickInterval is clamped to [1m, 24h] by Validate.
	RestockTickInterval   time.Duration `envconfig:"RESTOCK_TICK_INTERVAL" default:"5m"`
	RestockRetention      time.Duration `envconfig:"RESTOCK_RETENTION" default:"168h"`
	AutoCloseIdleAfter    time.Duration `envconfig:"AUTO_CLOSE_IDLE_AFTER" default:"72h"`
	AutoCloseInterval     time.Duration `envconfig:"AUTO_CLOSE_INTERVAL" default:"30m"`
	RateWindowSweepPeriod time.Duration `envconfig:"RATE_WINDOW_SWEEP_PERIOD" default:"10m"`
}

type CooldownConfig struct {
	Hours           int `envconfig:"COOLDOWN_HOURS" default:"24"`
	HighDemandHours int `envconfig:"COOLDOWN_HOURS_HIGH_DEMAND" default:"48"`
}

type RateLimitConfig struct {
	MaxAttempts int           `envconfig:"RATE_LIMIT_MAX_ATTEMPTS" default:"5"`
	Window      time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

type NotifierConfig struct {
	WebhookURL  string        `envconfig:"NOTIFY_WEBHOOK_URL" default:""`
	SendTimeout time.Duration `envconfig:"NOTIFY_SEND_TIMEOUT" default:"5s"`
}

type CacheConfig struct {
	// Backend is "memory" or "redis".
	Backend   string `envconfig:"CACHE_BACKEND" default:"memory"`
	RedisAddr string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisDB   int    `envconfig:"REDIS_DB" default:"0"`
}

type VaultConfig struct {
	// CredentialKey is a 32-byte hex key sealing stored fulfillment
	// credentials. Empty disables automated fulfillment entries.
	CredentialKey string `envconfig:"CREDENTIAL_KEY" default:""`
}

func (c *DBConfig) BuildDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

func (c *CooldownConfig) For(highDemand bool) time.Duration {
	if highDemand {
		return time.Duration(c.HighDemandHours) * time.Hour
	}
	return time.Duration(c.Hours) * time.Hour
}

const (
	minRestockTick = time.Minute
	maxRestockTick = 24 * time.Hour
)

// Validate normalizes out-of-range values instead of failing: tick
// intervals are clamped, counts floored at sane minimums.
func (c *Config) Validate() error {
	if c.Scheduler.RestockTickInterval < minRestockTick {
		c.Scheduler.RestockTickInterval = minRestockTick
	}
	if c.Scheduler.RestockTickInterval > maxRestockTick {
		c.Scheduler.RestockTickInterval = maxRestockTick
	}
	if c.Cooldown.Hours <= 0 || c.Cooldown.HighDemandHours <= 0 {
		return fmt.Errorf("cooldown hours must be positive")
	}
	if c.Cooldown.HighDemandHours < c.Cooldown.Hours {
		return fmt.Errorf("high-demand cooldown must not be shorter than the base cooldown")
	}
	if c.RateLimit.MaxAttempts < 1 {
		return fmt.Errorf("rate limit max attempts must be at least 1")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive")
	}
	switch c.Cache.Backend {
	case "memory", "redis":
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}
	return nil
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func NewTestConfig() Config {
	return Config{
		Server: ServerConfig{
			Port: "8889", // Test port
		},
		DB: DBConfig{
			Host:     "localhost",
			Port:     "15433", // Test DB port
			User:     "test",
			Password: "test",
			DBName:   "test_db",
			SSLMode:  "disable",
		},
		Log: LogConfig{
			Level: "error", // Error level only for tests
		},
		JWT: JWTConfig{
			Secret:   "test-secret",
			Duration: "1h",
		},
		Scheduler: SchedulerConfig{
			RestockTickInterval:   time.Minute,
			RestockRetention:      24 * time.Hour,
			AutoCloseIdleAfter:    time.Hour,
			AutoCloseInterval:     time.Minute,
			RateWindowSweepPeriod: time.Minute,
		},
		Cooldown:  CooldownConfig{Hours: 24, HighDemandHours: 48},
		RateLimit: RateLimitConfig{MaxAttempts: 3, Window: time.Minute},
		Notifier:  NotifierConfig{SendTimeout: time.Second},
		Cache:     CacheConfig{Backend: "memory"},
	}
}
