package config

import (
	"fmt"
	"time"

	pkgconfig "github.com/utafrali/OrderDeskGo/internal/pkg/config"
)

// Config holds all configuration for the orderdesk service.
type Config struct {
	Environment string `env:"ENVIRONMENT" envDefault:"development"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// HTTP server
	HTTPPort int `env:"ORDERDESK_HTTP_PORT" envDefault:"8010"`

	// Remote collaborators
	CatalogServiceURL string `env:"CATALOG_SERVICE_URL" envDefault:"http://localhost:8011"`
	OrderServiceURL   string `env:"ORDER_SERVICE_URL" envDefault:"http://localhost:8012"`

	// Redis (cart snapshot store)
	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPass string `env:"REDIS_PASSWORD" envDefault:""`
	RedisDB   int    `env:"REDIS_DB" envDefault:"0"`

	// Kafka
	KafkaBrokers []string `env:"KAFKA_BROKERS" envDefault:"localhost:9092" envSeparator:","`

	// Session behavior
	SessionTTLMinutes  int      `env:"SESSION_TTL_MINUTES" envDefault:"120"`
	PageSize           int      `env:"PAGE_SIZE" envDefault:"6"`
	CartOpenStatuses   []string `env:"CART_OPEN_STATUSES" envDefault:"draft,open" envSeparator:","`
	CarouselIntervalMS int      `env:"CAROUSEL_INTERVAL_MS" envDefault:"5000"`
	ResumeDelayMS      int      `env:"CAROUSEL_RESUME_DELAY_MS" envDefault:"5000"`
	CountdownTickMS    int      `env:"SUMMARY_COUNTDOWN_TICK_MS" envDefault:"1000"`
	CountdownTicks     int      `env:"SUMMARY_COUNTDOWN_TICKS" envDefault:"3"`

	// Tracing
	TracingEnabled    bool    `env:"TRACING_ENABLED" envDefault:"false"`
	OTLPEndpoint      string  `env:"OTLP_ENDPOINT" envDefault:"localhost:4318"`
	TracingSampleRate float64 `env:"TRACING_SAMPLE_RATE" envDefault:"1.0"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := pkgconfig.Load(cfg); err != nil {
		return nil, fmt.Errorf("load orderdesk config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// validate checks configuration invariants.
func (c *Config) validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive: %d", c.PageSize)
	}
	if c.SessionTTLMinutes < 1 {
		return fmt.Errorf("session TTL must be positive: %d", c.SessionTTLMinutes)
	}
	if c.CarouselIntervalMS < 1 || c.ResumeDelayMS < 1 || c.CountdownTickMS < 1 {
		return fmt.Errorf("timer intervals must be positive")
	}
	if c.CountdownTicks < 1 {
		return fmt.Errorf("countdown ticks must be positive: %d", c.CountdownTicks)
	}
	return nil
}

// SessionTTL returns the session TTL as a duration.
func (c *Config) SessionTTL() time.Duration {
	return time.Duration(c.SessionTTLMinutes) * time.Minute
}

// CarouselInterval returns the carousel tick interval as a duration.
func (c *Config) CarouselInterval() time.Duration {
	return time.Duration(c.CarouselIntervalMS) * time.Millisecond
}

// ResumeDelay returns the carousel resume debounce delay as a duration.
func (c *Config) ResumeDelay() time.Duration {
	return time.Duration(c.ResumeDelayMS) * time.Millisecond
}

// CountdownTick returns the summary countdown tick interval as a duration.
func (c *Config) CountdownTick() time.Duration {
	return time.Duration(c.CountdownTickMS) * time.Millisecond
}
