package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	TelegramBotToken  string        `env:"TELEGRAM_BOT_TOKEN,required"`
	DBHost            string        `env:"DB_HOST,required"`
	DBPort            int           `env:"DB_PORT,default=5432"`
	DBUser            string        `env:"DB_USER,required"`
	DBPassword        string        `env:"DB_PASSWORD,required"`
	DBName            string        `env:"DB_NAME,required"`
	DBSSLMode         string        `env:"DB_SSLMODE,default=disable"`
	DBMaxIdleConns    int           `env:"DB_MAX_IDLE_CONNS,default=10"`
	DBMaxOpenConns    int           `env:"DB_MAX_OPEN_CONNS,default=25"`
	DBConnMaxLifetime time.Duration `env:"DB_CONN_MAX_LIFETIME,default=30m"`

	StoreBaseURL   string        `env:"STORE_BASE_URL,default=https://www.lego.com"`
	StoreLocale    string        `env:"STORE_LOCALE,default=en-us"`
	ProbeTimeout   time.Duration `env:"PROBE_TIMEOUT,default=15s"`
	ProbeDelay     time.Duration `env:"PROBE_DELAY,default=2s"`
	ProbeUserAgent string        `env:"PROBE_USER_AGENT,default=stockbot/1.0"`

	MonitorInterval time.Duration `env:"MONITOR_INTERVAL,default=5m"`

	TelegramPollTimeout int    `env:"TELEGRAM_POLL_TIMEOUT,default=60"`
	MetricsAddr         string `env:"METRICS_ADDR"`
	LogLevel            string `env:"LOG_LEVEL,default=info"`
}

func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.MonitorInterval <= 0 {
		return fmt.Errorf("MONITOR_INTERVAL must be positive, got %s", c.MonitorInterval)
	}
	if c.ProbeDelay < 0 {
		return fmt.Errorf("PROBE_DELAY must not be negative, got %s", c.ProbeDelay)
	}
	if c.ProbeTimeout <= 0 {
		return fmt.Errorf("PROBE_TIMEOUT must be positive, got %s", c.ProbeTimeout)
	}
	return nil
}
