// Package config reads the storefront settings from environment variables.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/stripe/stripe-go/v79"

	"gofalre.io/storefront/models/enum"
)

type Config struct {
	HTTPAddr string `env:"HTTP_ADDR" envDefault:":8080"`

	CatalogBaseURL string        `env:"CATALOG_BASE_URL" envDefault:"http://localhost:3333"`
	CatalogTimeout time.Duration `env:"CATALOG_TIMEOUT" envDefault:"0s"`

	// memory 只適合本機執行，重啟後購物車會遺失
	StoreDriver enum.StoreDriver `env:"STORE_DRIVER" envDefault:"redis"`
	CartKey     string           `env:"CART_KEY" envDefault:"@RocketShoes:cart"`

	RedisAddr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" envDefault:"0"`

	PostgresDSN string `env:"POSTGRES_DSN"`

	// NATSURL 為空時不啟用指令訂閱與 NATS 通知
	NATSURL             string        `env:"NATS_URL"`
	NotificationSubject string        `env:"NOTIFICATION_SUBJECT" envDefault:"storefront.cart.notification"`
	CommandDedupeTTL    time.Duration `env:"COMMAND_DEDUPE_TTL" envDefault:"24h"`

	Currency    stripe.Currency `env:"CURRENCY" envDefault:"brl"`
	Development bool            `env:"DEVELOPMENT" envDefault:"false"`
}

// Load parses the environment and validates the result.
func Load() (*Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err = cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case enum.StoreDriverMemory, enum.StoreDriverRedis:
	case enum.StoreDriverPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("POSTGRES_DSN is required for store driver %q", c.StoreDriver)
		}
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}

	if c.CatalogBaseURL == "" {
		return fmt.Errorf("CATALOG_BASE_URL is required")
	}
	if c.CatalogTimeout < 0 {
		return fmt.Errorf("CATALOG_TIMEOUT must not be negative")
	}
	return nil
}
