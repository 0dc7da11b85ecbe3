package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Caixa"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"caixa"`
	}

	Server struct {
		Timeout     time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
		AuthSecret  string        `envconfig:"AUTH_SECRET" default:""`
		RateLimit   int           `envconfig:"RATE_LIMIT" default:"120"`
		Store       string        `envconfig:"STORE" default:"postgres"`
		CatalogSeed string        `envconfig:"CATALOG_SEED"`
		// Operators seeded on first start, as id:password pairs.
		Operators map[string]string `envconfig:"SEED_OPERATORS" default:"1:1234"`
	}

	// Terminal holds the settings of the cashier front end.
	Terminal struct {
		APIURL      string        `envconfig:"CAIXA_API_URL" default:"http://localhost:8080"`
		APIToken    string        `envconfig:"CAIXA_API_TOKEN"`
		APITimeout  time.Duration `envconfig:"CAIXA_API_TIMEOUT" default:"10s"`
		SessionFile string        `envconfig:"CAIXA_SESSION_FILE" default:".caixa-session.json"`
		SessionTTL  time.Duration `envconfig:"CAIXA_SESSION_TTL" default:"8h"`
		PrintDir    string        `envconfig:"CAIXA_PRINT_DIR" default:"./prints"`
		LogFile     string        `envconfig:"CAIXA_LOG_FILE" default:"caixa.log"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
