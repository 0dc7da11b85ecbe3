package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/caixa/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8*time.Hour, cfg.Terminal.SessionTTL)
	assert.Equal(t, 120, cfg.Server.RateLimit)
	assert.Equal(t, "postgres", cfg.Server.Store)
	assert.Equal(t, map[string]string{"1": "1234"}, cfg.Server.Operators)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("CAIXA_API_URL", "http://till.local:9000")
	t.Setenv("CAIXA_SESSION_TTL", "30m")
	t.Setenv("DB_NAME", "pdv")
	t.Setenv("SEED_OPERATORS", "1:1111,7:7777")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, "http://till.local:9000", cfg.Terminal.APIURL)
	assert.Equal(t, 30*time.Minute, cfg.Terminal.SessionTTL)
	assert.Equal(t, "postgres://postgres:@localhost:5432/pdv?sslmode=disable", cfg.ConnectionString())
	assert.Equal(t, map[string]string{"1": "1111", "7": "7777"}, cfg.Server.Operators)
}
