package configs

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.True(t, cfg.IsDevelopment())
	assert.True(t, cfg.Trading.StartingCash.Equal(decimal.NewFromInt(10000)))
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.NotEmpty(t, cfg.Session.Secret, "development gets a fallback secret")
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("STARTING_CASH", "2500.50")
	t.Setenv("SESSION_TTL", "2h")
	t.Setenv("SESSION_SECURE", "true")
	t.Setenv("DB_MAX_CONNS", "4")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "2500.5", cfg.Trading.StartingCash.String())
	assert.Equal(t, 2*time.Hour, cfg.Session.TTL)
	assert.True(t, cfg.Session.Secure)
	assert.Equal(t, int32(4), cfg.Database.MaxConns)
}

func TestLoad_InvalidEnv(t *testing.T) {
	t.Setenv("SESSION_TTL", "forever")
	t.Setenv("STARTING_CASH", "lots")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SESSION_TTL")
	assert.Contains(t, err.Error(), "STARTING_CASH")
}

func TestLoad_ProductionRequiresSecret(t *testing.T) {
	t.Setenv("GO_ENV", "production")

	_, err := Load()
	require.Error(t, err)

	t.Setenv("SESSION_SECRET", "s3cret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_YAMLFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
server:
  port: "7000"
quote:
  base_url: http://quotes.local
  timeout: 3s
trading:
  starting_cash: 500.25
log:
  level: debug
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "7000", cfg.Server.Port)
	assert.Equal(t, "http://quotes.local", cfg.Quote.BaseURL)
	assert.Equal(t, 3*time.Second, cfg.Quote.Timeout)
	assert.Equal(t, "500.25", cfg.Trading.StartingCash.String())
	assert.Equal(t, "warn", cfg.Log.Level, "env wins over the file")
	assert.Equal(t, "$.latestPrice", cfg.Quote.PricePath, "untouched defaults survive")
}

func TestLoad_NegativeStartingCash(t *testing.T) {
	t.Setenv("STARTING_CASH", "-1")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_QuoteTimeoutBelowWriteTimeout(t *testing.T) {
	t.Setenv("QUOTE_TIMEOUT", "20s")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "below server write timeout")

	t.Setenv("SERVER_WRITE_TIMEOUT", "30s")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 20*time.Second, cfg.Quote.Timeout)
}
