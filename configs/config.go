package configs

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v2"
)

// EnvDevelopment is the default environment name
const EnvDevelopment = "development"

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	Quote    QuoteConfig    `yaml:"quote"`
	Trading  TradingConfig  `yaml:"trading"`
	Log      LogConfig      `yaml:"log"`
	Timezone string         `yaml:"timezone"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Port            string        `yaml:"port"`
	Env             string        `yaml:"env"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	URL      string `yaml:"url"`
	MaxConns int32  `yaml:"max_conns"`
	MinConns int32  `yaml:"min_conns"`
}

// RedisConfig holds Redis configuration. An empty URL selects the in-memory session store.
type RedisConfig struct {
	URL       string `yaml:"url"`
	KeyPrefix string `yaml:"key_prefix"`
}

// SessionConfig holds session cookie configuration
type SessionConfig struct {
	Secret     string        `yaml:"secret"`
	CookieName string        `yaml:"cookie_name"`
	TTL        time.Duration `yaml:"ttl"`
	Secure     bool          `yaml:"secure"`
}

// QuoteConfig holds the quote provider configuration
type QuoteConfig struct {
	BaseURL    string        `yaml:"base_url"`
	APIKey     string        `yaml:"api_key"`
	Timeout    time.Duration `yaml:"timeout"`
	SymbolPath string        `yaml:"symbol_path"`
	NamePath   string        `yaml:"name_path"`
	PricePath  string        `yaml:"price_path"`
}

// TradingConfig holds trading configuration
type TradingConfig struct {
	StartingCash decimal.Decimal `yaml:"-"`
}

// UnmarshalYAML reads starting_cash as a decimal string
func (t *TradingConfig) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var raw struct {
		StartingCash string `yaml:"starting_cash"`
	}
	if err := unmarshal(&raw); err != nil {
		return err
	}
	if raw.StartingCash == "" {
		return nil
	}
	cash, err := decimal.NewFromString(raw.StartingCash)
	if err != nil {
		return fmt.Errorf("invalid trading.starting_cash %q: %w", raw.StartingCash, err)
	}
	t.StartingCash = cash
	return nil
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IsDevelopment reports whether the server runs in the development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == EnvDevelopment
}

// Default returns the built-in configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8080",
			Env:             EnvDevelopment,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Database: DatabaseConfig{
			MaxConns: 10,
			MinConns: 2,
		},
		Redis: RedisConfig{
			KeyPrefix: "papertrade:",
		},
		Session: SessionConfig{
			CookieName: "session",
			TTL:        24 * time.Hour,
		},
		Quote: QuoteConfig{
			BaseURL:    "https://cloud.iexapis.com/stable",
			Timeout:    10 * time.Second,
			SymbolPath: "$.symbol",
			NamePath:   "$.companyName",
			PricePath:  "$.latestPrice",
		},
		Trading: TradingConfig{
			StartingCash: decimal.RequireFromString("10000.00"),
		},
		Log: LogConfig{
			Level: "info",
		},
		Timezone: "UTC",
	}
}

// Load loads configuration from defaults, the optional CONFIG_FILE yaml file
// and environment variables, in that order of precedence.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if cfg.Log.Format == "" {
		cfg.Log.Format = "json"
		if cfg.IsDevelopment() {
			cfg.Log.Format = "console"
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	var errs []error
	collect := func(err error) {
		if err != nil {
			errs = append(errs, err)
		}
	}

	setString(&c.Server.Port, "PORT")
	setString(&c.Server.Env, "GO_ENV")
	collect(setDuration(&c.Server.ReadTimeout, "SERVER_READ_TIMEOUT"))
	collect(setDuration(&c.Server.WriteTimeout, "SERVER_WRITE_TIMEOUT"))
	collect(setDuration(&c.Server.IdleTimeout, "SERVER_IDLE_TIMEOUT"))
	collect(setDuration(&c.Server.ShutdownTimeout, "SERVER_SHUTDOWN_TIMEOUT"))

	setString(&c.Database.URL, "DATABASE_URL")
	collect(setInt32(&c.Database.MaxConns, "DB_MAX_CONNS"))
	collect(setInt32(&c.Database.MinConns, "DB_MIN_CONNS"))

	setString(&c.Redis.URL, "REDIS_URL")
	setString(&c.Redis.KeyPrefix, "REDIS_KEY_PREFIX")

	setString(&c.Session.Secret, "SESSION_SECRET")
	setString(&c.Session.CookieName, "SESSION_COOKIE_NAME")
	collect(setDuration(&c.Session.TTL, "SESSION_TTL"))
	collect(setBool(&c.Session.Secure, "SESSION_SECURE"))

	setString(&c.Quote.BaseURL, "QUOTE_BASE_URL")
	setString(&c.Quote.APIKey, "API_KEY")
	collect(setDuration(&c.Quote.Timeout, "QUOTE_TIMEOUT"))
	setString(&c.Quote.SymbolPath, "QUOTE_SYMBOL_PATH")
	setString(&c.Quote.NamePath, "QUOTE_NAME_PATH")
	setString(&c.Quote.PricePath, "QUOTE_PRICE_PATH")

	if value := os.Getenv("STARTING_CASH"); value != "" {
		cash, err := decimal.NewFromString(value)
		if err != nil {
			collect(fmt.Errorf("invalid STARTING_CASH %q: %w", value, err))
		} else {
			c.Trading.StartingCash = cash
		}
	}

	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Timezone, "TIMEZONE")

	return errors.Join(errs...)
}

// Validate checks invariants that cannot be expressed by defaults
func (c *Config) Validate() error {
	if c.Session.Secret == "" {
		if !c.IsDevelopment() {
			return errors.New("SESSION_SECRET is required outside development")
		}
		c.Session.Secret = "development-secret-change-me"
	}
	if c.Trading.StartingCash.IsNegative() {
		return fmt.Errorf("starting cash must not be negative: %s", c.Trading.StartingCash)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session ttl must be positive: %s", c.Session.TTL)
	}
	if c.Session.CookieName == "" {
		return errors.New("session cookie name must not be empty")
	}
	if c.Quote.BaseURL == "" {
		return errors.New("quote base url must not be empty")
	}
	if c.Quote.Timeout <= 0 {
		return fmt.Errorf("quote timeout must be positive: %s", c.Quote.Timeout)
	}
	// The portfolio page prices every holding within one quote timeout.
	if c.Server.WriteTimeout > 0 && c.Quote.Timeout >= c.Server.WriteTimeout {
		return fmt.Errorf("quote timeout %s must be below server write timeout %s",
			c.Quote.Timeout, c.Server.WriteTimeout)
	}
	return nil
}

// setString overrides dst when the environment variable is set
func setString(dst *string, key string) {
	if value := os.Getenv(key); value != "" {
		*dst = value
	}
}

func setDuration(dst *time.Duration, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = d
	return nil
}

func setInt32(dst *int32, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	n, err := strconv.ParseInt(value, 10, 32)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = int32(n)
	return nil
}

func setBool(dst *bool, key string) error {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, value, err)
	}
	*dst = b
	return nil
}
