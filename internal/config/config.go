// Package config provides application configuration.
package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

// DevSecret is used when neither GAME_SECRET nor GAME_SECRET_PARAM is set.
const DevSecret = "dev-secret-change-me"

// LedgerOff disables the local score ledger.
const LedgerOff = "off"

// Config holds all application configuration.
type Config struct {
	BotToken        string
	TelegramAPI     string // Bot API endpoint format; empty means api.telegram.org
	GameShortName   string
	Port            string
	Domain          string
	GameSecret      string
	GameSecretParam string // SSM parameter name; overrides GameSecret when set
	ClientOrigin    string
	LedgerDSN       string
	RequestTimeout  time.Duration
	LogLevel        string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	port := getEnv("PORT", "3000")
	timeout, err := getEnvDuration("REQUEST_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	cfg := &Config{
		BotToken:        getEnv("BOT_TOKEN", ""),
		TelegramAPI:     getEnv("TELEGRAM_API_ENDPOINT", ""),
		GameShortName:   getEnv("GAME_SHORT_NAME", "tictactoe"),
		Port:            port,
		Domain:          strings.TrimRight(getEnv("DOMAIN", "http://localhost:"+port), "/"),
		GameSecret:      getEnv("GAME_SECRET", DevSecret),
		GameSecretParam: getEnv("GAME_SECRET_PARAM", ""),
		ClientOrigin:    getEnv("CLIENT_ORIGIN", "*"),
		LedgerDSN:       getEnv("LEDGER_DSN", "./data/scores.db"),
		RequestTimeout:  timeout,
		LogLevel:        getEnv("LOG_LEVEL", "info"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if c.TelegramAPI != "" && strings.Count(c.TelegramAPI, "%s") != 2 {
		return fmt.Errorf("TELEGRAM_API_ENDPOINT must contain two %%s (token, method), got %q", c.TelegramAPI)
	}
	if c.GameShortName == "" {
		return fmt.Errorf("GAME_SHORT_NAME cannot be empty")
	}
	if n, err := strconv.Atoi(c.Port); err != nil || n <= 0 || n > 65535 {
		return fmt.Errorf("PORT must be a TCP port, got %q", c.Port)
	}
	u, err := url.Parse(c.Domain)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("DOMAIN must be an absolute http(s) URL, got %q", c.Domain)
	}
	if c.GameSecret == "" && c.GameSecretParam == "" {
		return fmt.Errorf("GAME_SECRET cannot be empty")
	}
	if c.LedgerDSN == "" {
		return fmt.Errorf("LEDGER_DSN cannot be empty (use %q to disable)", LedgerOff)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be > 0")
	}
	return nil
}

// UsingDevSecret reports whether the built-in development secret is in use.
func (c *Config) UsingDevSecret() bool {
	return c.GameSecretParam == "" && c.GameSecret == DevSecret
}

// LedgerEnabled is false when LEDGER_DSN is "off".
func (c *Config) LedgerEnabled() bool {
	return !strings.EqualFold(c.LedgerDSN, LedgerOff)
}

// SecretGetter is satisfied by paramstore.Getter.
type SecretGetter interface {
	GetParameter(ctx context.Context, name string) (string, error)
}

// ResolveSecret replaces GameSecret with the value of GameSecretParam when
// one is configured. It is a no-op otherwise.
func (c *Config) ResolveSecret(ctx context.Context, g SecretGetter) error {
	if c.GameSecretParam == "" {
		return nil
	}
	if g == nil {
		return errors.New("GAME_SECRET_PARAM set but no parameter store available")
	}
	v, err := g.GetParameter(ctx, c.GameSecretParam)
	if err != nil {
		return fmt.Errorf("resolve GAME_SECRET_PARAM: %w", err)
	}
	c.GameSecret = v
	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration like 10s, got %q", key, value)
	}
	return d, nil
}
