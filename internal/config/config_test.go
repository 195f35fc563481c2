package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func writeConfigFile(t *testing.T, doc map[string]any) string {
	t.Helper()
	raw, err := yaml.Marshal(doc)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, raw, 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"broker": map[string]any{
			"api_key":    "key",
			"api_secret": "secret",
		},
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "dev", cfg.App.Env)
	assert.Equal(t, "info", cfg.App.LogLevel)
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.True(t, cfg.Trading.Enabled)
	assert.Equal(t, 0.005, cfg.Trading.RiskFraction)
	assert.Equal(t, 2.0, cfg.Trading.DailyLossLimitR)
	assert.Equal(t, 3, cfg.Trading.MaxTradesPerDay)
	assert.Equal(t, "QQQ", cfg.Trading.FallbackSymbol)
	assert.Equal(t, "https://paper-api.alpaca.markets", cfg.Broker.BaseURL)
	assert.Equal(t, 15, cfg.Broker.TimeoutSeconds)
}

func TestLoadFullFile(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"app": map[string]any{
			"env":       "prod",
			"log_level": "debug",
			"http_addr": ":9000",
		},
		"trading": map[string]any{
			"enabled":            false,
			"risk_fraction":      0.01,
			"daily_loss_limit_r": 3.0,
			"max_trades_per_day": 5,
			"fallback_symbol":    "SPY",
		},
		"broker": map[string]any{
			"api_key":         "key",
			"api_secret":      "secret",
			"base_url":        "https://api.alpaca.markets",
			"timeout_seconds": 30,
		},
		"notify": map[string]any{
			"telegram": map[string]any{
				"enabled":   true,
				"bot_token": "tok",
				"chat_id":   "123",
			},
		},
	})

	cfg, err := Load(path)
	require.NoError(t, err)

	// Explicit values survive defaulting, including explicit false.
	assert.False(t, cfg.Trading.Enabled)
	assert.Equal(t, 0.01, cfg.Trading.RiskFraction)
	assert.Equal(t, 5, cfg.Trading.MaxTradesPerDay)
	assert.Equal(t, "SPY", cfg.Trading.FallbackSymbol)
	assert.Equal(t, "https://api.alpaca.markets", cfg.Broker.BaseURL)
	assert.True(t, cfg.Notify.Telegram.Enabled)
	assert.Equal(t, "tok", cfg.Notify.Telegram.BotToken)
}

func TestLoadSchemaRejectsBadValues(t *testing.T) {
	cases := []map[string]any{
		{"trading": map[string]any{"risk_fraction": 0}},
		{"trading": map[string]any{"risk_fraction": 1.5}},
		{"trading": map[string]any{"max_trades_per_day": "three"}},
		{"trading": map[string]any{"daily_loss_limit_r": -2.0}},
		{"trading": map[string]any{"enabled": "yes please"}},
	}
	for _, doc := range cases {
		path := writeConfigFile(t, doc)
		_, err := Load(path)
		require.Error(t, err, "doc %v", doc)
		assert.Contains(t, err.Error(), "schema", "doc %v", doc)
	}
}

func TestLoadValidatesEnabledNotifiers(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"notify": map[string]any{
			"discord": map[string]any{"enabled": true},
		},
	})

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "webhook_url")
}

func TestLoadRejectsBlankFallbackSymbol(t *testing.T) {
	path := writeConfigFile(t, map[string]any{
		"trading": map[string]any{"fallback_symbol": "   "},
	})

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fallback_symbol")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load("  ")
	assert.Error(t, err)
}
