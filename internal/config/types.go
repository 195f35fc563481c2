package config

import "strings"

// Config is the top-level configuration carrier.
type Config struct {
	App     AppConfig     `toml:"app"`
	Trading TradingConfig `toml:"trading"`
	Broker  BrokerConfig  `toml:"broker"`
	Notify  NotifyConfig  `toml:"notify"`
}

type AppConfig struct {
	Env      string `toml:"env"`
	LogLevel string `toml:"log_level"`
	HTTPAddr string `toml:"http_addr"`
	LogPath  string `toml:"log_path"`
}

// TradingConfig holds the decision-engine knobs. These are the recognized
// options of the signal-to-order core; everything else is wiring.
type TradingConfig struct {
	// Enabled gates the webhook: when false, alerts are acknowledged and
	// dropped without reaching the engine.
	Enabled bool `toml:"enabled"`
	// RiskFraction is the fraction of equity risked per entry (0.005 = 0.5%).
	RiskFraction float64 `toml:"risk_fraction"`
	// DailyLossLimitR stops entries once the day's realized loss hits this
	// many risk units.
	DailyLossLimitR float64 `toml:"daily_loss_limit_r"`
	// MaxTradesPerDay caps accepted entries per UTC day.
	MaxTradesPerDay int `toml:"max_trades_per_day"`
	// FallbackSymbol is used when an alert does not name an instrument.
	FallbackSymbol string `toml:"fallback_symbol"`
}

// BrokerConfig describes the Alpaca trading API access.
type BrokerConfig struct {
	APIKey         string `toml:"api_key"`
	APISecret      string `toml:"api_secret"`
	BaseURL        string `toml:"base_url"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

type NotifyConfig struct {
	Discord  DiscordConfig  `toml:"discord"`
	Telegram TelegramConfig `toml:"telegram"`
}

type DiscordConfig struct {
	Enabled    bool   `toml:"enabled"`
	WebhookURL string `toml:"webhook_url"`
}

type TelegramConfig struct {
	Enabled  bool   `toml:"enabled"`
	BotToken string `toml:"bot_token"`
	ChatID   string `toml:"chat_id"`
}

// keySet tracks which config keys were explicitly present in the file, so
// defaults never clobber intentional zero values.
type keySet map[string]struct{}

func (k keySet) mark(path string) {
	path = strings.ToLower(strings.TrimSpace(path))
	if path == "" {
		return
	}
	k[path] = struct{}{}
}

func (k keySet) isSet(path string) bool {
	_, ok := k[strings.ToLower(strings.TrimSpace(path))]
	return ok
}

type fieldDefault struct {
	key   string
	need  func() bool
	apply func()
}
