package config

import "strings"

const (
	defaultAppEnv        = "dev"
	defaultAppLogLevel   = "info"
	defaultAppHTTPAddr   = ":8080"
	defaultRiskFraction  = 0.005
	defaultDailyLossR    = 2.0
	defaultMaxTrades     = 3
	defaultFallbackSym   = "QQQ"
	defaultBrokerBaseURL = "https://paper-api.alpaca.markets"
	defaultBrokerTimeout = 15
)

func (c *Config) applyDefaults(keys keySet) {
	c.App.applyDefaults(keys)
	c.Trading.applyDefaults(keys)
	c.Broker.applyDefaults(keys)
}

func (a *AppConfig) applyDefaults(keys keySet) {
	if a == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("app.env", &a.Env, defaultAppEnv),
		stringFieldDefault("app.log_level", &a.LogLevel, defaultAppLogLevel),
		stringFieldDefault("app.http_addr", &a.HTTPAddr, defaultAppHTTPAddr),
	)
}

func (t *TradingConfig) applyDefaults(keys keySet) {
	if t == nil {
		return
	}
	applyFieldDefaults(keys,
		boolFieldDefault("trading.enabled", &t.Enabled, true),
		stringFieldDefault("trading.fallback_symbol", &t.FallbackSymbol, defaultFallbackSym),
		fieldDefault{
			key:   "trading.risk_fraction",
			need:  func() bool { return t.RiskFraction <= 0 },
			apply: func() { t.RiskFraction = defaultRiskFraction },
		},
		fieldDefault{
			key:   "trading.daily_loss_limit_r",
			need:  func() bool { return t.DailyLossLimitR <= 0 },
			apply: func() { t.DailyLossLimitR = defaultDailyLossR },
		},
		fieldDefault{
			key:   "trading.max_trades_per_day",
			need:  func() bool { return t.MaxTradesPerDay <= 0 },
			apply: func() { t.MaxTradesPerDay = defaultMaxTrades },
		},
	)
}

func (b *BrokerConfig) applyDefaults(keys keySet) {
	if b == nil {
		return
	}
	applyFieldDefaults(keys,
		stringFieldDefault("broker.base_url", &b.BaseURL, defaultBrokerBaseURL),
		fieldDefault{
			key:   "broker.timeout_seconds",
			need:  func() bool { return b.TimeoutSeconds <= 0 },
			apply: func() { b.TimeoutSeconds = defaultBrokerTimeout },
		},
	)
}

// Helper functions

func applyFieldDefaults(keys keySet, defs ...fieldDefault) {
	for _, def := range defs {
		if def.apply == nil {
			continue
		}
		if def.key != "" && keys.isSet(def.key) {
			continue
		}
		if def.need != nil && !def.need() {
			continue
		}
		def.apply()
	}
}

func stringFieldDefault(key string, target *string, def string) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && strings.TrimSpace(*target) == ""
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}

func boolFieldDefault(key string, target *bool, def bool) fieldDefault {
	return fieldDefault{
		key: key,
		need: func() bool {
			return target != nil && !*target
		},
		apply: func() {
			if target != nil {
				*target = def
			}
		},
	}
}
