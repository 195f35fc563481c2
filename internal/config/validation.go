package config

import (
	"fmt"
	"strings"
)

// validate runs the semantic checks the schema cannot express.
func validate(c *Config) error {
	if err := c.Trading.validate(); err != nil {
		return err
	}
	if err := c.Notify.validate(); err != nil {
		return err
	}
	return nil
}

func (t *TradingConfig) validate() error {
	if t.RiskFraction <= 0 || t.RiskFraction > 1 {
		return fmt.Errorf("trading.risk_fraction must be in (0, 1], got %v", t.RiskFraction)
	}
	if t.DailyLossLimitR <= 0 {
		return fmt.Errorf("trading.daily_loss_limit_r must be > 0, got %v", t.DailyLossLimitR)
	}
	if t.MaxTradesPerDay <= 0 {
		return fmt.Errorf("trading.max_trades_per_day must be >= 1, got %d", t.MaxTradesPerDay)
	}
	if strings.TrimSpace(t.FallbackSymbol) == "" {
		return fmt.Errorf("trading.fallback_symbol cannot be empty")
	}
	return nil
}

func (n *NotifyConfig) validate() error {
	if n.Discord.Enabled && strings.TrimSpace(n.Discord.WebhookURL) == "" {
		return fmt.Errorf("notify.discord.webhook_url required when discord is enabled")
	}
	if n.Telegram.Enabled {
		if strings.TrimSpace(n.Telegram.BotToken) == "" {
			return fmt.Errorf("notify.telegram.bot_token required when telegram is enabled")
		}
		if strings.TrimSpace(n.Telegram.ChatID) == "" {
			return fmt.Errorf("notify.telegram.chat_id required when telegram is enabled")
		}
	}
	return nil
}
