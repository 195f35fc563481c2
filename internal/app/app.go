// Package app wires the configuration into a running service.
package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	orbcfg "orbot/internal/config"
	"orbot/internal/engine"
	"orbot/internal/gateway/alpaca"
	"orbot/internal/gateway/broker"
	"orbot/internal/gateway/notifier"
	"orbot/internal/logger"
	"orbot/internal/risk"
	"orbot/internal/signal"
	webhookhttp "orbot/internal/transport/http/webhook"
)

// App owns the object graph: parser, ledger, engine, broker gateway, notifier
// channels and the HTTP transport.
type App struct {
	cfg        *orbcfg.Config
	ledger     *risk.Ledger
	engine     *engine.Engine
	dispatcher *notifier.Dispatcher
	server     *webhookhttp.Server

	// brokerFn lets tests substitute the Alpaca-backed broker.
	brokerFn func(orbcfg.BrokerConfig) (broker.Broker, error)
}

// Option customizes app construction.
type Option func(*App)

// WithBroker overrides the production broker constructor.
func WithBroker(b broker.Broker) Option {
	return func(a *App) {
		a.brokerFn = func(orbcfg.BrokerConfig) (broker.Broker, error) { return b, nil }
	}
}

// New builds the application (without starting it).
func New(cfg *orbcfg.Config, opts ...Option) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil config")
	}
	a := &App{
		cfg: cfg,
		brokerFn: func(bc orbcfg.BrokerConfig) (broker.Broker, error) {
			return alpaca.NewClient(bc)
		},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(a)
		}
	}

	brk, err := a.brokerFn(cfg.Broker)
	if err != nil {
		return nil, fmt.Errorf("building broker gateway: %w", err)
	}

	a.ledger = risk.NewLedger(risk.Limits{
		DailyLossLimitR: cfg.Trading.DailyLossLimitR,
		MaxTradesPerDay: cfg.Trading.MaxTradesPerDay,
	})
	a.engine = engine.New(brk, a.ledger, cfg.Trading.RiskFraction)
	a.dispatcher = notifier.NewDispatcher(buildSenders(cfg.Notify)...)

	srv, err := webhookhttp.NewServer(webhookhttp.ServerConfig{
		Addr:           cfg.App.HTTPAddr,
		Parser:         signal.NewParser(cfg.Trading.FallbackSymbol),
		Engine:         a.engine,
		Notifier:       a.dispatcher,
		TradingEnabled: cfg.Trading.Enabled,
	})
	if err != nil {
		return nil, fmt.Errorf("building webhook server: %w", err)
	}
	a.server = srv
	return a, nil
}

func buildSenders(cfg orbcfg.NotifyConfig) []notifier.TextNotifier {
	var senders []notifier.TextNotifier
	if cfg.Discord.Enabled {
		senders = append(senders, notifier.NewDiscord(cfg.Discord.WebhookURL))
	}
	if cfg.Telegram.Enabled {
		senders = append(senders, notifier.NewTelegram(cfg.Telegram.BotToken, cfg.Telegram.ChatID))
	}
	return senders
}

// Run serves until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.server == nil {
		return fmt.Errorf("app not initialized")
	}
	logger.Infof("orbot listening on %s (fallback symbol %s, risk %.3f%%)",
		a.server.Addr(), a.cfg.Trading.FallbackSymbol, a.cfg.Trading.RiskFraction*100)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error {
		a.dispatcher.SendStartup(a.cfg.Trading.FallbackSymbol)
		return nil
	})
	group.Go(func() error {
		if err := a.server.Start(ctx); err != nil {
			return fmt.Errorf("webhook server error: %w", err)
		}
		return nil
	})
	return group.Wait()
}

// ApplyLimits picks up reloaded guardrail thresholds and sizing fraction.
// Wired to config.Watch so edits to the config file land without a restart.
func (a *App) ApplyLimits(cfg *orbcfg.Config) {
	if a == nil || cfg == nil {
		return
	}
	a.ledger.UpdateLimits(risk.Limits{
		DailyLossLimitR: cfg.Trading.DailyLossLimitR,
		MaxTradesPerDay: cfg.Trading.MaxTradesPerDay,
	})
	a.engine.UpdateRiskFraction(cfg.Trading.RiskFraction)
	logger.Infof("trading limits updated: loss_limit=%.2fR max_trades=%d risk_fraction=%.4f",
		cfg.Trading.DailyLossLimitR, cfg.Trading.MaxTradesPerDay, cfg.Trading.RiskFraction)
}

// Server exposes the transport for test harnesses.
func (a *App) Server() *webhookhttp.Server { return a.server }
