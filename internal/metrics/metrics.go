// Package metrics exposes Prometheus instrumentation for signal processing.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"orbot/internal/engine"
	"orbot/internal/risk"
)

var (
	SignalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbot_signals_total", Help: "Alerts received, by parsed event"},
		[]string{"event"},
	)
	OutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbot_outcomes_total", Help: "Engine decisions, by action"},
		[]string{"action"},
	)
	OrdersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Name: "orbot_orders_total", Help: "Orders accepted by the broker"},
		[]string{"symbol", "side"},
	)
	TradesToday = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "orbot_trades_today", Help: "Entries accepted this UTC day"},
	)
	LossUnits = prometheus.NewGauge(
		prometheus.GaugeOpts{Name: "orbot_loss_units", Help: "Cumulative realized loss in R this UTC day"},
	)
)

func init() {
	prometheus.MustRegister(SignalsTotal, OutcomesTotal, OrdersTotal, TradesToday, LossUnits)
}

// ObserveOutcome records one engine decision and refreshes the day gauges.
func ObserveOutcome(out engine.Outcome) {
	SignalsTotal.WithLabelValues(string(out.Signal.Event)).Inc()
	OutcomesTotal.WithLabelValues(string(out.Action)).Inc()
	if out.Action == engine.ActionOrderPlaced && out.Side != "" {
		OrdersTotal.WithLabelValues(out.Signal.Symbol, string(out.Side)).Inc()
	}
	observeLedger(out.Ledger)
}

func observeLedger(snap risk.Snapshot) {
	TradesToday.Set(float64(snap.TradeCount))
	LossUnits.Set(snap.LossUnits)
}
