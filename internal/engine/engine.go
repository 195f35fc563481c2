// Package engine holds the signal-to-order decision logic: event handling,
// risk-based position sizing and daily guardrail enforcement.
package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"

	"orbot/internal/gateway/broker"
	"orbot/internal/logger"
	"orbot/internal/pkg/symbol"
	"orbot/internal/risk"
	"orbot/internal/signal"
)

// StopPhase1Reason marks a final exit as a recorded stop-loss. Only exits
// carrying this exact reason decrement the day's loss units.
const StopPhase1Reason = "STOP_PHASE1"

// Engine decides whether and what order to place for each parsed signal.
//
// One mutex serializes signal processing end to end, so the guardrail
// check-then-increment of an entry is atomic against every other signal: two
// concurrent entries can never both take the last remaining trade slot. Broker
// waits happen inside the lock; signals are short, independent units of work
// and there is nothing useful to overlap.
type Engine struct {
	mu           sync.Mutex
	broker       broker.Broker
	ledger       *risk.Ledger
	riskFraction float64
}

// New builds an Engine. riskFraction is the per-trade fraction of equity put
// at risk between entry and the opening-range stop.
func New(b broker.Broker, ledger *risk.Ledger, riskFraction float64) *Engine {
	return &Engine{broker: b, ledger: ledger, riskFraction: riskFraction}
}

// UpdateRiskFraction swaps the sizing fraction, used by config hot reload.
func (e *Engine) UpdateRiskFraction(f float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f > 0 {
		e.riskFraction = f
	}
}

// Ledger exposes the guardrail ledger for status surfaces.
func (e *Engine) Ledger() *risk.Ledger { return e.ledger }

// Process runs the decision state machine for one signal.
func (e *Engine) Process(ctx context.Context, sig signal.Signal) Outcome {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.ledger.ResetIfNewDay()

	var out Outcome
	switch sig.Event {
	case signal.EventEntryLong, signal.EventEntryShort:
		out = e.handleEntry(ctx, sig)
	case signal.EventPartialExit:
		out = e.handlePartialExit(ctx, sig)
	case signal.EventFinalExit:
		out = e.handleFinalExit(ctx, sig)
	default:
		out = Outcome{Action: ActionNone, Detail: "unrecognized alert, no action taken"}
	}
	out.Signal = sig
	out.Ledger = e.ledger.Snapshot()
	logger.Infof("engine: %s %s symbol=%s detail=%q trades=%d loss=%.2fR",
		sig.Event, out.Action, sig.Symbol, out.Detail, out.Ledger.TradeCount, out.Ledger.LossUnits)
	return out
}

func (e *Engine) handleEntry(ctx context.Context, sig signal.Signal) Outcome {
	if !e.ledger.CanEnter() {
		snap := e.ledger.Snapshot()
		return blocked(fmt.Sprintf("daily guardrails reached (trades=%d, loss=%.2fR)",
			snap.TradeCount, snap.LossUnits))
	}

	stop := sig.StopLevel()
	if !sig.EntryPrice.Set || !stop.Set {
		return blocked("missing or invalid price data for entry")
	}
	riskPerUnit := math.Abs(sig.EntryPrice.Value - stop.Value)
	if riskPerUnit <= 0 {
		return blocked("invalid risk per unit")
	}

	equity, err := e.broker.GetEquity(ctx)
	if err != nil {
		return brokerError(err)
	}
	if equity <= 0 {
		return blocked("non-positive account equity")
	}

	qty := entryQuantity(equity, e.riskFraction, riskPerUnit, sig.EntryPrice.Value)
	if qty <= 0 {
		return blocked("computed quantity is not positive")
	}

	side := broker.Buy
	if sig.Event == signal.EventEntryShort {
		side = broker.Sell
	}
	orderID, err := e.broker.SubmitMarketOrder(ctx, sig.Symbol, qty, side, timeInForce(sig.Symbol))
	if err != nil {
		return brokerError(err)
	}
	e.ledger.RecordEntry()
	return Outcome{
		Action:   ActionOrderPlaced,
		Detail:   fmt.Sprintf("market %s %s qty=%g", side, sig.Symbol, qty),
		OrderID:  orderID,
		Quantity: qty,
		Side:     side,
	}
}

func (e *Engine) handlePartialExit(ctx context.Context, sig signal.Signal) Outcome {
	pos, err := e.broker.GetOpenPosition(ctx, symbol.ForPositionQuery(sig.Symbol))
	if errors.Is(err, broker.ErrNoPosition) {
		return blocked(fmt.Sprintf("no open position for %s", sig.Symbol))
	}
	if err != nil {
		return brokerError(err)
	}
	if pos.Quantity <= 0 {
		return blocked(fmt.Sprintf("no open position for %s", sig.Symbol))
	}

	qty := pos.Quantity / 2
	side := pos.Side.Opposite()
	orderID, err := e.broker.SubmitMarketOrder(ctx, sig.Symbol, qty, side, timeInForce(sig.Symbol))
	if err != nil {
		return brokerError(err)
	}
	return Outcome{
		Action:   ActionOrderPlaced,
		Detail:   fmt.Sprintf("partial exit: market %s %s qty=%g", side, sig.Symbol, qty),
		OrderID:  orderID,
		Quantity: qty,
		Side:     side,
	}
}

func (e *Engine) handleFinalExit(ctx context.Context, sig signal.Signal) Outcome {
	// Loss attribution is driven by the signal's reason, not by the close
	// call: a broker failure below must not undo completed bookkeeping.
	if sig.Reason == StopPhase1Reason {
		e.ledger.RecordLoss(-1.0)
	}
	orderID, err := e.broker.ClosePosition(ctx, symbol.ForPositionQuery(sig.Symbol))
	if err != nil {
		return brokerError(err)
	}
	return Outcome{
		Action:  ActionOrderPlaced,
		Detail:  fmt.Sprintf("closed position for %s", sig.Symbol),
		OrderID: orderID,
	}
}

// entryQuantity implements the sizing arithmetic: risk-based size capped by
// notional affordability. Fractional quantities are allowed; the execution
// surface supports them.
func entryQuantity(equity, riskFraction, riskPerUnit, entryPrice float64) float64 {
	dollarRisk := equity * riskFraction
	qtyFromRisk := dollarRisk / riskPerUnit
	qtyCap := equity / entryPrice
	return math.Min(qtyFromRisk, qtyCap)
}

// timeInForce picks the order duration by instrument class: paired
// instruments reject day-scoped orders.
func timeInForce(sym string) broker.TimeInForce {
	if symbol.IsPaired(sym) {
		return broker.GTC
	}
	return broker.Day
}

func blocked(detail string) Outcome {
	return Outcome{Action: ActionBlocked, Detail: detail}
}

func brokerError(err error) Outcome {
	return Outcome{Action: ActionError, Detail: err.Error()}
}
