package engine

import (
	"orbot/internal/gateway/broker"
	"orbot/internal/risk"
	"orbot/internal/signal"
)

// Action is the engine's verdict for one signal.
type Action string

const (
	// ActionNone: the signal required no order (unknown events).
	ActionNone Action = "NONE"
	// ActionOrderPlaced: an order was accepted by the broker.
	ActionOrderPlaced Action = "ORDER_PLACED"
	// ActionBlocked: a policy or sizing refusal; expected, not an error.
	ActionBlocked Action = "BLOCKED"
	// ActionError: the broker boundary failed; detail carries the upstream message.
	ActionError Action = "ERROR"
)

// Outcome is what the engine returns for every processed signal. It is the
// unit the notifier renders and the tests assert on.
type Outcome struct {
	Action   Action
	Detail   string
	OrderID  string
	Quantity float64
	Side     broker.Side
	Signal   signal.Signal
	Ledger   risk.Snapshot
}
