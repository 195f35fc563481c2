// Package broker defines the brokerage capability the decision engine
// depends on. Production code plugs in the Alpaca-backed client; tests use
// in-memory fakes.
package broker

import (
	"context"
	"errors"
	"fmt"
)

// Side of an order.
type Side string

const (
	Buy  Side = "buy"
	Sell Side = "sell"
)

// TimeInForce for an order. Paired instruments reject day-scoped orders, so
// the engine picks GTC for them.
type TimeInForce string

const (
	Day TimeInForce = "day"
	GTC TimeInForce = "gtc"
)

// PositionSide of an open position.
type PositionSide string

const (
	Long  PositionSide = "long"
	Short PositionSide = "short"
)

// Opposite returns the order side that reduces a position on this side.
func (s PositionSide) Opposite() Side {
	if s == Short {
		return Buy
	}
	return Sell
}

// Position is a snapshot of one open position. The engine never caches it
// across calls.
type Position struct {
	Symbol   string
	Quantity float64
	Side     PositionSide
}

// ErrNoPosition is returned by GetOpenPosition when the account holds no
// position for the symbol.
var ErrNoPosition = errors.New("no open position")

// Error wraps any failure coming back from the brokerage boundary. The
// upstream message is preserved verbatim so operators can diagnose rejects.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return fmt.Sprintf("broker %s: %v", e.Op, e.Err) }
func (e *Error) Unwrap() error { return e.Err }

// Wrap tags err with the failing broker operation.
func Wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Op: op, Err: err}
}

// Broker is the minimal execution surface the engine requires.
type Broker interface {
	// GetEquity returns current account equity in dollars.
	GetEquity(ctx context.Context) (float64, error)
	// SubmitMarketOrder places a market order and returns the order id.
	// Fractional quantities are supported by the execution surface.
	SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side Side, tif TimeInForce) (string, error)
	// GetOpenPosition returns the open position for symbol, or ErrNoPosition.
	GetOpenPosition(ctx context.Context, symbol string) (Position, error)
	// ClosePosition liquidates the entire open position for symbol.
	ClosePosition(ctx context.Context, symbol string) (string, error)
}
