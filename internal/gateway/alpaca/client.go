// Package alpaca adapts the Alpaca trading API to the broker capability.
package alpaca

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alpacahq/alpaca-trade-api-go/v3/alpaca"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	orbcfg "orbot/internal/config"
	"orbot/internal/gateway/broker"
	"orbot/internal/logger"
)

// Client implements broker.Broker against the Alpaca REST API. The SDK works
// in decimals; conversion from the engine's float arithmetic happens here and
// nowhere else.
type Client struct {
	api alpacaAPI
}

// alpacaAPI is the slice of the SDK the client uses, split out so tests can
// substitute a stub without network access.
type alpacaAPI interface {
	GetAccount() (*alpaca.Account, error)
	PlaceOrder(req alpaca.PlaceOrderRequest) (*alpaca.Order, error)
	GetPosition(symbol string) (*alpaca.Position, error)
	ClosePosition(symbol string, req alpaca.ClosePositionRequest) (*alpaca.Order, error)
}

// NewClient builds a broker client from configuration.
func NewClient(cfg orbcfg.BrokerConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" || strings.TrimSpace(cfg.APISecret) == "" {
		return nil, fmt.Errorf("alpaca: api_key and api_secret are required")
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	api := alpaca.NewClient(alpaca.ClientOpts{
		APIKey:     strings.TrimSpace(cfg.APIKey),
		APISecret:  strings.TrimSpace(cfg.APISecret),
		BaseURL:    strings.TrimSpace(cfg.BaseURL),
		HTTPClient: &http.Client{Timeout: timeout},
	})
	return &Client{api: api}, nil
}

// GetEquity returns current account equity.
func (c *Client) GetEquity(ctx context.Context) (float64, error) {
	acct, err := c.api.GetAccount()
	if err != nil {
		return 0, broker.Wrap("get equity", err)
	}
	return acct.Equity.InexactFloat64(), nil
}

// SubmitMarketOrder places a market order. Fractional quantities pass through
// as decimals; the symbol is used exactly as given.
func (c *Client) SubmitMarketOrder(ctx context.Context, symbol string, qty float64, side broker.Side, tif broker.TimeInForce) (string, error) {
	dq := decimal.NewFromFloat(qty)
	req := alpaca.PlaceOrderRequest{
		Symbol:        symbol,
		Qty:           &dq,
		Side:          toOrderSide(side),
		Type:          alpaca.Market,
		TimeInForce:   toTIF(tif),
		ClientOrderID: "orbot-" + uuid.NewString(),
	}
	order, err := c.api.PlaceOrder(req)
	if err != nil {
		return "", broker.Wrap("submit order", err)
	}
	logger.Infof("alpaca: order accepted id=%s symbol=%s qty=%s side=%s tif=%s",
		order.ID, symbol, dq.String(), side, tif)
	return order.ID, nil
}

// GetOpenPosition looks up the open position for symbol. Callers are expected
// to pass the position-query spelling (pair separator stripped).
func (c *Client) GetOpenPosition(ctx context.Context, symbol string) (broker.Position, error) {
	pos, err := c.api.GetPosition(symbol)
	if err != nil {
		if isNotFound(err) {
			return broker.Position{}, broker.ErrNoPosition
		}
		return broker.Position{}, broker.Wrap("get position", err)
	}
	side := broker.Long
	if strings.EqualFold(string(pos.Side), "short") {
		side = broker.Short
	}
	return broker.Position{
		Symbol:   pos.Symbol,
		Quantity: pos.Qty.Abs().InexactFloat64(),
		Side:     side,
	}, nil
}

// ClosePosition liquidates the whole position for symbol.
func (c *Client) ClosePosition(ctx context.Context, symbol string) (string, error) {
	order, err := c.api.ClosePosition(symbol, alpaca.ClosePositionRequest{})
	if err != nil {
		return "", broker.Wrap("close position", err)
	}
	return order.ID, nil
}

func toOrderSide(side broker.Side) alpaca.Side {
	if side == broker.Sell {
		return alpaca.Sell
	}
	return alpaca.Buy
}

func toTIF(tif broker.TimeInForce) alpaca.TimeInForce {
	if tif == broker.GTC {
		return alpaca.GTC
	}
	return alpaca.Day
}

func isNotFound(err error) bool {
	var apiErr *alpaca.APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}
