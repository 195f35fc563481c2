package webhookhttp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbot/internal/engine"
	"orbot/internal/gateway/broker"
	"orbot/internal/risk"
	"orbot/internal/signal"
)

type stubBroker struct {
	mu     sync.Mutex
	orders int
}

func (b *stubBroker) GetEquity(ctx context.Context) (float64, error) { return 100000, nil }

func (b *stubBroker) SubmitMarketOrder(ctx context.Context, sym string, qty float64, side broker.Side, tif broker.TimeInForce) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.orders++
	return "order-1", nil
}

func (b *stubBroker) GetOpenPosition(ctx context.Context, sym string) (broker.Position, error) {
	return broker.Position{}, broker.ErrNoPosition
}

func (b *stubBroker) ClosePosition(ctx context.Context, sym string) (string, error) {
	return "close-1", nil
}

type recordingNotifier struct {
	mu    sync.Mutex
	calls []string
	done  chan struct{}
}

func (n *recordingNotifier) Notify(out engine.Outcome, rawSignalText string) {
	n.mu.Lock()
	n.calls = append(n.calls, rawSignalText)
	n.mu.Unlock()
	if n.done != nil {
		n.done <- struct{}{}
	}
}

func newTestServer(t *testing.T, enabled bool, notifier OutcomeNotifier) (*Server, *stubBroker) {
	t.Helper()
	b := &stubBroker{}
	ledger := risk.NewLedger(risk.Limits{DailyLossLimitR: 2.0, MaxTradesPerDay: 3})
	srv, err := NewServer(ServerConfig{
		Addr:           ":0",
		Parser:         signal.NewParser("QQQ"),
		Engine:         engine.New(b, ledger, 0.005),
		Notifier:       notifier,
		TradingEnabled: enabled,
	})
	require.NoError(t, err)
	return srv, b
}

func doRequest(srv *Server, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	srv.Router().ServeHTTP(w, req)
	return w
}

func TestNewServerRequiresDependencies(t *testing.T) {
	_, err := NewServer(ServerConfig{})
	assert.Error(t, err)
}

func TestWebhookStructuredEntry(t *testing.T) {
	done := make(chan struct{}, 1)
	notifier := &recordingNotifier{done: done}
	srv, b := newTestServer(t, true, notifier)

	body := `{"event":"ENTRY_LONG","symbol":"QQQ","entryPrice":100,"orHigh":101,"orLow":99}`
	w := doRequest(srv, http.MethodPost, "/webhook", body)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp["status"])
	assert.Equal(t, "ENTRY_LONG", resp["event"])
	assert.Equal(t, "ORDER_PLACED", resp["action"])
	assert.Equal(t, 1, b.orders)

	<-done
	notifier.mu.Lock()
	defer notifier.mu.Unlock()
	require.Len(t, notifier.calls, 1)
	assert.Equal(t, body, notifier.calls[0])
}

func TestWebhookMalformedBodyStillOK(t *testing.T) {
	srv, b := newTestServer(t, true, nil)

	w := doRequest(srv, http.MethodPost, "/webhook", `{"event": broken`)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNKNOWN", resp["event"])
	assert.Equal(t, "NONE", resp["action"])
	assert.Zero(t, b.orders)
}

func TestWebhookLegacyToken(t *testing.T) {
	srv, _ := newTestServer(t, true, nil)

	w := doRequest(srv, http.MethodPost, "/webhook", "ORB_QQQ_EXIT")

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "FINAL_EXIT", resp["event"])
}

func TestWebhookIgnoredWhileDisabled(t *testing.T) {
	srv, b := newTestServer(t, false, nil)

	body := `{"event":"ENTRY_LONG","symbol":"QQQ","entryPrice":100,"orLow":99}`
	w := doRequest(srv, http.MethodPost, "/webhook", body)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ignored", resp["status"])
	assert.Zero(t, b.orders)
}

func TestTradingToggleEndpoints(t *testing.T) {
	srv, b := newTestServer(t, false, nil)
	body := `{"event":"ENTRY_LONG","symbol":"QQQ","entryPrice":100,"orLow":99}`

	w := doRequest(srv, http.MethodPost, "/api/trading/enable", "")
	require.Equal(t, http.StatusOK, w.Code)

	doRequest(srv, http.MethodPost, "/webhook", body)
	assert.Equal(t, 1, b.orders)

	w = doRequest(srv, http.MethodPost, "/api/trading/disable", "")
	require.Equal(t, http.StatusOK, w.Code)

	doRequest(srv, http.MethodPost, "/webhook", body)
	assert.Equal(t, 1, b.orders)
}

func TestRootAndHealth(t *testing.T) {
	srv, _ := newTestServer(t, true, nil)

	w := doRequest(srv, http.MethodGet, "/", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "running")

	w = doRequest(srv, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	var health struct {
		Status         string  `json:"status"`
		TradingEnabled bool    `json:"trading_enabled"`
		Day            string  `json:"day"`
		TradeCount     int     `json:"trade_count"`
		LossUnits      float64 `json:"loss_units"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &health))
	assert.Equal(t, "ok", health.Status)
	assert.True(t, health.TradingEnabled)
	assert.NotEmpty(t, health.Day)
}

func TestMetricsEndpoint(t *testing.T) {
	srv, _ := newTestServer(t, true, nil)

	doRequest(srv, http.MethodPost, "/webhook", "ORB_QQQ_ENTRY_LONG")

	w := doRequest(srv, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "orbot_trades_today")
	assert.Contains(t, w.Body.String(), "orbot_signals_total")
}
