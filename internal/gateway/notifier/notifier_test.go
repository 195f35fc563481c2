package notifier

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orbot/internal/engine"
	"orbot/internal/risk"
	"orbot/internal/signal"
)

type recordingSender struct {
	sent []string
	err  error
}

func (r *recordingSender) SendText(text string) error {
	r.sent = append(r.sent, text)
	return r.err
}

func placedOutcome() engine.Outcome {
	return engine.Outcome{
		Action:   engine.ActionOrderPlaced,
		Detail:   "market buy QQQ qty=500",
		OrderID:  "order-1",
		Quantity: 500,
		Signal: signal.Signal{
			Event:  signal.EventEntryLong,
			Symbol: "QQQ",
		},
		Ledger: risk.Snapshot{Day: "2026-08-26", TradeCount: 1, LossUnits: -1},
	}
}

func TestDispatcherFansOutToAllSenders(t *testing.T) {
	a := &recordingSender{}
	b := &recordingSender{}
	d := NewDispatcher(a, nil, b)

	d.Notify(placedOutcome(), `{"event":"ENTRY_LONG"}`)

	require.Len(t, a.sent, 1)
	require.Len(t, b.sent, 1)
	assert.Equal(t, a.sent[0], b.sent[0])
}

func TestDispatcherSurvivesSenderFailure(t *testing.T) {
	failing := &recordingSender{err: errors.New("unreachable")}
	ok := &recordingSender{}
	d := NewDispatcher(failing, ok)

	d.Notify(placedOutcome(), "raw")

	assert.Len(t, ok.sent, 1)
}

func TestRenderOutcomeIncludesOrderAndGuardrails(t *testing.T) {
	text := renderOutcome(placedOutcome(), `{"event":"ENTRY_LONG"}`).RenderMarkdown()

	assert.Contains(t, text, "ORB Signal: ORDER_PLACED")
	assert.Contains(t, text, "symbol: QQQ")
	assert.Contains(t, text, "event: ENTRY_LONG")
	assert.Contains(t, text, "order id: order-1")
	assert.Contains(t, text, "quantity: 500")
	assert.Contains(t, text, "trades today: 1")
	assert.Contains(t, text, "loss units: -1.00R")
	// Raw alert rides along verbatim in a fence.
	assert.Contains(t, text, "```text\n{\"event\":\"ENTRY_LONG\"}\n```")
}

func TestRenderOutcomeBlocked(t *testing.T) {
	out := engine.Outcome{
		Action: engine.ActionBlocked,
		Detail: "daily guardrails reached (trades=3, loss=0.00R)",
		Signal: signal.Signal{Event: signal.EventEntryLong, Symbol: "QQQ"},
	}
	text := renderOutcome(out, "").RenderMarkdown()

	assert.Contains(t, text, "ORB Signal: BLOCKED")
	assert.Contains(t, text, "daily guardrails reached")
	assert.NotContains(t, text, "```")
}

func TestRenderMarkdownCapsLength(t *testing.T) {
	msg := StructuredMessage{
		Title:     "big",
		CodeBlock: strings.Repeat("x", 10000),
		Timestamp: time.Now().UTC(),
	}
	assert.LessOrEqual(t, len(msg.RenderMarkdown()), maxStructuredMessageLen+3)
}

func TestDiscordSendText(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	require.NoError(t, d.SendText("hello"))
	assert.Equal(t, "hello", got["content"])
}

func TestDiscordSendTextErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	d := NewDiscord(srv.URL)
	err := d.SendText("hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")

	assert.Error(t, NewDiscord("").SendText("hello"))
}

func TestTelegramRequiresCredentials(t *testing.T) {
	assert.Error(t, NewTelegram("", "").SendText("hello"))
	assert.Error(t, NewTelegram("token", "").SendText("hello"))
}
