package notifier

import (
	"fmt"
	"strings"
	"time"

	"orbot/internal/engine"
	"orbot/internal/logger"
)

// Dispatcher fans decision outcomes out to every configured channel.
// Delivery is best-effort: failures are logged and never surfaced to the
// signal-processing path.
type Dispatcher struct {
	senders []TextNotifier
}

// NewDispatcher builds a Dispatcher over the given senders. A nil or empty
// sender list produces a no-op dispatcher.
func NewDispatcher(senders ...TextNotifier) *Dispatcher {
	out := make([]TextNotifier, 0, len(senders))
	for _, s := range senders {
		if s != nil {
			out = append(out, s)
		}
	}
	return &Dispatcher{senders: out}
}

// Notify renders the outcome and pushes it to all channels.
func (d *Dispatcher) Notify(out engine.Outcome, rawSignalText string) {
	if len(d.senders) == 0 {
		return
	}
	text := renderOutcome(out, rawSignalText).RenderMarkdown()
	for _, s := range d.senders {
		if err := s.SendText(text); err != nil {
			logger.Warnf("notifier: delivery failed: %v", err)
		}
	}
}

// SendStartup announces that the service is up and accepting alerts.
func (d *Dispatcher) SendStartup(fallbackSymbol string) {
	if len(d.senders) == 0 {
		return
	}
	msg := StructuredMessage{
		Icon:  "🤖",
		Title: "ORB bot online",
		Sections: []MessageSection{{
			Lines: []string{
				"ready to receive alerts",
				"default instrument: " + fallbackSymbol,
			},
		}},
		Timestamp: time.Now().UTC(),
	}
	text := msg.RenderMarkdown()
	for _, s := range d.senders {
		if err := s.SendText(text); err != nil {
			logger.Warnf("notifier: startup delivery failed: %v", err)
		}
	}
}

func renderOutcome(out engine.Outcome, raw string) StructuredMessage {
	sig := out.Signal
	sigLines := []string{
		"symbol: " + sig.Symbol,
		"event: " + string(sig.Event),
	}
	if sig.Reason != "" {
		sigLines = append(sigLines, "reason: "+sig.Reason)
	}
	sections := []MessageSection{{Title: "Signal", Lines: sigLines}}

	switch out.Action {
	case engine.ActionOrderPlaced:
		lines := []string{"detail: " + out.Detail}
		if out.OrderID != "" {
			lines = append(lines, "order id: "+out.OrderID)
		}
		if out.Quantity > 0 {
			lines = append(lines, fmt.Sprintf("quantity: %g", out.Quantity))
		}
		sections = append(sections, MessageSection{Title: "Order", Lines: lines})
	case engine.ActionBlocked, engine.ActionError:
		sections = append(sections, MessageSection{Title: "Result", Lines: []string{out.Detail}})
	}

	sections = append(sections, MessageSection{
		Title: "Guardrails",
		Lines: []string{
			fmt.Sprintf("trades today: %d", out.Ledger.TradeCount),
			fmt.Sprintf("loss units: %.2fR", out.Ledger.LossUnits),
		},
	})

	return StructuredMessage{
		Icon:      actionIcon(out.Action),
		Title:     "ORB Signal: " + string(out.Action),
		Sections:  sections,
		CodeBlock: strings.TrimSpace(raw),
		Timestamp: time.Now().UTC(),
	}
}

func actionIcon(a engine.Action) string {
	switch a {
	case engine.ActionOrderPlaced:
		return "🚀"
	case engine.ActionBlocked:
		return "🛑"
	case engine.ActionError:
		return "⚠️"
	default:
		return "📊"
	}
}
