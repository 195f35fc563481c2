package signal

import (
	"strings"

	"github.com/tidwall/gjson"

	"orbot/internal/pkg/convert"
)

// Legacy plain-text markers emitted by the v1 alert scripts. Matching is
// case-sensitive and exact.
const (
	legacyEntryLong  = "ORB_QQQ_ENTRY_LONG"
	legacyEntryShort = "ORB_QQQ_ENTRY_SHORT"
	legacyExit       = "ORB_QQQ_EXIT"
)

// Parser converts raw webhook bodies into Signals. It is a pure function of
// the input bytes and never fails: malformed JSON degrades to legacy
// plain-text matching, and unmatched bodies come back as EventUnknown.
type Parser struct {
	// FallbackSymbol is used when the payload does not name an instrument.
	FallbackSymbol string
}

// NewParser builds a Parser with the given fallback instrument.
func NewParser(fallbackSymbol string) *Parser {
	return &Parser{FallbackSymbol: strings.TrimSpace(fallbackSymbol)}
}

// Parse classifies one alert body.
func (p *Parser) Parse(raw []byte) Signal {
	body := string(raw)
	trimmed := strings.TrimSpace(body)

	if strings.HasPrefix(trimmed, "{") && gjson.Valid(trimmed) {
		return p.parseStructured(trimmed, body)
	}
	return p.parseLegacy(body)
}

func (p *Parser) parseStructured(trimmed, body string) Signal {
	sig := Signal{
		Event:  ParseEvent(gjson.Get(trimmed, "event").String()),
		Symbol: p.FallbackSymbol,
		Reason: strings.TrimSpace(gjson.Get(trimmed, "reason").String()),
		Raw:    body,
	}
	if sym := strings.TrimSpace(gjson.Get(trimmed, "symbol").String()); sym != "" {
		sig.Symbol = sym
	}
	sig.EntryPrice = levelField(trimmed, "entryPrice")
	sig.ORHigh = levelField(trimmed, "orHigh")
	sig.ORLow = levelField(trimmed, "orLow")
	return sig
}

func (p *Parser) parseLegacy(body string) Signal {
	sig := Signal{Event: EventUnknown, Symbol: p.FallbackSymbol, Raw: body}
	switch {
	case strings.Contains(body, legacyEntryLong):
		sig.Event = EventEntryLong
	case strings.Contains(body, legacyEntryShort):
		sig.Event = EventEntryShort
	case strings.Contains(body, legacyExit):
		sig.Event = EventFinalExit
	}
	return sig
}

// levelField reads an optional numeric field. Absent fields and values that
// do not carry a number (null, objects, junk strings) stay unset rather than
// coercing to zero.
func levelField(json, path string) Level {
	res := gjson.Get(json, path)
	if !res.Exists() {
		return Level{}
	}
	v, ok := convert.ToFloat64(res.Value())
	if !ok {
		return Level{}
	}
	return LevelOf(v)
}
