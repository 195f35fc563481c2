// Package signal turns raw alert payloads from the charting service into
// structured trading signals.
package signal

import "strings"

// Event classifies an alert. Unknown strings always map to EventUnknown so
// free-form payload text never leaks into the decision logic.
type Event string

const (
	EventEntryLong   Event = "ENTRY_LONG"
	EventEntryShort  Event = "ENTRY_SHORT"
	EventPartialExit Event = "PARTIAL_EXIT"
	EventFinalExit   Event = "FINAL_EXIT"
	EventUnknown     Event = "UNKNOWN"
)

// ParseEvent maps a payload event string to its closed Event value. The
// legacy spelling "EXIT" is accepted as a final exit. Matching is exact and
// case-sensitive, like the legacy token scan.
func ParseEvent(s string) Event {
	switch strings.TrimSpace(s) {
	case "ENTRY_LONG":
		return EventEntryLong
	case "ENTRY_SHORT":
		return EventEntryShort
	case "PARTIAL_EXIT":
		return EventPartialExit
	case "FINAL_EXIT", "EXIT":
		return EventFinalExit
	default:
		return EventUnknown
	}
}

// IsEntry reports whether the event opens a position.
func (e Event) IsEntry() bool {
	return e == EventEntryLong || e == EventEntryShort
}

// Level is an optional price field. Absent or unparsable payload values leave
// Set false; a zero Value with Set true is a real (if useless) zero, not a
// missing field.
type Level struct {
	Value float64
	Set   bool
}

// LevelOf wraps a known-present value.
func LevelOf(v float64) Level { return Level{Value: v, Set: true} }

// Signal is one parsed alert. It is immutable once built by the parser.
type Signal struct {
	Event      Event
	Symbol     string
	EntryPrice Level
	ORHigh     Level
	ORLow      Level
	Reason     string

	// Raw keeps the alert body verbatim for notifications and diagnostics.
	Raw string
}

// StopLevel returns the protective level an entry is risk-sized against:
// the opening-range low for longs, the opening-range high for shorts.
func (s Signal) StopLevel() Level {
	switch s.Event {
	case EventEntryLong:
		return s.ORLow
	case EventEntryShort:
		return s.ORHigh
	default:
		return Level{}
	}
}
