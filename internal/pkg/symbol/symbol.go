// Package symbol handles instrument identifier spelling differences between
// the order-execution and position-query surfaces of the brokerage.
package symbol

import "strings"

// PairSeparator joins base and quote in paired/crypto instruments ("BTC/USD").
const PairSeparator = "/"

// IsPaired reports whether s names a paired instrument. Paired instruments
// reject day-scoped orders and must be submitted good-till-cancelled.
func IsPaired(s string) bool {
	return strings.Contains(s, PairSeparator)
}

// ForPositionQuery rewrites a signal symbol into the spelling the position and
// close-position endpoints expect ("BTC/USD" -> "BTCUSD"). Order submission
// must keep the symbol exactly as received; only lookups go through here.
func ForPositionQuery(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), PairSeparator, "")
}
