// Package risk tracks the per-day guardrail counters that gate entries.
package risk

import (
	"sync"
	"time"

	"orbot/internal/logger"
)

// Limits are the configurable guardrail thresholds.
type Limits struct {
	// DailyLossLimitR stops new entries once cumulative realized loss reaches
	// this many risk units ("R") for the day.
	DailyLossLimitR float64
	// MaxTradesPerDay caps the number of accepted entries per UTC day.
	MaxTradesPerDay int
}

// Snapshot is a point-in-time copy of the ledger, safe to hand to callers.
type Snapshot struct {
	Day        string  `json:"day"`
	TradeCount int     `json:"trade_count"`
	LossUnits  float64 `json:"loss_units"`
}

// Ledger holds the process-lifetime day counters. Counters live in memory
// only; a restart starts the day over, which is accepted behavior. All
// operations serialize on one mutex, and every read path rolls the counters
// to the current UTC day before looking at them.
type Ledger struct {
	mu         sync.Mutex
	limits     Limits
	day        string // UTC calendar date, e.g. "2026-08-26"
	tradeCount int
	lossUnits  float64
	now        func() time.Time
}

// NewLedger builds a Ledger anchored to the current UTC day.
func NewLedger(limits Limits) *Ledger {
	l := &Ledger{limits: limits, now: time.Now}
	l.day = l.currentDay()
	return l
}

func (l *Ledger) currentDay() string {
	return l.now().UTC().Format(time.DateOnly)
}

// resetIfNewDayLocked zeroes the counters when the UTC day has rolled over.
// Callers must hold l.mu. Calling it twice within one day is a no-op the
// second time.
func (l *Ledger) resetIfNewDayLocked() {
	day := l.currentDay()
	if day == l.day {
		return
	}
	logger.Infof("guardrails: new UTC day %s, counters reset (was trades=%d loss=%.2fR)",
		day, l.tradeCount, l.lossUnits)
	l.day = day
	l.tradeCount = 0
	l.lossUnits = 0
}

// ResetIfNewDay rolls the counters to the current UTC day if needed.
func (l *Ledger) ResetIfNewDay() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfNewDayLocked()
}

// CanEnter reports whether today's counters still allow a new entry.
func (l *Ledger) CanEnter() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfNewDayLocked()
	return l.lossUnits > -l.limits.DailyLossLimitR && l.tradeCount < l.limits.MaxTradesPerDay
}

// RecordEntry counts one accepted entry. Call only after the entry order was
// actually placed.
func (l *Ledger) RecordEntry() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfNewDayLocked()
	l.tradeCount++
}

// RecordLoss applies a negative delta in risk units for a stop-loss exit.
func (l *Ledger) RecordLoss(units float64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfNewDayLocked()
	l.lossUnits += units
}

// UpdateLimits swaps the thresholds, used by config hot reload.
func (l *Ledger) UpdateLimits(limits Limits) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.limits = limits
}

// Snapshot returns a copy of today's counters.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.resetIfNewDayLocked()
	return Snapshot{Day: l.day, TradeCount: l.tradeCount, LossUnits: l.lossUnits}
}
