// Package alert derives alert state from stat snapshots against
// configured thresholds, with debounce on the falling edge to stop
// flicker when usage oscillates near a boundary.
package alert

import "github.com/sirbread/tarrow/internal/stats"

// DefaultDebounceTicks is how many consecutive below-threshold ticks
// are required before an active alert clears.
const DefaultDebounceTicks = 3

// Thresholds configures when usage counts as alerting.
type Thresholds struct {
	CPUHigh float64
	MemHigh float64
}

// State is the derived alert state for the latest snapshot.
type State struct {
	CPUAlert bool
	MemAlert bool
}

// Any reports whether any alert is active.
func (s State) Any() bool {
	return s.CPUAlert || s.MemAlert
}

// Evaluator recomputes alert state fresh each tick. An alert turns on
// the tick usage first exceeds its threshold, and turns off only after
// N consecutive ticks at or below it. The two below-threshold counters
// are the only mutable state.
type Evaluator struct {
	thresholds Thresholds
	debounce   int

	state    State
	cpuBelow int
	memBelow int
}

// NewEvaluator creates an evaluator with the given thresholds and
// debounce tick count. Debounce values below 1 are raised to 1.
func NewEvaluator(thresholds Thresholds, debounce int) *Evaluator {
	if debounce < 1 {
		debounce = 1
	}
	return &Evaluator{thresholds: thresholds, debounce: debounce}
}

// SetThresholds replaces the thresholds. Counters are reset so the
// next tick re-derives state cleanly against the new boundaries.
func (e *Evaluator) SetThresholds(thresholds Thresholds) {
	e.thresholds = thresholds
	e.cpuBelow = 0
	e.memBelow = 0
}

// Evaluate processes one snapshot and returns the current alert state.
func (e *Evaluator) Evaluate(snap stats.Snapshot) State {
	e.state.CPUAlert, e.cpuBelow = step(snap.CPUPercent, e.thresholds.CPUHigh, e.state.CPUAlert, e.cpuBelow, e.debounce)
	e.state.MemAlert, e.memBelow = step(snap.MemPercent, e.thresholds.MemHigh, e.state.MemAlert, e.memBelow, e.debounce)
	return e.state
}

// State returns the most recently evaluated alert state.
func (e *Evaluator) State() State {
	return e.state
}

// step advances one metric's debounced alert flag.
func step(value, high float64, active bool, below, debounce int) (bool, int) {
	if value > high {
		return true, 0
	}
	below++
	if active && below < debounce {
		return true, below
	}
	return false, below
}
