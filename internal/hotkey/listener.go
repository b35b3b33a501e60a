// Package hotkey abstracts global hotkey hooking behind a capability
// interface so the view state machine never depends on a specific
// hook mechanism. The terminal-backed implementation synthesizes
// down/up edge events from key autorepeat, since terminals deliver
// presses but no key-release events.
package hotkey

import (
	"sync"
	"time"

	"github.com/sirbread/tarrow/internal/errors"
	"github.com/sirbread/tarrow/internal/logger"
)

// EventKind is the edge type of a hotkey event.
type EventKind int

const (
	// KindDown fires once when the combo is first pressed.
	KindDown EventKind = iota
	// KindUp fires once when the combo is released.
	KindUp
)

// String returns a human-readable kind label.
func (k EventKind) String() string {
	if k == KindDown {
		return "down"
	}
	return "up"
}

// Event is one hotkey edge delivered to the state machine.
type Event struct {
	Kind  EventKind
	Combo string
	At    time.Time
}

// Listener is the global hotkey capability. Implementations deliver
// only edge events, never repeated "held" events. Unregister is
// idempotent and guarantees no callback fires after it returns.
type Listener interface {
	Register(combo string, onDown, onUp func()) error
	Unregister()
	Rebind(combo string) error
}

// defaultHoldWindow is how long after the last press repeat the combo
// counts as released. Terminal autorepeat is typically 30-60ms apart,
// so anything under this keeps the hold alive.
const defaultHoldWindow = 400 * time.Millisecond

// registry models the OS-level claim on a combination: a second
// registration of the same combo in the process is refused the same
// way the OS refuses an already-claimed global hotkey.
var registry = struct {
	mu      sync.Mutex
	claimed map[string]bool
}{claimed: make(map[string]bool)}

func claimCombo(combo string) bool {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	if registry.claimed[combo] {
		return false
	}
	registry.claimed[combo] = true
	return true
}

func releaseCombo(combo string) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	delete(registry.claimed, combo)
}

// TerminalListener implements Listener for a terminal overlay. The UI
// loop forwards raw key strings via Feed; the listener detects the
// bound combo, emits the down edge on first press, and emits the up
// edge when the hold window expires without a repeat.
type TerminalListener struct {
	log        logger.Logger
	holdWindow time.Duration

	mu         sync.Mutex
	combo      string
	onDown     func()
	onUp       func()
	registered bool
	held       bool
	timer      *time.Timer
}

// NewTerminalListener creates a listener with the default hold window.
func NewTerminalListener(log logger.Logger) *TerminalListener {
	if log == nil {
		log = logger.Noop()
	}
	return &TerminalListener{log: log, holdWindow: defaultHoldWindow}
}

// SetHoldWindow overrides the release-detection window. Useful in tests.
func (l *TerminalListener) SetHoldWindow(d time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if d > 0 {
		l.holdWindow = d
	}
}

// Register claims the combo and installs the edge callbacks. Fails
// with a HOTKEY-coded error when the combination is already claimed;
// the overlay keeps running without global peek in that case.
func (l *TerminalListener) Register(combo string, onDown, onUp func()) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.registered {
		return errors.New(errors.ErrHotkey,
			"Hotkey listener already registered",
			"Unregister the current binding before registering a new one, or use Rebind.")
	}
	if combo == "" {
		return errors.New(errors.ErrHotkey,
			"Empty hotkey binding",
			"Choose a key combination in settings.")
	}
	if !claimCombo(combo) {
		return errors.New(errors.ErrHotkey,
			"Hotkey '"+combo+"' is already claimed",
			"Pick a different combination in settings.")
	}

	l.combo = combo
	l.onDown = onDown
	l.onUp = onUp
	l.registered = true
	l.log.Debug("[hotkey] registered %s", combo)
	return nil
}

// Unregister releases the combo. Idempotent; once it returns, no
// further down/up callback will fire.
func (l *TerminalListener) Unregister() {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.registered {
		return
	}
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	releaseCombo(l.combo)
	l.log.Debug("[hotkey] unregistered %s", l.combo)
	l.registered = false
	l.held = false
	l.combo = ""
	l.onDown = nil
	l.onUp = nil
}

// Rebind unregisters the old combination before registering the new
// one. On conflict the old binding is restored and the error returned.
func (l *TerminalListener) Rebind(combo string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.registered {
		return errors.New(errors.ErrHotkey,
			"No binding to rebind",
			"Register a binding first.")
	}
	if combo == l.combo {
		return nil
	}

	old := l.combo
	releaseCombo(old)
	if !claimCombo(combo) {
		// Restore the previous claim so the running overlay keeps its peek key.
		claimCombo(old)
		return errors.New(errors.ErrHotkey,
			"Hotkey '"+combo+"' is already claimed",
			"Pick a different combination in settings.")
	}

	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	if l.held {
		// A rebind mid-hold releases the old combo; the up edge fires
		// so a consumer mid-peek is not stranded.
		l.held = false
		if l.onUp != nil {
			l.onUp()
		}
	}
	l.combo = combo
	l.log.Debug("[hotkey] rebound %s -> %s", old, combo)
	return nil
}

// Combo returns the currently registered combination, or empty.
func (l *TerminalListener) Combo() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.combo
}

// Held reports whether the combo is currently considered held.
func (l *TerminalListener) Held() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held
}

// Feed delivers one raw key string from the UI loop. Returns true if
// the key matched the bound combo and was consumed. The first press
// emits the down edge; repeats extend the hold window.
func (l *TerminalListener) Feed(key string) bool {
	l.mu.Lock()

	if !l.registered || key != l.combo {
		l.mu.Unlock()
		return false
	}

	if l.held {
		l.timer.Reset(l.holdWindow)
		l.mu.Unlock()
		return true
	}

	l.held = true
	l.timer = time.AfterFunc(l.holdWindow, l.expire)
	// Invoked under the lock so Unregister returning means no more
	// callbacks. Callbacks must enqueue and return, never call back in.
	if l.onDown != nil {
		l.onDown()
	}
	l.mu.Unlock()
	return true
}

// expire fires when the hold window lapses without a repeat, which is
// the closest a terminal gets to a key-release event.
func (l *TerminalListener) expire() {
	l.mu.Lock()
	if !l.registered || !l.held {
		l.mu.Unlock()
		return
	}
	l.held = false
	if l.onUp != nil {
		l.onUp()
	}
	l.mu.Unlock()
}
