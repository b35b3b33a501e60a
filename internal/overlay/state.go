package overlay

import "github.com/sirbread/tarrow/internal/settings"

// State is the overlay's visual state. Exactly one state is active at
// any instant. States are transient and never persisted.
type State int

const (
	// StateCollapsed shows only the minimal arrow or HUD panel.
	StateCollapsed State = iota
	// StateHovered shows the detail overlay while the pointer is over
	// the widget; reverts to Collapsed when the pointer leaves.
	StateHovered
	// StatePinned keeps the detail overlay shown regardless of pointer
	// position. Arrow mode only.
	StatePinned
	// StatePeeking forces the detail overlay while the hotkey is held;
	// releasing restores the state active before the press.
	StatePeeking
	// StateDragging follows the pointer while the right button is held;
	// hover/pin semantics are suppressed until release.
	StateDragging
)

// String returns a human-readable state label.
func (s State) String() string {
	switch s {
	case StateCollapsed:
		return "collapsed"
	case StateHovered:
		return "hovered"
	case StatePinned:
		return "pinned"
	case StatePeeking:
		return "peeking"
	case StateDragging:
		return "dragging"
	default:
		return "unknown"
	}
}

// Effect is a side effect the caller must perform after a transition.
// The machine itself never does I/O.
type Effect int

const (
	EffectNone Effect = iota
	// EffectSavePosition fires exactly once per completed drag.
	EffectSavePosition
)

// Machine fuses pointer, hotkey, and configuration events into a
// single overlay state. It is single-threaded: all methods must be
// called from the UI loop.
type Machine struct {
	state State
	mode  settings.ViewMode

	// prePeek is the one-slot saved state restored when the peek
	// hotkey is released. A dedicated field rather than a reuse of
	// state, so a second down edge cannot peek recursively.
	prePeek State

	pointerInside bool
	position      settings.Position
}

// NewMachine creates a machine in the Collapsed state.
func NewMachine(mode settings.ViewMode, pos settings.Position) *Machine {
	if !mode.Valid() {
		mode = settings.ModeArrow
	}
	return &Machine{state: StateCollapsed, mode: mode, position: pos}
}

// State returns the active overlay state.
func (m *Machine) State() State { return m.state }

// Mode returns the active view mode.
func (m *Machine) Mode() settings.ViewMode { return m.mode }

// Position returns the overlay anchor position.
func (m *Machine) Position() settings.Position { return m.position }

// PointerInside reports whether the pointer was last seen over the widget.
func (m *Machine) PointerInside() bool { return m.pointerInside }

// DetailVisible reports whether the detail overlay should render.
func (m *Machine) DetailVisible() bool {
	switch m.state {
	case StateHovered, StatePinned, StatePeeking:
		return true
	}
	return false
}

// SetPosition moves the anchor directly, e.g. after a screen-bounds clamp.
func (m *Machine) SetPosition(pos settings.Position) {
	m.position = pos
}

// PointerEnter handles the pointer moving onto the widget.
func (m *Machine) PointerEnter() {
	m.pointerInside = true
	switch m.state {
	case StateCollapsed:
		m.state = StateHovered
	case StatePeeking:
		// The underlying state keeps tracking the pointer so release
		// restores what the pointer position implies.
		if m.prePeek == StateCollapsed {
			m.prePeek = StateHovered
		}
	}
}

// PointerLeave handles the pointer moving off the widget.
func (m *Machine) PointerLeave() {
	m.pointerInside = false
	switch m.state {
	case StateHovered:
		m.state = StateCollapsed
	case StatePeeking:
		if m.prePeek == StateHovered {
			m.prePeek = StateCollapsed
		}
	}
}

// LeftClick toggles the pin. Pinning is Arrow-mode only; in Hud mode
// the click is ignored. Dragging and Peeking suppress the toggle.
func (m *Machine) LeftClick() {
	switch m.state {
	case StateHovered:
		if m.mode == settings.ModeArrow {
			m.state = StatePinned
		}
	case StatePinned:
		if m.pointerInside {
			m.state = StateHovered
		} else {
			m.state = StateCollapsed
		}
	}
}

// HotkeyDown enters Peeking from any state except Dragging, saving the
// prior state. A repeated down edge while already Peeking is ignored.
func (m *Machine) HotkeyDown() {
	if m.state == StateDragging || m.state == StatePeeking {
		return
	}
	m.prePeek = m.state
	m.state = StatePeeking
}

// HotkeyUp restores exactly the state saved at the down edge,
// including an active pin. Ignored unless Peeking.
func (m *Machine) HotkeyUp() {
	if m.state != StatePeeking {
		return
	}
	m.state = m.prePeek
	m.prePeek = StateCollapsed
}

// RightClickDown starts a drag. Accepted from Collapsed, Hovered, and
// Pinned; the pin is discarded for rendering purposes during the drag.
func (m *Machine) RightClickDown() {
	switch m.state {
	case StateCollapsed, StateHovered, StatePinned:
		m.state = StateDragging
		m.prePeek = StateCollapsed
	}
}

// DragMove updates the dragged position. Ignored unless Dragging.
func (m *Machine) DragMove(pos settings.Position) {
	if m.state != StateDragging {
		return
	}
	m.position = pos
}

// RightClickUp ends the drag at the given position, transitioning to
// Collapsed. Returns EffectSavePosition exactly once per completed
// drag; any other state returns EffectNone.
func (m *Machine) RightClickUp(pos settings.Position) Effect {
	if m.state != StateDragging {
		return EffectNone
	}
	m.position = pos
	m.state = StateCollapsed
	return EffectSavePosition
}

// SetMode switches between Arrow and Hud. This is a configuration
// action, not an event transition: it is rejected unless the overlay
// is Collapsed. Switching discards any saved pin state.
func (m *Machine) SetMode(mode settings.ViewMode) bool {
	if m.state != StateCollapsed || !mode.Valid() {
		return false
	}
	m.mode = mode
	m.state = StateCollapsed
	m.prePeek = StateCollapsed
	return true
}
