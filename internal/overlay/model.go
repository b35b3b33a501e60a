package overlay

import (
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sirbread/tarrow/internal/alert"
	"github.com/sirbread/tarrow/internal/hotkey"
	"github.com/sirbread/tarrow/internal/logger"
	"github.com/sirbread/tarrow/internal/settings"
	"github.com/sirbread/tarrow/internal/stats"
)

// Key bindings as constants for consistency. These are the reserved
// keys settings.Validate refuses as hotkey bindings.
const (
	KeyQuit       = "q"
	KeyQuitAlt    = "ctrl+c"
	KeyToggleMode = "m"
)

// pulseInterval is the alert pulse animation frame rate.
const pulseInterval = 500 * time.Millisecond

// SettingsSaver persists the settings record. Satisfied by
// settings.Store; tests substitute a spy.
type SettingsSaver interface {
	Save(settings.Settings) error
}

// snapshotMsg carries a new snapshot from the sampler channel.
type snapshotMsg stats.Snapshot

// hotkeyMsg carries a hotkey edge from the listener channel.
type hotkeyMsg hotkey.Event

// pulseTickMsg advances the alert pulse animation.
type pulseTickMsg time.Time

// settingsSavedMsg reports the outcome of an async save.
type settingsSavedMsg struct{ err error }

// SettingsAppliedMsg delivers a complete replacement settings record,
// the settings dialog collaborator's single apply call.
type SettingsAppliedMsg struct {
	Settings settings.Settings
}

// ModelConfig wires the model's collaborators.
type ModelConfig struct {
	Settings  settings.Settings
	Store     SettingsSaver
	Sampler   *stats.Sampler
	Snapshots <-chan stats.Snapshot
	Hotkeys   <-chan hotkey.Event
	Listener  *hotkey.TerminalListener
	// PeekAvailable is false when hotkey registration failed; the
	// overlay runs without global peek.
	PeekAvailable bool
	Log           logger.Logger
}

// Model is the Bubble Tea model for the overlay. It is the single
// consumer of all three producer streams: snapshots, pointer events,
// and hotkey edges. All state mutation happens on the UI loop.
type Model struct {
	machine   *Machine
	settings  settings.Settings
	store     SettingsSaver
	sampler   *stats.Sampler
	listener  *hotkey.TerminalListener
	evaluator *alert.Evaluator
	history   *History
	log       logger.Logger

	snapshots <-chan stats.Snapshot
	hotkeys   <-chan hotkey.Event

	latest      stats.Snapshot
	hasSnapshot bool
	alerts      alert.State

	width  int
	height int

	pulseOn       bool
	peekAvailable bool
	quitting      bool

	// Viewport scrolls the detail panel when it exceeds the screen.
	detailViewport viewport.Model
	viewportReady  bool
	useViewport    bool
}

// NewModel creates the overlay model from loaded settings and wired
// collaborators.
func NewModel(cfg ModelConfig) Model {
	log := cfg.Log
	if log == nil {
		log = logger.Noop()
	}
	thresholds := alert.Thresholds{
		CPUHigh: cfg.Settings.CPUHighPercent,
		MemHigh: cfg.Settings.MemHighPercent,
	}
	return Model{
		machine:       NewMachine(cfg.Settings.ViewMode, cfg.Settings.Position),
		settings:      cfg.Settings,
		store:         cfg.Store,
		sampler:       cfg.Sampler,
		listener:      cfg.Listener,
		evaluator:     alert.NewEvaluator(thresholds, alert.DefaultDebounceTicks),
		history:       NewHistory(DefaultHistorySize),
		log:           log,
		snapshots:     cfg.Snapshots,
		hotkeys:       cfg.Hotkeys,
		peekAvailable: cfg.PeekAvailable,
	}
}

// State exposes the active overlay state, for tests and the CLI.
func (m Model) State() State { return m.machine.State() }

// Settings returns the current settings record including the live
// position, the record a graceful shutdown persists.
func (m Model) Settings() settings.Settings {
	s := m.settings.Clone()
	s.Position = m.machine.Position()
	return s
}

// Init arms the producer polls and the pulse timer.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		waitSnapshot(m.snapshots),
		waitHotkey(m.hotkeys),
		pulseTick(),
	)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.clampPosition()
		if !m.viewportReady {
			m.detailViewport = viewport.New(m.width, maxInt(1, m.height-1))
			m.viewportReady = true
		} else {
			m.detailViewport.Width = m.width
			m.detailViewport.Height = maxInt(1, m.height-1)
		}
		m.syncViewport()

	case snapshotMsg:
		m.latest = stats.Snapshot(msg)
		m.hasSnapshot = true
		m.alerts = m.evaluator.Evaluate(m.latest)
		m.history.Push(m.latest)
		m.syncViewport()
		return m, waitSnapshot(m.snapshots)

	case hotkeyMsg:
		switch msg.Kind {
		case hotkey.KindDown:
			m.machine.HotkeyDown()
		case hotkey.KindUp:
			m.machine.HotkeyUp()
		}
		m.syncViewport()
		return m, waitHotkey(m.hotkeys)

	case pulseTickMsg:
		m.pulseOn = !m.pulseOn
		return m, pulseTick()

	case SettingsAppliedMsg:
		return m.applySettings(msg.Settings)

	case settingsSavedMsg:
		if msg.err != nil {
			m.log.Warn("[overlay] position save failed: %v", msg.err)
		}
	}

	return m, nil
}

// View renders the overlay at its anchor position.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	frame := m.frame()
	widget := RenderWidget(frame)
	if m.useViewport && m.viewportReady && m.machine.DetailVisible() {
		widget = m.detailViewport.View()
	}

	pos := m.machine.Position()
	return PlaceAt(widget, pos.X, pos.Y)
}

// frame assembles the render input from current state.
func (m Model) frame() Frame {
	s := m.settings
	s.Position = m.machine.Position()
	return Frame{
		State:         m.machine.State(),
		Mode:          m.machine.Mode(),
		Snapshot:      m.latest,
		HasSnapshot:   m.hasSnapshot,
		Alerts:        m.alerts,
		Settings:      s,
		History:       m.history,
		PulseOn:       m.pulseOn,
		PeekAvailable: m.peekAvailable,
		ScreenWidth:   m.width,
		ScreenHeight:  m.height,
	}
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	// Raw input is forwarded to the hotkey listener first; the
	// renderer/UI makes no peek decision itself.
	if m.listener != nil && m.listener.Feed(key) {
		return m, nil
	}

	switch key {
	case KeyQuit, KeyQuitAlt:
		m.quitting = true
		return m, tea.Quit

	case KeyToggleMode:
		target := settings.ModeHud
		if m.machine.Mode() == settings.ModeHud {
			target = settings.ModeArrow
		}
		if m.machine.SetMode(target) {
			m.settings.ViewMode = target
		}
	}

	return m, nil
}

func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	pos := settings.Position{X: msg.X, Y: msg.Y}

	// Mid-drag, only pointer motion and the release are honored.
	if m.machine.State() == StateDragging {
		switch msg.Action {
		case tea.MouseActionMotion:
			m.machine.DragMove(m.clamped(pos))
		case tea.MouseActionRelease:
			if m.machine.RightClickUp(m.dropPosition(pos)) == EffectSavePosition {
				m.settings.Position = m.machine.Position()
				return m, m.saveCmd()
			}
		}
		return m, nil
	}

	inside := m.hitTest(msg.X, msg.Y)
	if inside && !m.machine.PointerInside() {
		m.machine.PointerEnter()
	} else if !inside && m.machine.PointerInside() {
		m.machine.PointerLeave()
	}

	if msg.Action == tea.MouseActionPress {
		switch msg.Button {
		case tea.MouseButtonLeft:
			if inside {
				m.machine.LeftClick()
			}
		case tea.MouseButtonRight:
			if inside {
				m.machine.RightClickDown()
			}
		case tea.MouseButtonWheelUp:
			if m.machine.DetailVisible() && m.viewportReady {
				m.detailViewport.ScrollUp(1)
			}
		case tea.MouseButtonWheelDown:
			if m.machine.DetailVisible() && m.viewportReady {
				m.detailViewport.ScrollDown(1)
			}
		}
	}

	m.syncViewport()
	return m, nil
}

// hitTest reports whether screen cell (x, y) falls on the widget.
func (m Model) hitTest(x, y int) bool {
	w, h := WidgetSize(m.frame())
	pos := m.machine.Position()
	return x >= pos.X && x < pos.X+w && y >= pos.Y && y < pos.Y+h
}

// clamped keeps a position inside the screen bounds.
func (m Model) clamped(pos settings.Position) settings.Position {
	s := m.settings
	s.Position = pos
	s.ClampPosition(m.width, m.height)
	return s.Position
}

func (m *Model) clampPosition() {
	m.machine.SetPosition(m.clamped(m.machine.Position()))
}

// dropPosition resolves where a drag settles. The arrow docks to the
// nearest screen edge; the HUD stays wherever it was dropped.
func (m Model) dropPosition(pos settings.Position) settings.Position {
	pos = m.clamped(pos)
	if m.machine.Mode() != settings.ModeArrow || m.width <= 0 || m.height <= 0 {
		return pos
	}
	return snapToEdge(pos, m.width, m.height)
}

// snapToEdge moves a position onto the closest screen edge, keeping
// the coordinate along that edge.
func snapToEdge(pos settings.Position, width, height int) settings.Position {
	distLeft := pos.X
	distRight := width - 1 - pos.X
	distTop := pos.Y
	distBottom := height - 1 - pos.Y

	min := distLeft
	for _, d := range []int{distRight, distTop, distBottom} {
		if d < min {
			min = d
		}
	}

	switch min {
	case distLeft:
		pos.X = 0
	case distRight:
		pos.X = width - 1
	case distTop:
		pos.Y = 0
	default:
		pos.Y = height - 1
	}
	return pos
}

// syncViewport routes the detail panel through the viewport when it
// would not fit below the anchor.
func (m *Model) syncViewport() {
	if !m.viewportReady || !m.machine.DetailVisible() {
		m.useViewport = false
		return
	}
	widget := RenderWidget(m.frame())
	available := m.height - m.machine.Position().Y
	if available > 0 && lipgloss.Height(widget) > available {
		m.detailViewport.Height = available
		m.detailViewport.SetContent(widget)
		m.useViewport = true
	} else {
		m.useViewport = false
	}
}

// saveCmd persists the settings record asynchronously so disk I/O
// never blocks the render loop. Triggered only on drag-end; the
// graceful-shutdown save happens after the program exits.
func (m Model) saveCmd() tea.Cmd {
	s := m.Settings()
	store := m.store
	return func() tea.Msg {
		if store == nil {
			return nil
		}
		return settingsSavedMsg{err: store.Save(s)}
	}
}

// applySettings consumes a complete replacement record from the
// settings dialog, re-applying interval, thresholds, and binding live.
func (m Model) applySettings(s settings.Settings) (tea.Model, tea.Cmd) {
	if err := s.Validate(); err != nil {
		m.log.Warn("[overlay] rejected invalid settings: %v", err)
		return m, nil
	}

	prevBinding := m.settings.HotkeyBinding
	prevMode := m.settings.ViewMode
	m.settings = s.Clone()
	m.clampPosition()

	if m.sampler != nil {
		m.sampler.SetInterval(time.Duration(s.UpdateIntervalMS) * time.Millisecond)
	}
	m.evaluator.SetThresholds(alert.Thresholds{CPUHigh: s.CPUHighPercent, MemHigh: s.MemHighPercent})

	if m.listener != nil && s.HotkeyBinding != prevBinding {
		if err := m.listener.Rebind(s.HotkeyBinding); err != nil {
			// Binding conflict is surfaced, never fatal: the overlay
			// keeps running with the previous binding.
			m.log.Warn("[overlay] hotkey rebind failed: %v", err)
			m.settings.HotkeyBinding = prevBinding
		} else {
			m.peekAvailable = true
		}
	}

	if s.ViewMode != prevMode && !m.machine.SetMode(s.ViewMode) {
		// Mode switches are only permitted while Collapsed.
		m.settings.ViewMode = prevMode
	}

	m.syncViewport()
	return m, nil
}

func waitSnapshot(ch <-chan stats.Snapshot) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		s, ok := <-ch
		if !ok {
			return nil
		}
		return snapshotMsg(s)
	}
}

func waitHotkey(ch <-chan hotkey.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		e, ok := <-ch
		if !ok {
			return nil
		}
		return hotkeyMsg(e)
	}
}

func pulseTick() tea.Cmd {
	return tea.Tick(pulseInterval, func(t time.Time) tea.Msg {
		return pulseTickMsg(t)
	})
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}
