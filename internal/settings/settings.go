// Package settings holds the persisted user settings record and the
// store that loads and atomically saves it.
package settings

import (
	"fmt"

	"github.com/sirbread/tarrow/internal/stats"
)

// ViewMode selects the overlay's presentation mode.
type ViewMode string

const (
	// ModeArrow is the edge-docked minimal view. Supports pinning.
	ModeArrow ViewMode = "arrow"
	// ModeHud is the freely positioned compact panel. No pinning.
	ModeHud ViewMode = "hud"
)

// Valid reports whether m is a known view mode.
func (m ViewMode) Valid() bool {
	return m == ModeArrow || m == ModeHud
}

// Position is the overlay anchor corner in screen (cell) coordinates.
type Position struct {
	X int `json:"x" mapstructure:"x"`
	Y int `json:"y" mapstructure:"y"`
}

// Bounds on user-tunable values, mirroring the settings dialog ranges.
const (
	MinOpacity    = 0.30
	MaxOpacity    = 1.00
	MinIntervalMS = 500
	MaxIntervalMS = 10000
)

// reservedBindings are keys the overlay UI loop consumes itself (quit
// and mode toggle). A hotkey binding equal to one would shadow it, so
// such bindings are rejected outright.
var reservedBindings = map[string]bool{
	"q":      true,
	"ctrl+c": true,
	"m":      true,
}

// BindingReserved reports whether a combo collides with a built-in key.
func BindingReserved(combo string) bool {
	return reservedBindings[combo]
}

// Settings is the complete user-tunable record. It is loaded once at
// startup, replaced wholesale by the settings dialog, and written back
// only on drag-end and graceful shutdown.
type Settings struct {
	ViewMode         ViewMode        `json:"view_mode" mapstructure:"view_mode"`
	Position         Position        `json:"position" mapstructure:"position"`
	Opacity          float64         `json:"opacity" mapstructure:"opacity"`
	UpdateIntervalMS int             `json:"update_interval_ms" mapstructure:"update_interval_ms"`
	VisibleStats     []stats.StatKind `json:"visible_stats" mapstructure:"visible_stats"`
	HotkeyBinding    string          `json:"hotkey_binding" mapstructure:"hotkey_binding"`

	// HUDPulse enables the alert pulse in HUD mode. The arrow always
	// pulses on alert; for the HUD it is user-configurable.
	HUDPulse bool `json:"hud_pulse" mapstructure:"hud_pulse"`

	CPUHighPercent float64 `json:"cpu_high_percent" mapstructure:"cpu_high_percent"`
	MemHighPercent float64 `json:"mem_high_percent" mapstructure:"mem_high_percent"`
}

// Default returns the settings used on first run or when the persisted
// record is unreadable.
func Default() Settings {
	return Settings{
		ViewMode:         ModeArrow,
		Position:         Position{X: 0, Y: 0},
		Opacity:          0.95,
		UpdateIntervalMS: 2000,
		VisibleStats:     stats.AllKinds(),
		HotkeyBinding:    "ctrl+p",
		HUDPulse:         false,
		CPUHighPercent:   90,
		MemHighPercent:   90,
	}
}

// Validate checks that the record's values are within range. An
// out-of-range persisted record is treated as corrupt by the store.
func (s Settings) Validate() error {
	if !s.ViewMode.Valid() {
		return fmt.Errorf("invalid view_mode %q", s.ViewMode)
	}
	if s.Opacity < MinOpacity || s.Opacity > MaxOpacity {
		return fmt.Errorf("opacity %.2f out of range [%.2f, %.2f]", s.Opacity, MinOpacity, MaxOpacity)
	}
	if s.UpdateIntervalMS < MinIntervalMS || s.UpdateIntervalMS > MaxIntervalMS {
		return fmt.Errorf("update_interval_ms %d out of range [%d, %d]", s.UpdateIntervalMS, MinIntervalMS, MaxIntervalMS)
	}
	for _, k := range s.VisibleStats {
		if !k.Valid() {
			return fmt.Errorf("unknown stat kind %q in visible_stats", k)
		}
	}
	if s.HotkeyBinding == "" {
		return fmt.Errorf("hotkey_binding must not be empty")
	}
	if BindingReserved(s.HotkeyBinding) {
		return fmt.Errorf("hotkey_binding %q collides with a built-in key", s.HotkeyBinding)
	}
	if s.CPUHighPercent <= 0 || s.CPUHighPercent > 100 {
		return fmt.Errorf("cpu_high_percent %.1f out of range (0, 100]", s.CPUHighPercent)
	}
	if s.MemHighPercent <= 0 || s.MemHighPercent > 100 {
		return fmt.Errorf("mem_high_percent %.1f out of range (0, 100]", s.MemHighPercent)
	}
	return nil
}

// ClampPosition keeps the anchor inside the visible bounds of a
// width x height screen. Zero or negative bounds leave it unchanged
// (size not known yet).
func (s *Settings) ClampPosition(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	if s.Position.X < 0 {
		s.Position.X = 0
	}
	if s.Position.Y < 0 {
		s.Position.Y = 0
	}
	if s.Position.X >= width {
		s.Position.X = width - 1
	}
	if s.Position.Y >= height {
		s.Position.Y = height - 1
	}
}

// ShowsStat reports whether the given stat kind should be rendered.
func (s Settings) ShowsStat(kind stats.StatKind) bool {
	for _, k := range s.VisibleStats {
		if k == kind {
			return true
		}
	}
	return false
}

// Clone deep-copies the record so a dialog can edit a replacement
// without mutating the live settings.
func (s Settings) Clone() Settings {
	out := s
	out.VisibleStats = append([]stats.StatKind(nil), s.VisibleStats...)
	return out
}
