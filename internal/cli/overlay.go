package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sirbread/tarrow/internal/errors"
	"github.com/sirbread/tarrow/internal/hotkey"
	"github.com/sirbread/tarrow/internal/logger"
	"github.com/sirbread/tarrow/internal/overlay"
	"github.com/sirbread/tarrow/internal/settings"
	"github.com/sirbread/tarrow/internal/stats"
)

// hotkeyEventBuffer bounds the hotkey handoff queue to the UI loop.
const hotkeyEventBuffer = 8

// overlayCommand starts the overlay and blocks until quit.
func overlayCommand(configPath, intervalOverride, modeOverride string) error {
	log := logger.NewEnvLogger("[tarrow]")

	store, err := settings.NewStore(configPath, log)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot locate the settings file",
			"Pass an explicit path with --config.")
	}

	// Absent or corrupt settings are never fatal; defaults substitute.
	loaded := store.LoadOrDefault()

	if intervalOverride != "" {
		d, err := time.ParseDuration(intervalOverride)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				fmt.Sprintf("'%s' doesn't look like a valid interval", intervalOverride),
				"Try something like 1s, 2s, or 500ms.")
		}
		ms := int(d.Milliseconds())
		if ms < settings.MinIntervalMS || ms > settings.MaxIntervalMS {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Interval %s out of range", intervalOverride),
				fmt.Sprintf("Use between %dms and %dms.", settings.MinIntervalMS, settings.MaxIntervalMS))
		}
		loaded.UpdateIntervalMS = ms
	}

	if modeOverride != "" {
		mode := settings.ViewMode(modeOverride)
		if !mode.Valid() {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Unknown view mode '%s'", modeOverride),
				"Use 'arrow' or 'hud'.")
		}
		loaded.ViewMode = mode
	}

	reader := stats.NewSystemReader()
	sampler := stats.NewSampler(reader, time.Duration(loaded.UpdateIntervalMS)*time.Millisecond, log)

	listener := hotkey.NewTerminalListener(log)
	events := make(chan hotkey.Event, hotkeyEventBuffer)
	peekAvailable := true
	if err := listener.Register(loaded.HotkeyBinding,
		emitHotkey(events, hotkey.KindDown, loaded.HotkeyBinding),
		emitHotkey(events, hotkey.KindUp, loaded.HotkeyBinding),
	); err != nil {
		// Binding conflict: the overlay runs without global peek.
		log.Warn("%v", err)
		peekAvailable = false
	}

	model := overlay.NewModel(overlay.ModelConfig{
		Settings:      loaded,
		Store:         store,
		Sampler:       sampler,
		Snapshots:     sampler.Snapshots(),
		Hotkeys:       events,
		Listener:      listener,
		PeekAvailable: peekAvailable,
		Log:           log,
	})

	sampler.Start()

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseAllMotion())
	final, runErr := p.Run()

	// Shutdown ordering: stop producers, then save. Stop guarantees no
	// further events after it returns.
	sampler.Stop()
	listener.Unregister()

	if runErr != nil {
		return errors.WrapWithCode(runErr, errors.ErrDisplay,
			"Cannot run the overlay display",
			"Run tarrow from an interactive terminal.")
	}

	if m, ok := final.(overlay.Model); ok {
		if err := store.Save(m.Settings()); err != nil {
			// A failed shutdown save degrades to a warning; the overlay
			// already exited cleanly.
			log.Warn("[tarrow] settings save on exit failed: %v", err)
		}
	}

	return nil
}

// emitHotkey returns an edge callback that enqueues without blocking;
// a full queue drops the event rather than stalling the hook context.
func emitHotkey(events chan<- hotkey.Event, kind hotkey.EventKind, combo string) func() {
	return func() {
		select {
		case events <- hotkey.Event{Kind: kind, Combo: combo, At: time.Now()}:
		default:
		}
	}
}
