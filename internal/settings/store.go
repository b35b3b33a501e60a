package settings

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"

	"github.com/sirbread/tarrow/internal/logger"
	"github.com/sirbread/tarrow/internal/stats"
)

const (
	// ConfigDir is the directory under the user home for tarrow state.
	ConfigDir = ".config/tarrow"
	// SettingsFileName is the persisted settings record.
	SettingsFileName = "settings.json"
)

// Sentinel errors for the two non-fatal load failures. Callers
// substitute defaults for both; only the corrupt case is logged.
var (
	ErrNotFound = errors.New("settings file not found")
	ErrCorrupt  = errors.New("settings file corrupt")
)

// Store loads and saves the settings record at a fixed user-local path.
type Store struct {
	path string
	log  logger.Logger
}

// NewStore creates a store for the given path. An empty path uses the
// default user-local location.
func NewStore(path string, log logger.Logger) (*Store, error) {
	if log == nil {
		log = logger.Noop()
	}
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot determine home directory: %w", err)
		}
		path = filepath.Join(home, ConfigDir, SettingsFileName)
	}
	return &Store{path: path, log: log}, nil
}

// Path returns the file the store reads and writes.
func (st *Store) Path() string {
	return st.path
}

// Load reads the persisted record. Returns ErrNotFound on first run
// and ErrCorrupt (wrapped with the parse detail) when the file is
// unreadable or holds out-of-range values.
func (st *Store) Load() (Settings, error) {
	if _, err := os.Stat(st.path); err != nil {
		if os.IsNotExist(err) {
			return Settings{}, ErrNotFound
		}
		return Settings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	v := viper.New()
	v.SetConfigFile(st.path)
	v.SetConfigType("json")
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	var s Settings
	if err := v.Unmarshal(&s); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	if err := s.Validate(); err != nil {
		return Settings{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}

	return s, nil
}

// LoadOrDefault loads the record, substituting defaults when it is
// absent or corrupt. Corruption is logged, never fatal.
func (st *Store) LoadOrDefault() Settings {
	s, err := st.Load()
	switch {
	case err == nil:
		return s
	case errors.Is(err, ErrNotFound):
		st.log.Debug("[settings] no settings file at %s, using defaults", st.path)
	default:
		st.log.Warn("[settings] %v, using defaults", err)
	}
	return Default()
}

// Save atomically writes the record: marshal, write to a temp file in
// the same directory, rename over the target. A crash mid-save never
// corrupts the persisted state.
func (st *Store) Save(s Settings) error {
	if err := s.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid settings: %w", err)
	}

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}
	data = append(data, '\n')

	dir := filepath.Dir(st.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create settings directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, SettingsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp settings file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write temp settings file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp settings file: %w", err)
	}

	if err := os.Rename(tmpName, st.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("rename settings file: %w", err)
	}

	st.log.Debug("[settings] saved %s", st.path)
	return nil
}

// setDefaults registers a default for every field so a partial file
// still unmarshals into a complete record.
func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("view_mode", string(d.ViewMode))
	v.SetDefault("position.x", d.Position.X)
	v.SetDefault("position.y", d.Position.Y)
	v.SetDefault("opacity", d.Opacity)
	v.SetDefault("update_interval_ms", d.UpdateIntervalMS)
	v.SetDefault("visible_stats", kindsToStrings(d.VisibleStats))
	v.SetDefault("hotkey_binding", d.HotkeyBinding)
	v.SetDefault("hud_pulse", d.HUDPulse)
	v.SetDefault("cpu_high_percent", d.CPUHighPercent)
	v.SetDefault("mem_high_percent", d.MemHighPercent)
}

func kindsToStrings(kinds []stats.StatKind) []string {
	out := make([]string, len(kinds))
	for i, k := range kinds {
		out[i] = string(k)
	}
	return out
}
