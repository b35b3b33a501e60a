package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Structure(t *testing.T) {
	assert.Equal(t, "tarrow", rootCmd.Use)
	assert.True(t, rootCmd.SilenceUsage, "usage noise on runtime errors is suppressed")
	assert.NotNil(t, rootCmd.RunE, "the bare command runs the overlay")
}

func TestRootCommand_Subcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, sub := range rootCmd.Commands() {
		names[sub.Name()] = true
	}

	assert.True(t, names["settings"])
	assert.True(t, names["version"])
}

func TestRootCommand_Flags(t *testing.T) {
	require.NotNil(t, rootCmd.PersistentFlags().Lookup("config"))
	require.NotNil(t, rootCmd.Flags().Lookup("interval"))
	require.NotNil(t, rootCmd.Flags().Lookup("mode"))
}

func TestOverlayCommand_RejectsBadOverrides(t *testing.T) {
	tests := []struct {
		name     string
		interval string
		mode     string
	}{
		{"unparseable interval", "banana", ""},
		{"interval too short", "10ms", ""},
		{"interval too long", "5m", ""},
		{"unknown mode", "", "docked"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := overlayCommand(t.TempDir()+"/settings.json", tt.interval, tt.mode)
			assert.Error(t, err)
		})
	}
}
