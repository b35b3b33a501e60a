// Package cli wires the tarrow commands: the root command runs the
// overlay, with settings and version subcommands.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Root command flags
var (
	configFlag   string
	intervalFlag string
	modeFlag     string
)

// rootCmd starts the overlay with loaded-or-default settings.
var rootCmd = &cobra.Command{
	Use:   "tarrow",
	Short: "Always-on-top system stats overlay",
	Long: `tarrow displays live system statistics (CPU, memory, temperatures,
top processes) in a small always-on-top overlay.

Two presentation modes are available: a minimal edge-docked arrow and a
movable compact panel (HUD). Hover over the widget for details, left-click
to pin the detail view (arrow mode), hold the peek hotkey to force it, and
right-click-drag to move the overlay. Position and settings persist across
runs.

Examples:
  tarrow
  tarrow --mode hud
  tarrow --interval 1s`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return overlayCommand(configFlag, intervalFlag, modeFlag)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFlag, "config", "", "settings file path (default ~/.config/tarrow/settings.json)")
	rootCmd.Flags().StringVar(&intervalFlag, "interval", "", "sampling interval for this session (e.g., 1s, 500ms)")
	rootCmd.Flags().StringVar(&modeFlag, "mode", "", "view mode for this session (arrow or hud)")

	rootCmd.AddCommand(settingsCmd)
	rootCmd.AddCommand(versionCmd)
}

// Execute runs the root command. Startup failures exit non-zero with
// the structured error; a graceful quit exits 0.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
