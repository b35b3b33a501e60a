package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sirbread/tarrow/internal/errors"
	"github.com/sirbread/tarrow/internal/logger"
	"github.com/sirbread/tarrow/internal/settings"
)

// settingsCmd edits the persisted settings record interactively.
var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Edit overlay settings",
	Long: `Open the interactive settings dialog.

Edits the complete settings record: view mode, visible stats, opacity,
update interval, alert thresholds, and the peek hotkey. A running overlay
picks the changes up on its next start.

Examples:
  tarrow settings
  tarrow settings --config /tmp/tarrow.json`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return settingsCommand(configFlag)
	},
}

func settingsCommand(configPath string) error {
	log := logger.NewEnvLogger("[tarrow]")

	store, err := settings.NewStore(configPath, log)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Cannot locate the settings file",
			"Pass an explicit path with --config.")
	}

	current := store.LoadOrDefault()

	edited, confirmed, err := settings.RunDialog(current)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Settings dialog failed",
			"Run tarrow settings from an interactive terminal.")
	}
	if !confirmed {
		fmt.Println("Cancelled.")
		return nil
	}

	if err := store.Save(edited); err != nil {
		return errors.WrapWithCode(err, errors.ErrPersist,
			"Failed to save settings",
			fmt.Sprintf("Check that %s is writable.", store.Path()))
	}

	fmt.Printf("Saved %s\n", store.Path())
	return nil
}
