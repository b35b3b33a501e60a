package settings

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/huh"

	"github.com/sirbread/tarrow/internal/stats"
)

// RunDialog presents the settings dialog for the given record and
// returns the complete replacement. The second return is false when
// the user cancelled. The caller applies the replacement via a single
// Apply-style call; the dialog itself never touches live components.
func RunDialog(current Settings) (Settings, bool, error) {
	edited := current.Clone()

	mode := string(edited.ViewMode)
	opacity := fmt.Sprintf("%.2f", edited.Opacity)
	interval := strconv.Itoa(edited.UpdateIntervalMS)
	cpuHigh := fmt.Sprintf("%.0f", edited.CPUHighPercent)
	memHigh := fmt.Sprintf("%.0f", edited.MemHighPercent)
	visible := kindsToStrings(edited.VisibleStats)
	binding := edited.HotkeyBinding
	hudPulse := edited.HUDPulse
	confirmed := true

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("View mode").
				Options(
					huh.NewOption("Arrow (edge-docked)", string(ModeArrow)),
					huh.NewOption("HUD (movable panel)", string(ModeHud)),
				).
				Value(&mode),
			huh.NewMultiSelect[string]().
				Title("Visible stats").
				Options(
					huh.NewOption("CPU", string(stats.StatCPU)),
					huh.NewOption("Memory", string(stats.StatMemory)),
					huh.NewOption("Disk", string(stats.StatDisk)),
					huh.NewOption("Network", string(stats.StatNetwork)),
					huh.NewOption("Temperatures", string(stats.StatTemps)),
					huh.NewOption("Top processes", string(stats.StatProcesses)),
				).
				Value(&visible),
		),
		huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Opacity (%.2f - %.2f)", MinOpacity, MaxOpacity)).
				Value(&opacity).
				Validate(validateFloat(MinOpacity, MaxOpacity)),
			huh.NewInput().
				Title(fmt.Sprintf("Update interval ms (%d - %d)", MinIntervalMS, MaxIntervalMS)).
				Value(&interval).
				Validate(validateInt(MinIntervalMS, MaxIntervalMS)),
			huh.NewInput().
				Title("CPU alert threshold %").
				Value(&cpuHigh).
				Validate(validateFloat(1, 100)),
			huh.NewInput().
				Title("Memory alert threshold %").
				Value(&memHigh).
				Validate(validateFloat(1, 100)),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Peek hotkey").
				Description("Key combination held to force the detail overlay").
				Value(&binding).
				Validate(func(s string) error {
					if s == "" {
						return fmt.Errorf("binding must not be empty")
					}
					if BindingReserved(s) {
						return fmt.Errorf("%q is a built-in key", s)
					}
					return nil
				}),
			huh.NewConfirm().
				Title("Pulse HUD on alerts?").
				Value(&hudPulse),
			huh.NewConfirm().
				Title("Save settings?").
				Value(&confirmed),
		),
	)

	if err := form.Run(); err != nil {
		return current, false, err
	}
	if !confirmed {
		return current, false, nil
	}

	edited.ViewMode = ViewMode(mode)
	edited.Opacity, _ = strconv.ParseFloat(opacity, 64)
	edited.UpdateIntervalMS, _ = strconv.Atoi(interval)
	edited.CPUHighPercent, _ = strconv.ParseFloat(cpuHigh, 64)
	edited.MemHighPercent, _ = strconv.ParseFloat(memHigh, 64)
	edited.HotkeyBinding = binding
	edited.HUDPulse = hudPulse
	edited.VisibleStats = make([]stats.StatKind, 0, len(visible))
	for _, v := range visible {
		edited.VisibleStats = append(edited.VisibleStats, stats.StatKind(v))
	}

	if err := edited.Validate(); err != nil {
		return current, false, err
	}
	return edited, true, nil
}

func validateFloat(min, max float64) func(string) error {
	return func(s string) error {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("not a number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %.2f and %.2f", min, max)
		}
		return nil
	}
}

func validateInt(min, max int) func(string) error {
	return func(s string) error {
		v, err := strconv.Atoi(s)
		if err != nil {
			return fmt.Errorf("not a whole number")
		}
		if v < min || v > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}
