package settings

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sirbread/tarrow/internal/stats"
)

func TestDefault_IsValid(t *testing.T) {
	d := Default()
	require.NoError(t, d.Validate())

	assert.Equal(t, ModeArrow, d.ViewMode)
	assert.Equal(t, Position{X: 0, Y: 0}, d.Position)
	assert.Equal(t, 0.95, d.Opacity)
	assert.Equal(t, 2000, d.UpdateIntervalMS)
	assert.Equal(t, stats.AllKinds(), d.VisibleStats)
	assert.Equal(t, "ctrl+p", d.HotkeyBinding)
	assert.False(t, d.HUDPulse)
	assert.Equal(t, 90.0, d.CPUHighPercent)
	assert.Equal(t, 90.0, d.MemHighPercent)
}

func TestViewMode_Valid(t *testing.T) {
	assert.True(t, ModeArrow.Valid())
	assert.True(t, ModeHud.Valid())
	assert.False(t, ViewMode("").Valid())
	assert.False(t, ViewMode("docked").Valid())
}

func TestValidate_RejectsOutOfRangeValues(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(s *Settings)
	}{
		{"invalid mode", func(s *Settings) { s.ViewMode = "bogus" }},
		{"opacity too low", func(s *Settings) { s.Opacity = 0.1 }},
		{"opacity too high", func(s *Settings) { s.Opacity = 1.5 }},
		{"interval too short", func(s *Settings) { s.UpdateIntervalMS = 100 }},
		{"interval too long", func(s *Settings) { s.UpdateIntervalMS = 60000 }},
		{"unknown stat kind", func(s *Settings) { s.VisibleStats = []stats.StatKind{"gpu"} }},
		{"empty binding", func(s *Settings) { s.HotkeyBinding = "" }},
		{"binding shadows quit key", func(s *Settings) { s.HotkeyBinding = "q" }},
		{"binding shadows quit chord", func(s *Settings) { s.HotkeyBinding = "ctrl+c" }},
		{"binding shadows mode toggle", func(s *Settings) { s.HotkeyBinding = "m" }},
		{"cpu threshold zero", func(s *Settings) { s.CPUHighPercent = 0 }},
		{"cpu threshold above 100", func(s *Settings) { s.CPUHighPercent = 101 }},
		{"mem threshold negative", func(s *Settings) { s.MemHighPercent = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.Error(t, s.Validate())
		})
	}
}

func TestValidate_AcceptsBoundaryValues(t *testing.T) {
	s := Default()
	s.Opacity = MinOpacity
	s.UpdateIntervalMS = MinIntervalMS
	assert.NoError(t, s.Validate())

	s.Opacity = MaxOpacity
	s.UpdateIntervalMS = MaxIntervalMS
	assert.NoError(t, s.Validate())
}

func TestValidate_EmptyVisibleStatsAllowed(t *testing.T) {
	// Hiding every stat is a legal, if odd, configuration.
	s := Default()
	s.VisibleStats = nil
	assert.NoError(t, s.Validate())
}

func TestBindingReserved(t *testing.T) {
	assert.True(t, BindingReserved("q"))
	assert.True(t, BindingReserved("ctrl+c"))
	assert.True(t, BindingReserved("m"))
	assert.False(t, BindingReserved("ctrl+p"))
	assert.False(t, BindingReserved("ctrl+m"))
}

func TestClampPosition(t *testing.T) {
	tests := []struct {
		name   string
		pos    Position
		w, h   int
		expect Position
	}{
		{"inside unchanged", Position{X: 10, Y: 5}, 80, 24, Position{X: 10, Y: 5}},
		{"negative clamped to origin", Position{X: -3, Y: -1}, 80, 24, Position{X: 0, Y: 0}},
		{"beyond right edge", Position{X: 200, Y: 5}, 80, 24, Position{X: 79, Y: 5}},
		{"beyond bottom edge", Position{X: 5, Y: 99}, 80, 24, Position{X: 5, Y: 23}},
		{"unknown screen size is a no-op", Position{X: 500, Y: 500}, 0, 0, Position{X: 500, Y: 500}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			s.Position = tt.pos
			s.ClampPosition(tt.w, tt.h)
			assert.Equal(t, tt.expect, s.Position)
		})
	}
}

func TestShowsStat(t *testing.T) {
	s := Default()
	s.VisibleStats = []stats.StatKind{stats.StatCPU, stats.StatTemps}

	assert.True(t, s.ShowsStat(stats.StatCPU))
	assert.True(t, s.ShowsStat(stats.StatTemps))
	assert.False(t, s.ShowsStat(stats.StatMemory))
	assert.False(t, s.ShowsStat(stats.StatProcesses))
}

func TestClone_IsIndependent(t *testing.T) {
	original := Default()
	clone := original.Clone()

	clone.VisibleStats[0] = "mutated"
	clone.Opacity = 0.5

	assert.Equal(t, stats.StatCPU, original.VisibleStats[0])
	assert.Equal(t, 0.95, original.Opacity)
}
