package errors

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorCodes(t *testing.T) {
	// Verify all expected error codes exist
	codes := []string{
		ErrConfig,
		ErrSensor,
		ErrPersist,
		ErrHotkey,
		ErrDisplay,
	}

	for _, code := range codes {
		assert.NotEmpty(t, code, "error code should not be empty")
	}

	// Verify codes are unique
	seen := make(map[string]bool)
	for _, code := range codes {
		assert.False(t, seen[code], "error code %q should be unique", code)
		seen[code] = true
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		code       string
		message    string
		suggestion string
	}{
		{
			name:       "config error",
			code:       ErrConfig,
			message:    "Invalid settings file",
			suggestion: "Delete the settings file to restore defaults",
		},
		{
			name:       "sensor error",
			code:       ErrSensor,
			message:    "Cannot read temperature sensors",
			suggestion: "Temperature display is disabled for this session",
		},
		{
			name:       "persist error",
			code:       ErrPersist,
			message:    "Cannot write settings",
			suggestion: "Check permissions on the config directory",
		},
		{
			name:       "hotkey error",
			code:       ErrHotkey,
			message:    "Hotkey 'ctrl+p' is already claimed",
			suggestion: "Pick a different combination in settings",
		},
		{
			name:       "display error",
			code:       ErrDisplay,
			message:    "Terminal does not support mouse reporting",
			suggestion: "Use a terminal with mouse support",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := New(tt.code, tt.message, tt.suggestion)

			require.NotNil(t, err)
			assert.Equal(t, tt.code, err.Code)
			assert.Equal(t, tt.message, err.Message)
			assert.Equal(t, tt.suggestion, err.Suggestion)
			assert.Nil(t, err.Cause)
		})
	}
}

func TestErrorInterface(t *testing.T) {
	err := New(ErrConfig, "test message", "test suggestion")

	// Should implement error interface
	var _ error = err

	// Error() should return formatted message
	errStr := err.Error()
	assert.NotEmpty(t, errStr)
}

func TestErrorFormatting(t *testing.T) {
	tests := []struct {
		name          string
		err           *Error
		expectedParts []string
		notExpected   []string
	}{
		{
			name: "basic error formatting",
			err:  New(ErrConfig, "Invalid settings", "Delete settings.json"),
			expectedParts: []string{
				"Invalid settings",
				"Delete settings.json",
			},
		},
		{
			name: "error with failure symbol",
			err:  New(ErrHotkey, "Registration failed", "Try again"),
			expectedParts: []string{
				"✗",
				"Registration failed",
			},
		},
		{
			name: "error without suggestion",
			err:  New(ErrSensor, "Sensor read failed", ""),
			expectedParts: []string{
				"Sensor read failed",
			},
			notExpected: []string{
				"suggestion", // Should not include suggestion header if empty
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := tt.err.Error()

			for _, part := range tt.expectedParts {
				assert.Contains(t, output, part, "output should contain %q", part)
			}

			for _, part := range tt.notExpected {
				assert.NotContains(t, output, part, "output should not contain %q", part)
			}
		})
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying parse error")
	wrapped := Wrap(cause, "Settings load failed")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrConfig, wrapped.Code, "Wrap should default to ErrConfig code")
	assert.Equal(t, "Settings load failed", wrapped.Message)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestWrapWithCode(t *testing.T) {
	cause := errors.New("permission denied")
	wrapped := WrapWithCode(cause, ErrPersist, "Failed to save settings", "Check directory permissions")

	require.NotNil(t, wrapped)
	assert.Equal(t, ErrPersist, wrapped.Code)
	assert.Equal(t, "Failed to save settings", wrapped.Message)
	assert.Equal(t, "Check directory permissions", wrapped.Suggestion)
	assert.Equal(t, cause, wrapped.Cause)
}

func TestErrorWrappingPreservesCause(t *testing.T) {
	original := errors.New("original error")
	wrapped := WrapWithCode(original, ErrSensor, "Read failed", "")

	// Should preserve the original cause
	assert.Equal(t, original, wrapped.Cause)

	// Error message should include cause information
	errStr := wrapped.Error()
	assert.Contains(t, errStr, "original error")
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")
	wrapped := WrapWithCode(cause, ErrDisplay, "Render failed", "")

	// Should implement Unwrap for errors.Is/errors.As
	unwrapped := wrapped.Unwrap()
	assert.Equal(t, cause, unwrapped)
}

func TestErrorsIs(t *testing.T) {
	cause := errors.New("specific error")
	wrapped := WrapWithCode(cause, ErrPersist, "Save error", "")

	// errors.Is should work with wrapped errors
	assert.True(t, errors.Is(wrapped, cause))
}

func TestErrorsAs(t *testing.T) {
	wrapped := New(ErrConfig, "Config error", "Fix config")

	var serr *Error
	ok := errors.As(wrapped, &serr)

	assert.True(t, ok)
	assert.Equal(t, ErrConfig, serr.Code)
}

func TestIsCode(t *testing.T) {
	err := New(ErrConfig, "Config error", "")

	assert.True(t, IsCode(err, ErrConfig))
	assert.False(t, IsCode(err, ErrHotkey))
	assert.False(t, IsCode(errors.New("standard error"), ErrConfig))
	assert.False(t, IsCode(nil, ErrConfig))
}

func TestErrorMessageStructure(t *testing.T) {
	err := WrapWithCode(
		errors.New("rename failed: read-only file system"),
		ErrPersist,
		"Cannot write settings",
		"Check permissions on ~/.config/tarrow",
	)

	output := err.Error()
	lines := strings.Split(output, "\n")

	// First line should have failure symbol and main message
	assert.True(t, strings.HasPrefix(strings.TrimSpace(lines[0]), "✗"), "First line should start with failure symbol")
	assert.Contains(t, lines[0], "Cannot write settings")
}
