package tui

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectMode_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"explicit", map[string]string{EnvNonInteractive: "1"}},
		{"ci", map[string]string{"CI": "true"}},
		{"no color", map[string]string{"NO_COLOR": "1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvNonInteractive, "")
			t.Setenv("CI", "")
			t.Setenv("NO_COLOR", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			assert.Equal(t, ModeNonInteractive, DetectMode())
		})
	}
}

func TestDetectMode_NoTerminal(t *testing.T) {
	// go test does not attach stdout to a terminal
	t.Setenv(EnvNonInteractive, "")
	t.Setenv("CI", "")
	t.Setenv("NO_COLOR", "")

	assert.Equal(t, ModeNonInteractive, DetectMode())
	assert.False(t, IsInteractive())
}
