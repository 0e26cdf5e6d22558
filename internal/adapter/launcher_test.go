package adapter

import (
	"os/exec"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSystemOpener(t *testing.T) {
	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", nil},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler"}},
		{"linux", "xdg-open", nil},
		{"freebsd", "xdg-open", nil},
	}
	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args := systemOpener(tt.goos)
			assert.Equal(t, tt.wantName, name)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func TestLauncher_OpenUsesConfiguredCommand(t *testing.T) {
	l := NewLauncher("sh", []string{"-c", "true"}, NullLogger())
	var started *exec.Cmd
	l.start = func(cmd *exec.Cmd) error {
		started = cmd
		return nil
	}

	require.NoError(t, l.Open("https://www.themoviedb.org/movie/603"))
	require.NotNil(t, started)
	assert.Equal(t, []string{"sh", "-c", "true", "https://www.themoviedb.org/movie/603"}, started.Args)
}

func TestLauncher_OpenMissingCommand(t *testing.T) {
	l := NewLauncher("definitely-not-a-browser-xyz", nil, NullLogger())
	l.start = func(cmd *exec.Cmd) error {
		t.Fatal("should not start")
		return nil
	}

	assert.Error(t, l.Open("https://example.com"))
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, "DEBUG", parseLogLevel("debug").String())
	assert.Equal(t, "WARN", parseLogLevel("warning").String())
	assert.Equal(t, "INFO", parseLogLevel("bogus").String())
}
