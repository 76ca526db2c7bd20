package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomePath_Default(t *testing.T) {
	t.Setenv("TASKTRACK_PATH", "")

	home, err := os.UserHomeDir()
	if err != nil {
		t.Fatal(err)
	}

	got := HomePath()
	want := filepath.Join(home, ".tasktrack")
	if got != want {
		t.Errorf("HomePath() = %q, want %q", got, want)
	}
}

func TestHomePath_EnvOverride(t *testing.T) {
	t.Setenv("TASKTRACK_PATH", "/tmp/custom-tasktrack")

	if got := HomePath(); got != "/tmp/custom-tasktrack" {
		t.Errorf("HomePath() = %q, want %q", got, "/tmp/custom-tasktrack")
	}
}

func TestConfigAndDotenvPath(t *testing.T) {
	t.Setenv("TASKTRACK_PATH", "/tmp/test-tasktrack")

	if got, want := ConfigPath(), "/tmp/test-tasktrack/config.jsonc"; got != want {
		t.Errorf("ConfigPath() = %q, want %q", got, want)
	}
	if got, want := DotenvPath(), "/tmp/test-tasktrack/.env"; got != want {
		t.Errorf("DotenvPath() = %q, want %q", got, want)
	}
}
