package config

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xbocquet/twcatele/internal/config"
)

// setupTestConfig points the config package at a temp file and returns its path.
func setupTestConfig(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	config.SetPath(path)
	t.Cleanup(config.ResetPath)
	return path
}

// execConfig creates the config command, wires up output buffers, runs with the
// given args, and returns what was written to stdout and stderr.
func execConfig(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func TestSet_TelemetryBackend(t *testing.T) {
	setupTestConfig(t)

	stdout, stderr := execConfig(t, "set", "telemetry-backend", "InfluxDB")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"influxdb"`) {
		t.Errorf("expected normalized backend in confirmation, got: %s", stdout)
	}

	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.TelemetryBackend != "influxdb" {
		t.Errorf("expected TelemetryBackend %q, got %q", "influxdb", cfg.TelemetryBackend)
	}
}

func TestSet_UnknownBackend(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "telemetry-backend", "prometheus")

	if !strings.Contains(stderr, "unknown telemetry backend") {
		t.Errorf("expected 'unknown telemetry backend' error, got: %s", stderr)
	}
}

func TestSet_InvalidApplicationID(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "application-id", "not-a-uuid")

	if !strings.Contains(stderr, "invalid value for application-id") {
		t.Errorf("expected validation error, got: %s", stderr)
	}
}

func TestSet_UnknownKey(t *testing.T) {
	setupTestConfig(t)

	_, stderr := execConfig(t, "set", "bogus-key", "value")

	if !strings.Contains(stderr, "unknown configuration key") {
		t.Errorf("expected 'unknown configuration key' error, got: %s", stderr)
	}
}

func TestSet_EmptyValueUnsets(t *testing.T) {
	path := setupTestConfig(t)
	if err := (&config.Config{CurrentProject: "p1"}).SaveTo(path); err != nil {
		t.Fatalf("failed to save config: %v", err)
	}

	stdout, _ := execConfig(t, "set", "current-project", "")

	if !strings.Contains(stdout, "current-project unset") {
		t.Errorf("expected unset confirmation, got: %s", stdout)
	}
	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.CurrentProject != "" {
		t.Errorf("expected CurrentProject cleared, got %q", cfg.CurrentProject)
	}
}

func TestSet_DoesNotPersistEnvOverrides(t *testing.T) {
	path := setupTestConfig(t)
	t.Setenv("TWCATELE_INFLUX_ORG", "from-env")

	execConfig(t, "set", "influx-bucket", "readings")

	cfg, err := config.LoadFrom(path)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if cfg.InfluxOrg != "" {
		t.Errorf("expected env override not to be saved, got InfluxOrg %q", cfg.InfluxOrg)
	}
	if cfg.InfluxBucket != "readings" {
		t.Errorf("expected InfluxBucket %q, got %q", "readings", cfg.InfluxBucket)
	}
}
