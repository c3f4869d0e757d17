package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoad_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent", "config.json")

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CurrentProject != "" {
		t.Errorf("expected empty CurrentProject, got %q", cfg.CurrentProject)
	}
}

func TestSaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "twcatele", "config.json")

	want := &Config{
		ItemServiceOrigin: "https://api.example.com",
		CurrentProject:    "p1",
		TelemetryBackend:  "influxdb",
		InfluxBucket:      "readings",
	}
	if err := want.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSave_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "deep")
	path := filepath.Join(dir, "config.json")

	cfg := &Config{CurrentProject: "p1"}
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file at %s: %v", path, err)
	}
}

func TestLoad_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json}"), 0o644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	_, err := LoadFrom(path)
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
}

func TestEndpoints_Defaults(t *testing.T) {
	got := (&Config{PassportServiceOrigin: "https://passport.example.com"}).Endpoints()
	want := Endpoints{
		ItemServiceOrigin:       DefaultOrigin,
		PassportServiceOrigin:   "https://passport.example.com",
		FileServiceOrigin:       DefaultOrigin,
		DatasourceServiceOrigin: DefaultOrigin,
		GraphicsServiceOrigin:   DefaultOrigin,
		BaseRoot:                DefaultBaseRoot,
		ApplicationID:           DefaultApplicationID,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Endpoints() mismatch (-want +got):\n%s", diff)
	}
}

func TestApplyEnv(t *testing.T) {
	env := map[string]string{
		"TWCATELE_INFLUX_URL":        "http://influx:8086",
		"TWCATELE_TELEMETRY_BACKEND": "InfluxDB",
		"TWCATELE_CURRENT_PROJECT":   "   ",
	}
	lookup := func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	}

	cfg := &Config{CurrentProject: "p1", InfluxURL: "http://old:8086"}
	cfg.ApplyEnv(lookup)

	if cfg.InfluxURL != "http://influx:8086" {
		t.Errorf("InfluxURL = %q", cfg.InfluxURL)
	}
	if cfg.Backend() != "influxdb" {
		t.Errorf("Backend() = %q, want influxdb", cfg.Backend())
	}
	if cfg.CurrentProject != "p1" {
		t.Errorf("blank override replaced CurrentProject: %q", cfg.CurrentProject)
	}
}

func TestLoad_UsesPathOverrideAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	SetPath(path)
	t.Cleanup(ResetPath)

	if err := (&Config{InfluxOrg: "file-org"}).SaveTo(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	t.Setenv("TWCATELE_INFLUX_ORG", "env-org")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.InfluxOrg != "env-org" {
		t.Errorf("InfluxOrg = %q, want env-org", cfg.InfluxOrg)
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	if err := os.WriteFile(envFile, []byte("TWCATELE_INFLUX_BUCKET=from-dotenv\n"), 0o644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}
	t.Setenv("TWCATELE_INFLUX_BUCKET", "")
	os.Unsetenv("TWCATELE_INFLUX_BUCKET")

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv failed: %v", err)
	}
	if got := os.Getenv("TWCATELE_INFLUX_BUCKET"); got != "from-dotenv" {
		t.Errorf("TWCATELE_INFLUX_BUCKET = %q, want from-dotenv", got)
	}

	if err := LoadDotEnv(filepath.Join(dir, "missing.env")); err != nil {
		t.Errorf("missing file should not be an error, got %v", err)
	}
}

func TestEnvName(t *testing.T) {
	if got := EnvName("cache-redis-url"); got != "TWCATELE_CACHE_REDIS_URL" {
		t.Errorf("EnvName() = %q", got)
	}
}
