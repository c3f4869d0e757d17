// Package config handles persistent user configuration for twcatele.
//
// Configuration is stored as JSON at ~/.config/twcatele/config.json (or the
// platform-equivalent path returned by os.UserConfigDir). Values from the
// environment (TWCATELE_*, optionally loaded from a .env file) take
// precedence over the file.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	appDir   = "twcatele"
	fileName = "config.json"

	// EnvPrefix prefixes every environment override.
	EnvPrefix = "TWCATELE_"
)

// Defaults used when neither the file nor the environment sets a value.
const (
	DefaultOrigin           = "https://sandbox-api.invicara.com"
	DefaultBaseRoot         = "http://localhost:8083"
	DefaultApplicationID    = "bee96d08-589b-4202-a1d0-8016c1cdb5be"
	DefaultTelemetryBackend = "twinit"
	DefaultCallbackAddr     = "127.0.0.1:8083"
)

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	ItemServiceOrigin       string `json:"item_service_origin,omitempty"`
	PassportServiceOrigin   string `json:"passport_service_origin,omitempty"`
	FileServiceOrigin       string `json:"file_service_origin,omitempty"`
	DatasourceServiceOrigin string `json:"datasource_service_origin,omitempty"`
	GraphicsServiceOrigin   string `json:"graphics_service_origin,omitempty"`
	BaseRoot                string `json:"base_root,omitempty"`
	ApplicationID           string `json:"application_id,omitempty"`

	CurrentProject   string `json:"current_project,omitempty"`
	TelemetryBackend string `json:"telemetry_backend,omitempty"`
	InfluxURL        string `json:"influx_url,omitempty"`
	InfluxOrg        string `json:"influx_org,omitempty"`
	InfluxBucket     string `json:"influx_bucket,omitempty"`
	CacheRedisURL    string `json:"cache_redis_url,omitempty"`
	CallbackAddr     string `json:"callback_addr,omitempty"`
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and applies environment overrides.
// If the file does not exist, a Config holding only the overrides is
// returned (not an error).
func Load() (*Config, error) {
	cfg, err := loadFrom("")
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv(os.LookupEnv)
	return cfg, nil
}

// LoadFile reads the config file without environment overrides. Use it
// when the result is saved back, so overrides never end up on disk.
func LoadFile() (*Config, error) {
	return loadFrom("")
}

// loadFrom reads the config from the given path. If path is empty, the
// default Path() is used.
func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env")
// into the process environment. Variables already set are kept. Missing
// files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	var present []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			present = append(present, f)
		}
	}
	if len(present) == 0 {
		return nil
	}
	if err := godotenv.Load(present...); err != nil {
		return fmt.Errorf("config: failed to load %s: %w", strings.Join(present, ", "), err)
	}
	return nil
}

// EnvName returns the environment variable overriding a key,
// e.g. "influx-url" -> "TWCATELE_INFLUX_URL".
func EnvName(key string) string {
	return EnvPrefix + strings.ToUpper(strings.ReplaceAll(key, "-", "_"))
}

// ApplyEnv overrides every key that has a non-empty environment variable.
// lookup is usually os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) {
	for _, spec := range Keys {
		if v, ok := lookup(EnvName(spec.Name)); ok && strings.TrimSpace(v) != "" {
			spec.Set(c, strings.TrimSpace(v))
		}
	}
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

// saveTo writes the config to the given path. If path is empty, the
// default Path() is used.
func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path without environment
// overrides. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}

// Endpoints are the resolved service locations of a session.
type Endpoints struct {
	ItemServiceOrigin       string
	PassportServiceOrigin   string
	FileServiceOrigin       string
	DatasourceServiceOrigin string
	GraphicsServiceOrigin   string
	BaseRoot                string
	ApplicationID           string
}

// Endpoints resolves the service settings, falling back to defaults.
func (c *Config) Endpoints() Endpoints {
	return Endpoints{
		ItemServiceOrigin:       orDefault(c.ItemServiceOrigin, DefaultOrigin),
		PassportServiceOrigin:   orDefault(c.PassportServiceOrigin, DefaultOrigin),
		FileServiceOrigin:       orDefault(c.FileServiceOrigin, DefaultOrigin),
		DatasourceServiceOrigin: orDefault(c.DatasourceServiceOrigin, DefaultOrigin),
		GraphicsServiceOrigin:   orDefault(c.GraphicsServiceOrigin, DefaultOrigin),
		BaseRoot:                orDefault(c.BaseRoot, DefaultBaseRoot),
		ApplicationID:           orDefault(c.ApplicationID, DefaultApplicationID),
	}
}

// Backend returns the telemetry backend name, defaulting to twinit.
func (c *Config) Backend() string {
	return orDefault(strings.ToLower(c.TelemetryBackend), DefaultTelemetryBackend)
}

// Callback returns the OAuth redirect listener address.
func (c *Config) Callback() string {
	return orDefault(c.CallbackAddr, DefaultCallbackAddr)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
