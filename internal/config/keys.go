package config

import (
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/util"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "item-service-origin").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Default is the effective value when the key is unset. Empty means none.
	Default string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save).
	Set func(cfg *Config, value string)

	// Validate rejects malformed values before Set. Nil accepts anything.
	Validate func(value string) error
}

// Effective returns the stored value, or the default when unset.
func (k KeySpec) Effective(cfg *Config) string {
	if v := k.Get(cfg); v != "" {
		return v
	}
	return k.Default
}

// TelemetryBackends lists the accepted telemetry-backend values.
var TelemetryBackends = []string{"twinit", "influxdb"}

func validateBackend(v string) error {
	for _, b := range TelemetryBackends {
		if strings.EqualFold(b, v) {
			return nil
		}
	}
	return fmt.Errorf("unknown telemetry backend %q (valid: %s)", v, strings.Join(TelemetryBackends, ", "))
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "item-service-origin",
		Description: "Origin of the item service",
		Default:     DefaultOrigin,
		Get:         func(cfg *Config) string { return cfg.ItemServiceOrigin },
		Set:         func(cfg *Config, v string) { cfg.ItemServiceOrigin = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "passport-service-origin",
		Description: "Origin of the passport (identity) service",
		Default:     DefaultOrigin,
		Get:         func(cfg *Config) string { return cfg.PassportServiceOrigin },
		Set:         func(cfg *Config, v string) { cfg.PassportServiceOrigin = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "file-service-origin",
		Description: "Origin of the file service",
		Default:     DefaultOrigin,
		Get:         func(cfg *Config) string { return cfg.FileServiceOrigin },
		Set:         func(cfg *Config, v string) { cfg.FileServiceOrigin = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "datasource-service-origin",
		Description: "Origin of the datasource service",
		Default:     DefaultOrigin,
		Get:         func(cfg *Config) string { return cfg.DatasourceServiceOrigin },
		Set:         func(cfg *Config, v string) { cfg.DatasourceServiceOrigin = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "graphics-service-origin",
		Description: "Origin of the graphics service",
		Default:     DefaultOrigin,
		Get:         func(cfg *Config) string { return cfg.GraphicsServiceOrigin },
		Set:         func(cfg *Config, v string) { cfg.GraphicsServiceOrigin = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "base-root",
		Description: "Base URL sent in invitation emails",
		Default:     DefaultBaseRoot,
		Get:         func(cfg *Config) string { return cfg.BaseRoot },
		Set:         func(cfg *Config, v string) { cfg.BaseRoot = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "application-id",
		Description: "OAuth application (client) id",
		Default:     DefaultApplicationID,
		Get:         func(cfg *Config) string { return cfg.ApplicationID },
		Set:         func(cfg *Config, v string) { cfg.ApplicationID = v },
		Validate:    util.ValidateApplicationID,
	},
	{
		Name:        "current-project",
		Description: "Project used when --project is not specified",
		Get:         func(cfg *Config) string { return cfg.CurrentProject },
		Set:         func(cfg *Config, v string) { cfg.CurrentProject = v },
	},
	{
		Name:        "telemetry-backend",
		Description: "Where readings come from: twinit or influxdb",
		Default:     DefaultTelemetryBackend,
		Get:         func(cfg *Config) string { return cfg.TelemetryBackend },
		Set:         func(cfg *Config, v string) { cfg.TelemetryBackend = strings.ToLower(v) },
		Validate:    validateBackend,
	},
	{
		Name:        "influx-url",
		Description: "InfluxDB URL for the influxdb telemetry backend",
		Get:         func(cfg *Config) string { return cfg.InfluxURL },
		Set:         func(cfg *Config, v string) { cfg.InfluxURL = v },
		Validate:    util.ValidateOrigin,
	},
	{
		Name:        "influx-org",
		Description: "InfluxDB organization",
		Get:         func(cfg *Config) string { return cfg.InfluxOrg },
		Set:         func(cfg *Config, v string) { cfg.InfluxOrg = v },
	},
	{
		Name:        "influx-bucket",
		Description: "InfluxDB bucket holding readings",
		Get:         func(cfg *Config) string { return cfg.InfluxBucket },
		Set:         func(cfg *Config, v string) { cfg.InfluxBucket = v },
	},
	{
		Name:        "cache-redis-url",
		Description: "Redis URL for the shared list cache (file cache when unset)",
		Get:         func(cfg *Config) string { return cfg.CacheRedisURL },
		Set:         func(cfg *Config, v string) { cfg.CacheRedisURL = v },
	},
	{
		Name:        "callback-addr",
		Description: "Listen address of the OAuth redirect listener",
		Default:     DefaultCallbackAddr,
		Get:         func(cfg *Config) string { return cfg.CallbackAddr },
		Set:         func(cfg *Config, v string) { cfg.CallbackAddr = v },
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := util.NormalizeKey(name)
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
