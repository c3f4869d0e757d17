// Package backends wires the configured platform clients: the Twinit
// catalog and passport services, and the telemetry reading backend chosen
// by telemetry-backend.
package backends

import (
	"fmt"
	"sort"
	"sync"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/platform/influx"
	"github.com/xbocquet/twcatele/internal/platform/twinit"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/util"
)

// Env is what a factory may draw on to build a client.
type Env struct {
	Config  *config.Config
	Session *auth.Session
	Store   auth.Store
}

// Factory builds a telemetry reading backend.
type Factory func(env Env) (domain.ReadingSource, error)

// Platform is the Twinit side every command talks to.
type Platform interface {
	domain.Catalog
	domain.Passport
}

// PlatformFactory builds the catalog and passport client.
type PlatformFactory func(env Env) (Platform, error)

var (
	mu              sync.RWMutex
	registry        = map[string]Factory{}
	platformFactory PlatformFactory
)

// Register adds a reading backend factory.
// It panics on empty name, nil factory, or duplicate registration
// (programmer errors detected at startup).
func Register(name string, factory Factory) {
	normalizedName := util.NormalizeKey(name)
	if normalizedName == "" {
		panic("backends: empty backend name")
	}
	if factory == nil {
		panic("backends: nil factory")
	}

	mu.Lock()
	defer mu.Unlock()
	if _, exists := registry[normalizedName]; exists {
		panic(fmt.Sprintf("backends: backend %q already registered", name))
	}
	registry[normalizedName] = factory
}

// Get constructs the reading backend registered under name.
func Get(name string, env Env) (domain.ReadingSource, error) {
	normalizedName := util.NormalizeKey(name)
	mu.RLock()
	factory, ok := registry[normalizedName]
	mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("backends: unknown telemetry backend %q", name)
	}
	return factory(env)
}

// List returns the registered backend names, sorted.
func List() []string {
	mu.RLock()
	defer mu.RUnlock()

	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// SetPlatform replaces the platform factory. Intended for testing.
func SetPlatform(f PlatformFactory) {
	mu.Lock()
	defer mu.Unlock()
	platformFactory = f
}

// Reset clears every registration. Intended for use in tests only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	registry = map[string]Factory{}
	platformFactory = nil
}

// RegisterDefaults installs the Twinit platform and both reading backends
// unless they are already present.
func RegisterDefaults() {
	mu.RLock()
	_, hasTwinit := registry[twinit.BackendName]
	_, hasInflux := registry[influx.BackendName]
	hasPlatform := platformFactory != nil
	mu.RUnlock()

	if !hasPlatform {
		SetPlatform(func(env Env) (Platform, error) {
			return newTwinit(env), nil
		})
	}
	if !hasTwinit {
		Register(twinit.BackendName, func(env Env) (domain.ReadingSource, error) {
			return newTwinit(env), nil
		})
	}
	if !hasInflux {
		Register(influx.BackendName, newInflux)
	}
}

func newTwinit(env Env) *twinit.Client {
	ep := env.Config.Endpoints()
	return twinit.New(twinit.Options{
		ItemServiceOrigin:     ep.ItemServiceOrigin,
		PassportServiceOrigin: ep.PassportServiceOrigin,
		Token:                 env.Session.Token,
	})
}

func newInflux(env Env) (domain.ReadingSource, error) {
	cfg := env.Config
	if cfg.InfluxURL == "" || cfg.InfluxOrg == "" || cfg.InfluxBucket == "" {
		return nil, fmt.Errorf("influxdb backend requires influx-url, influx-org and influx-bucket to be set")
	}
	token, err := env.Store.Get(auth.InfluxTokenKey)
	if err != nil {
		return nil, fmt.Errorf("influxdb auth: %w (run 'twcatele auth login --influx-token <token>')", err)
	}
	return influx.New(cfg.InfluxURL, token, cfg.InfluxOrg, cfg.InfluxBucket), nil
}

// Clients is the set of connected services for one command.
type Clients struct {
	Platform Platform
	Readings domain.ReadingSource
	Session  *auth.Session
}

// Connect loads the session from store and builds the platform client and
// the configured reading backend. It returns domain.ErrNotAuthenticated
// when no session is stored.
func Connect(cfg *config.Config, store auth.Store) (*Clients, error) {
	session, err := auth.LoadSession(store)
	if err != nil {
		return nil, err
	}

	mu.RLock()
	pf := platformFactory
	mu.RUnlock()
	if pf == nil {
		return nil, fmt.Errorf("backends: no platform registered")
	}

	env := Env{Config: cfg, Session: session, Store: store}
	platform, err := pf(env)
	if err != nil {
		return nil, err
	}
	readings, err := Get(cfg.Backend(), env)
	if err != nil {
		return nil, err
	}
	return &Clients{Platform: platform, Readings: readings, Session: session}, nil
}

// Close releases backend resources such as the InfluxDB HTTP client.
func (c *Clients) Close() {
	if closer, ok := c.Readings.(interface{ Close() }); ok {
		closer.Close()
	}
}
