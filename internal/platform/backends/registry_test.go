package backends

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/platform/influx"
	"github.com/xbocquet/twcatele/internal/platform/twinit"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

type stubReadings struct{ name string }

func (s stubReadings) Name() string { return s.name }
func (s stubReadings) RelatedReadings(context.Context, []string, string, record.Record, int) ([]record.Record, error) {
	return nil, nil
}
func (s stubReadings) Aggregate(context.Context, []string, string, telemetry.Pipeline) ([]record.Record, error) {
	return nil, nil
}

func resetRegistry(t *testing.T) {
	t.Helper()
	Reset()
	t.Cleanup(Reset)
}

func signedIn(t *testing.T) *auth.MockStore {
	t.Helper()
	store := auth.NewMockStore()
	if err := auth.SaveSession(store, auth.Session{Token: "tok", Env: "https://example.test"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	return store
}

func TestRegister_Panics(t *testing.T) {
	resetRegistry(t)
	Register("mock", func(Env) (domain.ReadingSource, error) { return stubReadings{"mock"}, nil })

	tests := map[string]func(){
		"empty name": func() { Register("  ", func(Env) (domain.ReadingSource, error) { return nil, nil }) },
		"nil factory": func() { Register("other", nil) },
		"duplicate":   func() { Register("MOCK", func(Env) (domain.ReadingSource, error) { return nil, nil }) },
	}
	for name, fn := range tests {
		t.Run(name, func(t *testing.T) {
			defer func() {
				if recover() == nil {
					t.Error("expected panic")
				}
			}()
			fn()
		})
	}
}

func TestGet_Unknown(t *testing.T) {
	resetRegistry(t)
	_, err := Get("nope", Env{})
	if err == nil || !strings.Contains(err.Error(), "unknown telemetry backend") {
		t.Fatalf("err = %v, want unknown backend", err)
	}
}

func TestRegisterDefaults(t *testing.T) {
	resetRegistry(t)
	RegisterDefaults()
	RegisterDefaults()

	if diff := cmp.Diff([]string{"influxdb", "twinit"}, List()); diff != "" {
		t.Errorf("List mismatch (-want +got):\n%s", diff)
	}

	clients, err := Connect(&config.Config{}, signedIn(t))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer clients.Close()
	if _, ok := clients.Platform.(*twinit.Client); !ok {
		t.Errorf("Platform = %T, want *twinit.Client", clients.Platform)
	}
	if clients.Readings.Name() != twinit.BackendName {
		t.Errorf("Readings = %q, want twinit", clients.Readings.Name())
	}
	if clients.Session.Token != "tok" {
		t.Errorf("Session.Token = %q", clients.Session.Token)
	}
}

func TestConnect_NotAuthenticated(t *testing.T) {
	resetRegistry(t)
	RegisterDefaults()

	_, err := Connect(&config.Config{}, auth.NewMockStore())
	if !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("err = %v, want ErrNotAuthenticated", err)
	}
}

func TestConnect_Influx(t *testing.T) {
	resetRegistry(t)
	RegisterDefaults()
	store := signedIn(t)

	cfg := &config.Config{TelemetryBackend: "influxdb"}
	if _, err := Connect(cfg, store); err == nil || !strings.Contains(err.Error(), "influx-url") {
		t.Fatalf("err = %v, want missing settings error", err)
	}

	cfg.InfluxURL = "http://localhost:8086"
	cfg.InfluxOrg = "org"
	cfg.InfluxBucket = "telemetry"
	if _, err := Connect(cfg, store); err == nil || !strings.Contains(err.Error(), "influxdb auth") {
		t.Fatalf("err = %v, want missing token error", err)
	}

	_ = store.Set(auth.InfluxTokenKey, "influx-token")
	clients, err := Connect(cfg, store)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer clients.Close()
	if clients.Readings.Name() != influx.BackendName {
		t.Errorf("Readings = %q, want influxdb", clients.Readings.Name())
	}
}

func TestCredentials(t *testing.T) {
	spec := LookupCredentials("TwInit")
	if spec == nil || len(spec.Keys) != 3 {
		t.Fatalf("LookupCredentials(twinit) = %+v", spec)
	}
	if LookupCredentials("aws") != nil {
		t.Error("expected nil spec for unknown backend")
	}
	if len(AllCredentials()) != 2 {
		t.Errorf("AllCredentials len = %d, want 2", len(AllCredentials()))
	}
	if got := Mask("abcdefgh"); got != "****efgh" {
		t.Errorf("Mask = %q", got)
	}
	if got := Mask("ab"); got != "****" {
		t.Errorf("Mask short = %q", got)
	}
}

func TestCredentialStates(t *testing.T) {
	store := auth.NewMockStore()
	_ = store.Set(auth.TokenKey, "secret-token-1234")
	_ = store.Set(auth.EnvKey, "https://sandbox-api.invicara.com")

	states := CredentialStates(store)
	if len(states) != 4 {
		t.Fatalf("CredentialStates len = %d, want 4", len(states))
	}

	got := map[string]string{}
	for _, s := range states {
		got[s.Key.Key] = s.Display()
	}
	want := map[string]string{
		auth.TokenKey:       "****1234",
		auth.EnvKey:         "https://sandbox-api.invicara.com",
		auth.AppIDKey:       "not set",
		auth.InfluxTokenKey: "not set",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Display mismatch (-want +got):\n%s", diff)
	}
}
