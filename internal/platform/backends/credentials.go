package backends

import (
	"errors"
	"fmt"

	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/util"
)

// CredentialKey describes a single keychain entry a backend reads.
type CredentialKey struct {
	// Key is the keychain key (e.g. "twinit_token").
	Key string

	// Label is the human-readable name shown by auth status.
	Label string

	// Secret controls whether the value is masked on display.
	Secret bool
}

// CredentialSpec lists the keychain entries of a backend.
type CredentialSpec struct {
	Backend     string
	DisplayName string
	Keys        []CredentialKey
}

var knownSpecs = []CredentialSpec{
	{
		Backend:     "twinit",
		DisplayName: "Twinit",
		Keys: []CredentialKey{
			{Key: auth.TokenKey, Label: "Access token", Secret: true},
			{Key: auth.EnvKey, Label: "Environment"},
			{Key: auth.AppIDKey, Label: "Application ID"},
		},
	},
	{
		Backend:     "influxdb",
		DisplayName: "InfluxDB",
		Keys: []CredentialKey{
			{Key: auth.InfluxTokenKey, Label: "API token", Secret: true},
		},
	},
}

// LookupCredentials returns the spec of a backend, or nil.
func LookupCredentials(backend string) *CredentialSpec {
	normalized := util.NormalizeKey(backend)
	for i := range knownSpecs {
		if knownSpecs[i].Backend == normalized {
			return &knownSpecs[i]
		}
	}
	return nil
}

// AllCredentials returns a copy of every credential spec.
func AllCredentials() []CredentialSpec {
	out := make([]CredentialSpec, len(knownSpecs))
	copy(out, knownSpecs)
	return out
}

// Mask hides all but the last four characters of a secret.
func Mask(v string) string {
	if len(v) <= 4 {
		return "****"
	}
	return "****" + v[len(v)-4:]
}

// CredentialState is the stored state of one keychain entry.
type CredentialState struct {
	Backend string
	Key     CredentialKey
	Value   string
	Set     bool
	Err     error
}

// Display renders the value for status output: masked secrets, "not set",
// or the read error.
func (c CredentialState) Display() string {
	switch {
	case c.Err != nil:
		return fmt.Sprintf("error: %v", c.Err)
	case !c.Set:
		return "not set"
	case c.Key.Secret:
		return Mask(c.Value)
	}
	return c.Value
}

// CredentialStates reads every known keychain entry from store, in spec
// order.
func CredentialStates(store auth.Store) []CredentialState {
	var states []CredentialState
	for _, spec := range knownSpecs {
		for _, key := range spec.Keys {
			state := CredentialState{Backend: spec.Backend, Key: key}
			v, err := store.Get(key.Key)
			switch {
			case err == nil:
				state.Value, state.Set = v, v != ""
			case !errors.Is(err, auth.ErrTokenNotFound):
				state.Err = err
			}
			states = append(states, state)
		}
	}
	return states
}
