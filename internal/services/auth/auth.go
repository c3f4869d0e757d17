// Package auth stores the platform session in the OS keychain and runs the
// OAuth implicit-flow login.
package auth

import (
	"errors"
	"strings"
)

const ServiceName = "twcatele"

// Keychain keys of the session.
const (
	TokenKey       = "twinit_token"
	EnvKey         = "twinit_env"
	AppIDKey       = "twinit_appId"
	InfluxTokenKey = "influxdb_token"
)

var ErrTokenNotFound = errors.New("auth token not found")

type Store interface {
	Set(key string, value string) error
	Get(key string) (string, error)
	Delete(key string) error
}

var storeOverride Store

// SetDefaultStore makes DefaultStore return s. Intended for testing.
func SetDefaultStore(s Store) { storeOverride = s }

// ResetDefaultStore restores the keychain store. Intended for testing.
func ResetDefaultStore() { storeOverride = nil }

// DefaultStore returns the standard auth store backed by the OS keychain.
func DefaultStore() Store {
	if storeOverride != nil {
		return storeOverride
	}
	return NewKeyringStore(ServiceName)
}

// normalizeKey trims a key. Case is kept: the session keys are
// case-sensitive names such as twinit_appId.
func normalizeKey(key string) string {
	return strings.TrimSpace(key)
}
