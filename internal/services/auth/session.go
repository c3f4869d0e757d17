package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/xbocquet/twcatele/internal/platform/domain"
)

// Session is the stored login: the bearer token, the platform origin it
// was issued by, and the OAuth application id used.
type Session struct {
	Token string
	Env   string
	AppID string
}

// LoadSession reads the session. Both token and env must be present,
// otherwise domain.ErrNotAuthenticated is returned.
func LoadSession(store Store) (*Session, error) {
	token, err := optional(store, TokenKey)
	if err != nil {
		return nil, err
	}
	env, err := optional(store, EnvKey)
	if err != nil {
		return nil, err
	}
	if token == "" || env == "" {
		return nil, domain.ErrNotAuthenticated
	}
	appID, err := optional(store, AppIDKey)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, Env: env, AppID: appID}, nil
}

// IsAuthenticated reports whether both token and env are stored.
func IsAuthenticated(store Store) bool {
	_, err := LoadSession(store)
	return err == nil
}

// SaveSession stores token, env and application id.
func SaveSession(store Store, s Session) error {
	if strings.TrimSpace(s.Token) == "" {
		return fmt.Errorf("auth: token cannot be empty")
	}
	if strings.TrimSpace(s.Env) == "" {
		return fmt.Errorf("auth: environment origin cannot be empty")
	}
	if err := store.Set(TokenKey, s.Token); err != nil {
		return fmt.Errorf("auth: failed to store token: %w", err)
	}
	if err := store.Set(EnvKey, s.Env); err != nil {
		return fmt.Errorf("auth: failed to store environment: %w", err)
	}
	if s.AppID != "" {
		if err := store.Set(AppIDKey, s.AppID); err != nil {
			return fmt.Errorf("auth: failed to store application id: %w", err)
		}
	}
	return nil
}

// ClearSession removes token and env. The application id is kept so the
// next login reuses it.
func ClearSession(store Store) error {
	for _, key := range []string{TokenKey, EnvKey} {
		if err := store.Delete(key); err != nil && !errors.Is(err, ErrTokenNotFound) {
			return fmt.Errorf("auth: failed to remove %s: %w", key, err)
		}
	}
	return nil
}

// StoredAppID returns the stored application id, or fallback.
func StoredAppID(store Store, fallback string) string {
	if id, err := optional(store, AppIDKey); err == nil && id != "" {
		return id
	}
	return fallback
}

func optional(store Store, key string) (string, error) {
	v, err := store.Get(key)
	if errors.Is(err, ErrTokenNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("auth: failed to read %s: %w", key, err)
	}
	return strings.TrimSpace(v), nil
}
