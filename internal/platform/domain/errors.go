package domain

import "errors"

// Sentinel errors for platform error classification.
// Clients wrap these so commands and the browser can handle error
// categories uniformly without knowing which backend answered.
//
//	return fmt.Errorf("failed to list projects: %w", domain.ErrUnauthorized)
var (
	// ErrNotFound indicates the requested resource does not exist.
	ErrNotFound = errors.New("resource not found")

	// ErrUnauthorized indicates the request was rejected due to
	// invalid, expired, or missing credentials.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrRateLimited indicates the platform throttled the request.
	ErrRateLimited = errors.New("rate limited")

	// ErrConflict indicates a state or uniqueness conflict, such as
	// inviting an address that already has a pending invite.
	ErrConflict = errors.New("conflict")

	// ErrNotAuthenticated indicates no session is stored locally.
	ErrNotAuthenticated = errors.New("not authenticated")
)

// AuthFailedMessage is shown whenever the platform rejects the session.
const AuthFailedMessage = "Authentication failed. Please check your credentials."

// UserMessage renders err for display. Credential failures collapse to
// AuthFailedMessage with a hint to log in again.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrNotAuthenticated) {
		return AuthFailedMessage + " Run 'twcatele auth login' to sign in again."
	}
	return err.Error()
}
