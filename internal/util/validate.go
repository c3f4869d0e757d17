package util

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// emailPattern is the common "local@domain.tld" address check: no
// whitespace, exactly one @, and a dot in the domain part.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks an already normalized address.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email address is required")
	}
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("invalid email address %q", email)
	}
	return nil
}

// ValidateApplicationID checks that id is a canonical (hyphenated,
// 36 character) UUID, the form the platform issues application ids in.
func ValidateApplicationID(id string) error {
	if len(id) != 36 {
		return fmt.Errorf("application id must be a UUID like xxxxxxxx-xxxx-xxxx-xxxx-xxxxxxxxxxxx, got %q", id)
	}
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("application id %q is not a valid UUID: %w", id, err)
	}
	return nil
}

// ValidateOrigin checks that s is an absolute http(s) URL.
func ValidateOrigin(s string) error {
	u, err := url.Parse(s)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", s, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL %q must start with http:// or https://", s)
	}
	if u.Host == "" {
		return fmt.Errorf("URL %q has no host", s)
	}
	return nil
}
