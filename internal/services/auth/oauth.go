package auth

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrStateMismatch is returned when a redirect does not carry the state
// sent with the authorize request.
var ErrStateMismatch = errors.New("auth: redirect state does not match the login request")

// AuthorizeURL builds the implicit-flow authorize URL. env is the
// passport origin. state is echoed back in the redirect; empty omits it.
func AuthorizeURL(env, appID, redirectURI, state string) string {
	u := fmt.Sprintf("%s/passportsvc/api/v1/oauth/authorize/?client_id=%s&response_type=token&scope=%s&redirect_uri=%s",
		strings.TrimRight(env, "/"),
		url.QueryEscape(appID),
		url.PathEscape("read write"),
		url.QueryEscape(redirectURI),
	)
	if state != "" {
		u += "&state=" + url.QueryEscape(state)
	}
	return u
}

// AuthEnv picks the origin a session is issued by: the passport origin,
// else the item origin.
func AuthEnv(passportOrigin, itemOrigin string) string {
	if strings.TrimSpace(passportOrigin) != "" {
		return strings.TrimRight(passportOrigin, "/")
	}
	return strings.TrimRight(itemOrigin, "/")
}

// ParseFragment extracts the access token from a redirect URL fragment
// ("access_token=...&token_type=...&state=..."). A leading '#' is ignored.
// When state is non-empty the fragment must carry the same value, else
// ErrStateMismatch. An OAuth error in the fragment is returned as an error.
func ParseFragment(fragment, state string) (string, error) {
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return "", fmt.Errorf("Authentication failed: malformed redirect: %w", err)
	}
	if state != "" && values.Get("state") != state {
		return "", ErrStateMismatch
	}
	if e := values.Get("error"); e != "" {
		desc := values.Get("error_description")
		if desc == "" {
			desc = e
		}
		return "", fmt.Errorf("Authentication failed: %s. Please check that the Application ID is valid and registered for OAuth", desc)
	}
	token := values.Get("access_token")
	if token == "" {
		return "", fmt.Errorf("Authentication failed: no access token in redirect")
	}
	return token, nil
}
