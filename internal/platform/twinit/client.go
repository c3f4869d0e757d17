// Package twinit is the HTTP client for the Twinit platform services
// (itemsvc and passportsvc). It implements the platform domain interfaces
// on top of resty and records every request in the metrics registry.
package twinit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/xbocquet/twcatele/internal/platform/domain"
)

// BackendName identifies this client in the backend registry.
const BackendName = "twinit"

// Compile-time checks that Client satisfies the platform interfaces.
var (
	_ domain.Catalog       = (*Client)(nil)
	_ domain.ReadingSource = (*Client)(nil)
	_ domain.Passport      = (*Client)(nil)
)

// Options configures a Client.
type Options struct {
	// ItemServiceOrigin is the origin of itemsvc, e.g. https://sandbox-api.invicara.com.
	ItemServiceOrigin string

	// PassportServiceOrigin is the origin of passportsvc.
	PassportServiceOrigin string

	// Token is the OAuth bearer token.
	Token string
}

// Client talks to the Twinit REST services with a bearer token.
type Client struct {
	itemOrigin     string
	passportOrigin string
	http           *resty.Client
}

// New creates a Client. Requests use the default resty transport with no
// retries and no client-side timeout.
func New(opts Options) *Client {
	rc := resty.New().
		SetAuthToken(opts.Token).
		SetHeader("Accept", "application/json").
		OnAfterResponse(observeResponse)
	rc.OnError(observeError)

	passport := opts.PassportServiceOrigin
	if passport == "" {
		passport = opts.ItemServiceOrigin
	}
	return &Client{
		itemOrigin:     strings.TrimRight(opts.ItemServiceOrigin, "/"),
		passportOrigin: strings.TrimRight(passport, "/"),
		http:           rc,
	}
}

// Name returns the backend name.
func (c *Client) Name() string {
	return BackendName
}

// --- HTTP helpers ---

// apiError is the error body shape returned by the platform services.
type apiError struct {
	Message          string `json:"message"`
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// statusError maps an HTTP status to a domain sentinel. It returns nil for
// non-error statuses.
func statusError(status int, body []byte) error {
	if status < http.StatusBadRequest {
		return nil
	}
	msg := errorMessage(status, body)

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, msg)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, msg)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, msg)
	case http.StatusConflict:
		return fmt.Errorf("%w: %s", domain.ErrConflict, msg)
	}
	return fmt.Errorf("twinit: %s (HTTP %d)", msg, status)
}

func errorMessage(status int, body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil {
		switch {
		case e.ErrorDescription != "":
			return e.ErrorDescription
		case e.Message != "":
			return e.Message
		case e.Error != "":
			return e.Error
		}
	}
	if text := strings.TrimSpace(string(body)); text != "" && len(text) <= 200 {
		return text
	}
	return http.StatusText(status)
}

func (c *Client) do(ctx context.Context, method, rawURL string, params url.Values, body any) ([]byte, error) {
	req := c.http.R().SetContext(ctx)
	if len(params) > 0 {
		req.SetQueryParamsFromValues(params)
	}
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, rawURL)
	if err != nil {
		return nil, fmt.Errorf("twinit: request failed: %w", err)
	}
	if err := statusError(resp.StatusCode(), resp.Body()); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) itemURL(path string) string {
	return c.itemOrigin + "/itemsvc/api/v1" + path
}

func (c *Client) passportURL(path string) string {
	return c.passportOrigin + "/passportsvc/api/v1" + path
}

// listEnvelope is the platform's paged list wrapper.
type listEnvelope[T any] struct {
	List  []T `json:"_list"`
	Total int `json:"_total"`
}

// decodeList accepts either a bare JSON array or a {_list, _total}
// envelope. A missing _total is reported as the list length.
func decodeList[T any](body []byte) ([]T, int, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, 0, nil
	}
	if trimmed[0] == '[' {
		var list []T
		if err := json.Unmarshal(trimmed, &list); err != nil {
			return nil, 0, fmt.Errorf("twinit: failed to decode response: %w", err)
		}
		return list, len(list), nil
	}

	var env listEnvelope[T]
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, 0, fmt.Errorf("twinit: failed to decode response: %w", err)
	}
	total := env.Total
	if total == 0 {
		total = len(env.List)
	}
	return env.List, total, nil
}

func nsFilter(namespaces []string) string {
	return strings.Join(namespaces, ",")
}

func jsonParam(v any) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("twinit: failed to encode query parameter: %w", err)
	}
	return string(data), nil
}

func pageParam(pageSize int) string {
	return fmt.Sprintf(`{"_pageSize":%d}`, pageSize)
}
