package twinit

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/xbocquet/twcatele/internal/metrics"
)

func observeResponse(_ *resty.Client, resp *resty.Response) error {
	service := serviceOf(resp.Request.URL)
	method := resp.Request.Method
	metrics.PlatformRequests.WithLabelValues(service, method, strconv.Itoa(resp.StatusCode())).Inc()
	metrics.PlatformRequestDuration.WithLabelValues(service, method).Observe(resp.Time().Seconds())
	return nil
}

func observeError(req *resty.Request, _ error) {
	metrics.PlatformRequests.WithLabelValues(serviceOf(req.URL), req.Method, "error").Inc()
}

// serviceOf returns the first path segment of a request URL ("itemsvc",
// "passportsvc"), or "unknown".
func serviceOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	path := strings.TrimPrefix(u.Path, "/")
	if path == "" {
		return "unknown"
	}
	service, _, _ := strings.Cut(path, "/")
	return service
}
