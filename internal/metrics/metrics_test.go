package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPlatformRequestsCounter(t *testing.T) {
	c := PlatformRequests.WithLabelValues("itemsvc", "GET", "200")
	before := testutil.ToFloat64(c)
	c.Inc()
	if got := testutil.ToFloat64(c); got != before+1 {
		t.Errorf("counter = %v, want %v", got, before+1)
	}
}

func TestWriteFile(t *testing.T) {
	ReadingsFetched.WithLabelValues("twinit").Add(3)

	path := filepath.Join(t.TempDir(), "metrics.prom")
	if err := WriteFile(path); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read metrics file: %v", err)
	}
	if !strings.Contains(string(data), `twcatele_readings_fetched_total{backend="twinit"}`) {
		t.Errorf("metrics file missing readings counter:\n%s", data)
	}
}
