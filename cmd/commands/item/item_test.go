package item

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/platform/platformtest"
	"github.com/xbocquet/twcatele/internal/record"
)

func execItem(t *testing.T, args ...string) (stdout, stderr string) {
	t.Helper()
	var outBuf, errBuf bytes.Buffer
	cmd := NewCommand()
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)
	cmd.Execute()
	return outBuf.String(), errBuf.String()
}

func testPlatform() *platformtest.Platform {
	return &platformtest.Platform{
		Projects: []domain.Project{{ID: "p1", Name: "Tower", Namespaces: []string{"ns1"}}},
		Collections: map[string][]record.Record{
			"NamedTelemetryCollection": {
				record.New("_id", "tc", "_name", "Sensors", "_itemClass", "NamedTelemetryCollection"),
			},
		},
		Items: map[string][]record.Record{
			"tc": {
				record.New("_id", "i1", "Description", "Boiler temp", "Unit", "°C"),
				record.New("_id", "i2", "SensorName", "alpha", "Unit", "kPa"),
				record.New("_id", "i3", "SensorName", "Charlie", "Kind", "flow"),
			},
		},
	}
}

func TestList_TelemetryNamesFromDescription(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, stderr := execItem(t, "list", "--project", "p1", "--collection", "tc")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	for _, want := range []string{"NAME", "UNIT", "Boiler temp", "alpha", "Charlie", "kPa", "Page 1 of 1 (3 items, 10 per page)"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestList_SortDescending(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, _ := execItem(t, "list", "--project", "p1", "--collection", "tc", "--sort", "name", "--desc")

	if !strings.Contains(stdout, "NAME ↓") {
		t.Errorf("expected descending indicator:\n%s", stdout)
	}
	charlie := strings.Index(stdout, "Charlie")
	alpha := strings.Index(stdout, "alpha")
	if charlie < 0 || alpha < 0 || charlie > alpha {
		t.Errorf("expected Charlie before alpha:\n%s", stdout)
	}
}

func TestList_Paging(t *testing.T) {
	p := testPlatform()
	var many []record.Record
	for i := 0; i < 12; i++ {
		many = append(many, record.New("_id", string(rune('a'+i)), "SensorName", string(rune('A'+i))))
	}
	p.Items["tc"] = many
	platformtest.Install(t, p)

	stdout, _ := execItem(t, "list", "--project", "p1", "--collection", "tc", "--page", "3", "--page-size", "5", "-o", "json")

	var rows []record.Record
	if err := json.Unmarshal([]byte(stdout), &rows); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(rows) != 2 || rows[0].ID() != "k" {
		t.Errorf("page 3 = %v", rows)
	}
}

func TestList_InvalidPageSize(t *testing.T) {
	platformtest.Install(t, testPlatform())

	_, stderr := execItem(t, "list", "--project", "p1", "--collection", "tc", "--page-size", "7")

	if !strings.Contains(stderr, "invalid page size 7") {
		t.Errorf("expected page size error, got: %s", stderr)
	}
}

func TestList_RequiresCollection(t *testing.T) {
	platformtest.Install(t, testPlatform())

	_, stderr := execItem(t, "list", "--project", "p1")

	if !strings.Contains(stderr, `required flag(s) "collection" not set`) {
		t.Errorf("expected required flag error, got: %s", stderr)
	}
}

func TestShow_Properties(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, _ := execItem(t, "show", "--project", "p1", "--collection", "tc", "i1")

	for _, want := range []string{"i1", "Boiler temp", "Unit:", "°C", "Description:"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("expected %q in output:\n%s", want, stdout)
		}
	}
}

func TestShow_NotFound(t *testing.T) {
	platformtest.Install(t, testPlatform())

	_, stderr := execItem(t, "show", "--project", "p1", "--collection", "tc", "nope")

	if !strings.Contains(stderr, `item "nope": resource not found`) {
		t.Errorf("expected not found error, got: %s", stderr)
	}
}
