package project

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/platform/platformtest"
)

func execProject(t *testing.T, args ...string) (stdout, stderr string) {
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
		Projects: []domain.Project{
			{ID: "p2", Name: "zeta site", Namespaces: []string{"ns_z"}},
			{ID: "p1", Name: "Alpha Tower", ShortName: "alpha", Namespaces: []string{"ns_a", "ns_b"}},
		},
	}
}

func TestList_SortedTable(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, stderr := execProject(t, "list")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	alpha := strings.Index(stdout, "Alpha Tower")
	zeta := strings.Index(stdout, "zeta site")
	if alpha < 0 || zeta < 0 || alpha > zeta {
		t.Errorf("expected projects sorted by name:\n%s", stdout)
	}
	if !strings.Contains(stdout, "ns_a,ns_b") {
		t.Errorf("expected namespaces column:\n%s", stdout)
	}
}

func TestList_JSON(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, _ := execProject(t, "list", "-o", "json")

	var projects []domain.Project
	if err := json.Unmarshal([]byte(stdout), &projects); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, stdout)
	}
	if len(projects) != 2 || projects[0].ID != "p1" {
		t.Errorf("projects = %+v", projects)
	}
}

func TestList_Unauthorized(t *testing.T) {
	p := testPlatform()
	p.ProjectsErr = domain.ErrUnauthorized
	platformtest.Install(t, p)

	_, stderr := execProject(t, "list")

	if !strings.Contains(stderr, "Failed to load projects: Authentication failed.") {
		t.Errorf("expected auth failure message, got: %s", stderr)
	}
	if !strings.Contains(stderr, "twcatele auth login") {
		t.Errorf("expected login hint, got: %s", stderr)
	}
}

func TestList_BadOutput(t *testing.T) {
	platformtest.Install(t, testPlatform())

	_, stderr := execProject(t, "list", "-o", "yaml")

	if !strings.Contains(stderr, "unsupported output format") {
		t.Errorf("expected output format error, got: %s", stderr)
	}
}

func TestUse_SavesCurrentProject(t *testing.T) {
	platformtest.Install(t, testPlatform())

	stdout, stderr := execProject(t, "use", "p2")

	if stderr != "" {
		t.Errorf("unexpected stderr: %s", stderr)
	}
	if !strings.Contains(stdout, `"zeta site"`) {
		t.Errorf("expected confirmation, got: %s", stdout)
	}
	cfg, err := config.LoadFile()
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if cfg.CurrentProject != "p2" {
		t.Errorf("CurrentProject = %q, want p2", cfg.CurrentProject)
	}

	listOut, _ := execProject(t, "list")
	for _, line := range strings.Split(listOut, "\n") {
		if strings.Contains(line, "zeta site") && !strings.HasPrefix(line, "*") {
			t.Errorf("expected current project marked: %q", line)
		}
	}
}

func TestUse_UnknownProject(t *testing.T) {
	platformtest.Install(t, testPlatform())

	_, stderr := execProject(t, "use", "missing")

	if !strings.Contains(stderr, "resource not found") {
		t.Errorf("expected not found error, got: %s", stderr)
	}
}
