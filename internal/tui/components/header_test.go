package components

import (
	"strings"
	"testing"
)

func TestEnvHost(t *testing.T) {
	tests := map[string]string{
		"https://sandbox-api.invicara.com/": "sandbox-api.invicara.com",
		"http://localhost:8083":             "localhost:8083",
		"":                                  "",
	}
	for in, want := range tests {
		if got := envHost(in); got != want {
			t.Errorf("envHost(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestHeader_ShowsHostAndBreadcrumb(t *testing.T) {
	out := Header(80, "Tower > Sensors", "https://sandbox-api.invicara.com")
	for _, want := range []string{"twcatele", "Tower > Sensors", "sandbox-api.invicara.com"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in header:\n%s", want, out)
		}
	}
	if strings.Contains(out, "https://") {
		t.Errorf("scheme not stripped:\n%s", out)
	}
}

func TestHeaderFooter_TooNarrow(t *testing.T) {
	if Header(5, "x", "y") != "" {
		t.Error("expected empty header below 10 columns")
	}
	if Footer(80, nil) != "" {
		t.Error("expected empty footer without bindings")
	}
}

func TestFooter_RendersBindings(t *testing.T) {
	out := Footer(80, []KeyBinding{{Key: "q", Desc: "quit"}, {Key: "enter", Desc: "open"}})
	for _, want := range []string{"q quit", "enter open"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in footer:\n%s", want, out)
		}
	}
}
