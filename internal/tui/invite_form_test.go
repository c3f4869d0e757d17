package tui

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/groups"
)

type optionPair struct {
	Key   string
	Value string
}

func TestBuildGroupOptions(t *testing.T) {
	mine := []domain.UserGroup{
		{ID: "g1", Name: "Admin"},
		{ID: "g2", Name: "Viewers", Description: "Read only"},
	}

	options := buildGroupOptions(mine, []string{"g2"})

	var pairs []optionPair
	for _, o := range options {
		pairs = append(pairs, optionPair{Key: o.Key, Value: o.Value})
	}
	want := []optionPair{
		{Key: "Admin", Value: "g1"},
		{Key: "Viewers - Read only", Value: "g2"},
	}
	if diff := cmp.Diff(want, pairs); diff != "" {
		t.Errorf("unexpected group options (-want +got):\n%s", diff)
	}
}

func TestParseEmails(t *testing.T) {
	list, err := ParseEmails(" Ada@Example.com \nbob@example.com, carol@example.com;\n\n")
	if err != nil {
		t.Fatalf("ParseEmails: %v", err)
	}
	want := []string{"ada@example.com", "bob@example.com", "carol@example.com"}
	if diff := cmp.Diff(want, list.All()); diff != "" {
		t.Errorf("emails mismatch (-want +got):\n%s", diff)
	}
}

func TestParseEmails_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want error
	}{
		{"invalid", "ada@example.com\nnope", groups.ErrEmailInvalid},
		{"duplicate", "ada@example.com, ADA@example.com", groups.ErrEmailDuplicate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseEmails(tt.in)
			if !errors.Is(err, tt.want) {
				t.Errorf("ParseEmails(%q) error = %v, want %v", tt.in, err, tt.want)
			}
		})
	}
}

func TestInviteSummary(t *testing.T) {
	mine := []domain.UserGroup{{ID: "g1", Name: "Admin"}, {ID: "g2", Name: "Viewers"}}
	list, _ := groups.NewEmailList("a@example.com", "b@example.com")

	got := inviteSummary(mine, []string{"g2"}, list)

	want := "Groups:  Viewers\nEmails:  a@example.com, b@example.com"
	if got != want {
		t.Errorf("inviteSummary() = %q, want %q", got, want)
	}
}

func TestSelectHeight(t *testing.T) {
	if got := selectHeight(3, 10); got != 3 {
		t.Errorf("selectHeight(3, 10) = %d, want 3", got)
	}
	if got := selectHeight(30, 10); got != 10 {
		t.Errorf("selectHeight(30, 10) = %d, want 10", got)
	}
}
