package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/groups"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
)

// ErrAborted is returned when a user cancels an interactive flow.
var ErrAborted = errors.New("aborted by user")

// InviteSelection is what the invite wizard collected.
type InviteSelection struct {
	GroupIDs []string
	Emails   *groups.EmailList
}

type groupData struct {
	mine    []domain.UserGroup
	current *domain.UserGroup
}

// InviteForm walks the user through picking user groups and entering the
// addresses to invite. Groups given in preselected start checked; without
// any, the current group does.
func InviteForm(svc *groups.Service, preselected, emails []string) (*InviteSelection, error) {
	accessible := os.Getenv("ACCESSIBLE") != ""

	var data groupData
	fetchErr := spinner.New().
		Title("Fetching user groups...").
		Accessible(accessible).
		Output(os.Stderr).
		ActionWithErr(func(spinCtx context.Context) error {
			var err error
			data, err = fetchGroups(spinCtx, svc)
			return err
		}).
		Run()
	if fetchErr != nil {
		if errors.Is(fetchErr, huh.ErrUserAborted) || errors.Is(fetchErr, context.Canceled) {
			return nil, ErrAborted
		}
		return nil, fetchErr
	}
	if len(data.mine) == 0 {
		return nil, fmt.Errorf("you are not a member of any user group in this project")
	}

	selected := slices.Clone(preselected)
	if len(selected) == 0 && data.current != nil {
		selected = []string{data.current.ID}
	}
	emailText := strings.Join(emails, "\n")
	confirmed := true

	groupField := huh.NewMultiSelect[string]().
		Title("User groups").
		Description("Every address is invited to each selected group.").
		Options(buildGroupOptions(data.mine, selected)...).
		Value(&selected).
		Height(selectHeight(len(data.mine), 10)).
		Validate(func(v []string) error {
			if len(v) == 0 {
				return errors.New("select at least one user group")
			}
			return nil
		})

	emailField := huh.NewText().
		Title("Email addresses").
		Description("One per line or separated by commas.").
		Value(&emailText).
		Validate(func(v string) error {
			list, err := ParseEmails(v)
			if err != nil {
				return err
			}
			if list.Len() == 0 {
				return groups.ErrEmailRequired
			}
			return nil
		})

	if err := runForm(accessible, huh.NewGroup(groupField), huh.NewGroup(emailField)); err != nil {
		return nil, err
	}

	list, err := ParseEmails(emailText)
	if err != nil {
		return nil, err
	}

	summary := huh.NewNote().
		Title("Send invitations").
		Description(inviteSummary(data.mine, selected, list))
	confirm := huh.NewConfirm().
		Title("Send now?").
		Affirmative("Send").
		Negative("Cancel").
		Value(&confirmed)
	if err := runForm(accessible, huh.NewGroup(summary, confirm)); err != nil {
		return nil, err
	}
	if !confirmed {
		return nil, ErrAborted
	}

	return &InviteSelection{GroupIDs: selected, Emails: list}, nil
}

// runForm creates and runs a huh.Form, translating ErrUserAborted to ErrAborted.
func runForm(accessible bool, groups ...*huh.Group) error {
	err := huh.NewForm(groups...).WithAccessible(accessible).Run()
	if err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return ErrAborted
		}
		return err
	}
	return nil
}

// fetchGroups loads the user's groups and resolves the current one.
func fetchGroups(ctx context.Context, svc *groups.Service) (groupData, error) {
	var data groupData
	mine, err := svc.MyGroups(ctx)
	if err != nil {
		return data, err
	}
	data.mine = mine
	current, err := svc.Current(data.mine)
	if err != nil {
		return data, err
	}
	data.current = current
	return data, nil
}

// ParseEmails splits free text on newlines, commas and semicolons into an
// invite list. Blank entries are skipped; the first rejected address stops
// parsing.
func ParseEmails(text string) (*groups.EmailList, error) {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == '\n' || r == ',' || r == ';'
	})
	list := &groups.EmailList{}
	for _, f := range fields {
		if strings.TrimSpace(f) == "" {
			continue
		}
		if err := list.Add(f); err != nil {
			return list, fmt.Errorf("%w: %s", err, strings.TrimSpace(f))
		}
	}
	return list, nil
}

func buildGroupOptions(mine []domain.UserGroup, selected []string) []huh.Option[string] {
	options := make([]huh.Option[string], 0, len(mine))
	for _, g := range mine {
		label := g.Name
		if g.Description != "" {
			label += " - " + g.Description
		}
		options = append(options, huh.NewOption(label, g.ID).Selected(slices.Contains(selected, g.ID)))
	}
	return options
}

func inviteSummary(mine []domain.UserGroup, selected []string, emails *groups.EmailList) string {
	var names []string
	for _, g := range mine {
		if slices.Contains(selected, g.ID) {
			names = append(names, g.Name)
		}
	}
	return fmt.Sprintf("Groups:  %s\nEmails:  %s", strings.Join(names, ", "), strings.Join(emails.All(), ", "))
}

func selectHeight(optionCount, max int) int {
	if optionCount < max {
		return optionCount
	}
	return max
}
