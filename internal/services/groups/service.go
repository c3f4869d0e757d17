// Package groups manages the user groups of a project: the current user's
// groups and selected group, group members, and invitations.
package groups

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/xbocquet/twcatele/internal/groupprefs"
	"github.com/xbocquet/twcatele/internal/platform/domain"
)

const (
	// UsersPageSize is the number of members fetched per group.
	UsersPageSize = 200

	// AdminGroupName marks the administrators group.
	AdminGroupName = "Admin"

	inviteBodyHeader = "Twinit Carbon App"
	inviteType       = "Project"
)

// ErrNothingToSend is returned by SendInvites without groups or emails.
var ErrNothingToSend = errors.New("Please select at least one user group and add at least one email")

// Service is the user group business logic layer.
type Service struct {
	passport domain.Passport
	prefs    groupprefs.Repository
	project  domain.Project
}

// New returns a Service for one project. prefs may be nil, in which case
// the first group is always current and Switch is not persisted.
func New(passport domain.Passport, prefs groupprefs.Repository, project domain.Project) *Service {
	return &Service{passport: passport, prefs: prefs, project: project}
}

// Project returns the project the service works on.
func (s *Service) Project() domain.Project {
	return s.project
}

func (s *Service) namespaces() []string {
	if s.project.Namespaces == nil {
		return []string{}
	}
	return s.project.Namespaces
}

// MyGroups returns the groups the current user belongs to.
func (s *Service) MyGroups(ctx context.Context) ([]domain.UserGroup, error) {
	return s.passport.MyUserGroups(ctx, s.namespaces())
}

// AllGroups returns every group of the project.
func (s *Service) AllGroups(ctx context.Context) ([]domain.UserGroup, error) {
	return s.passport.UserGroups(ctx, s.namespaces())
}

// Current picks the current group from mine: the stored preference when
// the user is still a member, else the first group. It returns nil when
// mine is empty.
func (s *Service) Current(mine []domain.UserGroup) (*domain.UserGroup, error) {
	if len(mine) == 0 {
		return nil, nil
	}
	if s.prefs == nil {
		return &mine[0], nil
	}
	pref, err := s.prefs.Get(s.project.ID)
	if err != nil {
		return nil, err
	}
	if pref != nil {
		for i := range mine {
			if mine[i].ID == pref.GroupID {
				return &mine[i], nil
			}
		}
	}
	return &mine[0], nil
}

// Switch stores groupID as the project's current group. The user must be
// a member of it.
func (s *Service) Switch(mine []domain.UserGroup, groupID string) (*domain.UserGroup, error) {
	var selected *domain.UserGroup
	for i := range mine {
		if mine[i].ID == groupID {
			selected = &mine[i]
			break
		}
	}
	if selected == nil {
		return nil, fmt.Errorf("user group %q: %w", groupID, domain.ErrNotFound)
	}
	if s.prefs != nil {
		if err := s.prefs.Save(&groupprefs.GroupPref{ProjectID: s.project.ID, GroupID: groupID}); err != nil {
			return nil, err
		}
	}
	return selected, nil
}

// IsAdmin reports whether the user is an administrator: the first group of
// the project named Admin or granting accessAll must be one of mine.
func IsAdmin(all, mine []domain.UserGroup) bool {
	var admin *domain.UserGroup
	for i := range all {
		if all[i].Name == AdminGroupName || all[i].Permissions.AccessAll {
			admin = &all[i]
			break
		}
	}
	if admin == nil {
		return false
	}
	for _, g := range mine {
		if g.ID == admin.ID {
			return true
		}
	}
	return false
}

// Users returns the members of a group sorted by "<last> <first>",
// case-insensitively.
func (s *Service) Users(ctx context.Context, groupID string) ([]domain.User, error) {
	users, err := s.passport.GroupUsers(ctx, s.namespaces(), groupID, 0, UsersPageSize)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(users, func(i, j int) bool {
		return strings.ToLower(users[i].SortName()) < strings.ToLower(users[j].SortName())
	})
	return users, nil
}

// Invites are the invitations of a group split by status.
type Invites struct {
	Pending []domain.Invite `json:"pending"`
	Expired []domain.Invite `json:"expired"`
}

// Invites fetches a group's invitations. Statuses other than PENDING and
// EXPIRED are dropped.
func (s *Service) Invites(ctx context.Context, groupID string) (Invites, error) {
	list, err := s.passport.GroupInvites(ctx, s.namespaces(), groupID)
	if err != nil {
		return Invites{}, err
	}
	out := Invites{Pending: []domain.Invite{}, Expired: []domain.Invite{}}
	for _, inv := range list {
		switch inv.Status {
		case domain.InviteStatusPending:
			out.Pending = append(out.Pending, inv)
		case domain.InviteStatusExpired:
			out.Expired = append(out.Expired, inv)
		}
	}
	return out, nil
}

// InviterName is "<first> <last>" of the inviting user, or fallback when
// the user is unknown.
func InviterName(user *domain.User, fallback string) string {
	if user == nil {
		return fallback
	}
	return user.DisplayName()
}

// BuildInviteParams fills the invitation template for project.
func BuildInviteParams(baseRoot, inviteLink string, project domain.Project, inviter *domain.User) domain.InviteParams {
	return domain.InviteParams{
		BaseURL:     baseRoot,
		InviteLink:  inviteLink,
		Type:        inviteType,
		Name:        project.Name,
		InviterName: InviterName(inviter, "User"),
		BodyHeader:  inviteBodyHeader,
		BodyContent: fmt.Sprintf("%s has invited you to join the Project %s.", InviterName(inviter, "A user"), project.Name),
		Subject:     "Invitation to join " + project.Name,
	}
}

// SendResult is the outcome of SendInvites.
type SendResult struct {
	Sent    int
	Groups  int
	Invites map[string]Invites
}

// SendInvites invites every address to every group, one group after the
// other, then refreshes the invitations of each group in the same order.
func (s *Service) SendInvites(ctx context.Context, groupIDs []string, emails *EmailList, params domain.InviteParams) (*SendResult, error) {
	if len(groupIDs) == 0 || emails.Len() == 0 {
		return nil, ErrNothingToSend
	}

	requests := make([]domain.InviteRequest, 0, emails.Len())
	for _, email := range emails.All() {
		requests = append(requests, domain.InviteRequest{Email: email, Params: params})
	}

	for _, id := range groupIDs {
		if err := s.passport.InviteUsers(ctx, s.namespaces(), id, requests); err != nil {
			return nil, fmt.Errorf("failed to send invites to group %s: %w", id, err)
		}
	}

	result := &SendResult{Sent: len(requests), Groups: len(groupIDs), Invites: map[string]Invites{}}
	for _, id := range groupIDs {
		inv, err := s.Invites(ctx, id)
		if err != nil {
			return result, fmt.Errorf("invites sent, but refreshing group %s failed: %w", id, err)
		}
		result.Invites[id] = inv
	}
	return result, nil
}
