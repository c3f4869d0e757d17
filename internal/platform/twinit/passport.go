package twinit

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/xbocquet/twcatele/internal/platform/domain"
)

// CurrentUser returns the user owning the session token.
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	body, err := c.do(ctx, http.MethodGet, c.passportURL("/users/me"), nil, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load current user: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(body, &u); err != nil {
		return nil, fmt.Errorf("twinit: failed to decode current user: %w", err)
	}
	return &u, nil
}

// Logout ends the session on the platform.
func (c *Client) Logout(ctx context.Context) error {
	if _, err := c.do(ctx, http.MethodPost, c.passportURL("/logout"), nil, nil); err != nil {
		return fmt.Errorf("failed to log out: %w", err)
	}
	return nil
}

// UserGroups returns every user group of the project namespaces.
func (c *Client) UserGroups(ctx context.Context, namespaces []string) ([]domain.UserGroup, error) {
	return c.listGroups(ctx, "/usergroups", namespaces)
}

// MyUserGroups returns the groups the current user belongs to.
func (c *Client) MyUserGroups(ctx context.Context, namespaces []string) ([]domain.UserGroup, error) {
	return c.listGroups(ctx, "/users/me/usergroups", namespaces)
}

func (c *Client) listGroups(ctx context.Context, path string, namespaces []string) ([]domain.UserGroup, error) {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))

	body, err := c.do(ctx, http.MethodGet, c.passportURL(path), params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	groups, _, err := decodeList[domain.UserGroup](body)
	if err != nil {
		return nil, fmt.Errorf("failed to list user groups: %w", err)
	}
	return groups, nil
}

// GroupUsers returns one page of a group's members.
func (c *Client) GroupUsers(ctx context.Context, namespaces []string, groupID string, offset, pageSize int) ([]domain.User, error) {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))
	params.Set("_offset", strconv.Itoa(offset))
	params.Set("_pageSize", strconv.Itoa(pageSize))

	body, err := c.do(ctx, http.MethodGet, c.groupURL(groupID, "/users"), params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list users of group %s: %w", groupID, err)
	}
	users, _, err := decodeList[domain.User](body)
	if err != nil {
		return nil, fmt.Errorf("failed to list users of group %s: %w", groupID, err)
	}
	return users, nil
}

// GroupInvites returns every invite of a group.
func (c *Client) GroupInvites(ctx context.Context, namespaces []string, groupID string) ([]domain.Invite, error) {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))

	body, err := c.do(ctx, http.MethodGet, c.groupURL(groupID, "/invites"), params, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites of group %s: %w", groupID, err)
	}
	invites, _, err := decodeList[domain.Invite](body)
	if err != nil {
		return nil, fmt.Errorf("failed to list invites of group %s: %w", groupID, err)
	}
	return invites, nil
}

// InviteUsers sends invites to a group in one request.
func (c *Client) InviteUsers(ctx context.Context, namespaces []string, groupID string, invites []domain.InviteRequest) error {
	params := url.Values{}
	params.Set("nsfilter", nsFilter(namespaces))

	if _, err := c.do(ctx, http.MethodPost, c.groupURL(groupID, "/invites"), params, invites); err != nil {
		return fmt.Errorf("failed to invite users to group %s: %w", groupID, err)
	}
	return nil
}

func (c *Client) groupURL(groupID, suffix string) string {
	return c.passportURL("/usergroups/" + url.PathEscape(groupID) + suffix)
}
