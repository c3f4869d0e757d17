package domain

import (
	"strings"

	"github.com/xbocquet/twcatele/internal/record"
)

// Project is a platform project. Namespaces scope every item query.
type Project struct {
	ID          string   `json:"_id"`
	Name        string   `json:"_name"`
	ShortName   string   `json:"_shortName,omitempty"`
	Description string   `json:"_description,omitempty"`
	Namespaces  []string `json:"_namespaces"`
}

// ProjectPage is one page of the project listing.
type ProjectPage struct {
	Projects []Project
	Total    int
}

// User is a platform user account.
type User struct {
	ID        string `json:"_id"`
	FirstName string `json:"_firstname,omitempty"`
	LastName  string `json:"_lastname,omitempty"`
	FullName  string `json:"_fullname,omitempty"`
	Email     string `json:"_email,omitempty"`
}

// DisplayName is "<first> <last>", trimmed.
func (u User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// SortName is "<last> <first>", trimmed.
func (u User) SortName() string {
	return strings.TrimSpace(u.LastName + " " + u.FirstName)
}

// Permissions holds the user group permission flags this client reads.
type Permissions struct {
	AccessAll bool `json:"accessAll,omitempty"`
}

// UserGroup is a project user group.
type UserGroup struct {
	ID          string      `json:"_id"`
	Name        string      `json:"_name"`
	Description string      `json:"_description,omitempty"`
	Permissions Permissions `json:"permissions"`
}

// Invite statuses reported by the platform.
const (
	InviteStatusPending = "PENDING"
	InviteStatusExpired = "EXPIRED"
)

// Invite is a pending or past invitation to a user group.
type Invite struct {
	ID     string `json:"_id,omitempty"`
	Email  string `json:"_email"`
	Status string `json:"_status,omitempty"`
}

// InviteParams are the template parameters attached to every invite.
type InviteParams struct {
	BaseURL     string `json:"base_url"`
	InviteLink  string `json:"invite_link"`
	Type        string `json:"type"`
	Name        string `json:"name"`
	InviterName string `json:"inviter_name"`
	BodyHeader  string `json:"body_header"`
	BodyContent string `json:"body_content"`
	Subject     string `json:"subject"`
}

// InviteRequest is one invitation sent to a user group.
type InviteRequest struct {
	Email  string       `json:"_email"`
	Params InviteParams `json:"_params"`
}

// ItemPage is one page of named user items.
type ItemPage struct {
	Items []record.Record
	Total int
}
