package groups

import (
	"errors"
	"slices"

	"github.com/xbocquet/twcatele/internal/util"
)

// Errors reported while building the invite address list.
var (
	ErrEmailRequired  = errors.New("Email is required")
	ErrEmailInvalid   = errors.New("Invalid email address")
	ErrEmailDuplicate = errors.New("Email already added")
)

// EmailList is the ordered, duplicate-free set of addresses to invite.
type EmailList struct {
	emails []string
}

// NewEmailList adds every address in order, stopping at the first
// rejected one.
func NewEmailList(emails ...string) (*EmailList, error) {
	l := &EmailList{}
	for _, e := range emails {
		if err := l.Add(e); err != nil {
			return l, err
		}
	}
	return l, nil
}

// Add normalizes and validates email before appending it.
func (l *EmailList) Add(email string) error {
	email = util.NormalizeEmail(email)
	if email == "" {
		return ErrEmailRequired
	}
	if util.ValidateEmail(email) != nil {
		return ErrEmailInvalid
	}
	if slices.Contains(l.emails, email) {
		return ErrEmailDuplicate
	}
	l.emails = append(l.emails, email)
	return nil
}

// Remove drops an address; unknown addresses are ignored.
func (l *EmailList) Remove(email string) {
	email = util.NormalizeEmail(email)
	l.emails = slices.DeleteFunc(l.emails, func(e string) bool { return e == email })
}

// Len returns the number of addresses. A nil list is empty.
func (l *EmailList) Len() int {
	if l == nil {
		return 0
	}
	return len(l.emails)
}

// All returns a copy of the addresses in insertion order.
func (l *EmailList) All() []string {
	if l == nil {
		return nil
	}
	return slices.Clone(l.emails)
}
