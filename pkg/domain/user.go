package domain

import "slices"

// User is the signed-in identity as reported by the API.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	Roles       []string `json:"roles,omitempty"`
	DisplayName string   `json:"display_name,omitempty"`
}

// HasRole reports whether the user carries role.
func (u User) HasRole(role string) bool {
	return slices.Contains(u.Roles, role)
}

// Name returns the display name, or the email when none is set.
func (u User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// Clone returns a copy that shares no memory with u.
func (u User) Clone() User {
	u.Roles = slices.Clone(u.Roles)
	return u
}
