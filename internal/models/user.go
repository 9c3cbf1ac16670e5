package models

import (
	"time"
)

// User is provisioned from the external identity provider on first login.
// No password is stored; authentication is fully federated.
type User struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	EntraOID    string    `gorm:"uniqueIndex;size:255;not null" json:"-"` // IdP object id
	Email       string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name        string    `gorm:"size:255" json:"name"`
	LastLoginAt time.Time `json:"last_login_at"`
	CreatedAt   time.Time `json:"created_at"`
}

// DisplayName prefers the IdP-provided name, falling back to the email.
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Email
}

// IsAdmin reports whether the user is on the admin email allowlist.
func (u *User) IsAdmin(adminEmails []string) bool {
	for _, e := range adminEmails {
		if e == u.Email {
			return true
		}
	}
	return false
}
