// Package user provides the user domain model and data access.
package user

import (
	"strings"
	"time"
)

// DefaultAvatarURL is assigned to accounts that never uploaded a picture.
const DefaultAvatarURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_1280.png"

// Role gates access to admin-only endpoints.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAgent Role = "AGENT"
	RoleAdmin Role = "ADMIN"
)

// ParseRole maps a request string to a Role, defaulting to USER
// for unknown values.
func ParseRole(s string) Role {
	switch Role(strings.ToUpper(strings.TrimSpace(s))) {
	case RoleAgent:
		return RoleAgent
	case RoleAdmin:
		return RoleAdmin
	}
	return RoleUser
}

// User represents a registered account.
// Password holds the bcrypt hash and is never serialized.
type User struct {
	ID        int64     `json:"id"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"-"`
	Phone     string    `json:"phone,omitempty"`
	Avatar    string    `json:"avatar"`
	Role      Role      `json:"role"`
	IsActive  bool      `json:"isActive"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// FullName returns "First Last", falling back to the username when
// both name parts are blank.
func (u *User) FullName() string {
	name := strings.TrimSpace(strings.TrimSpace(u.FirstName) + " " + strings.TrimSpace(u.LastName))
	if name == "" {
		return u.Username
	}
	return name
}

// IsAdmin reports whether the user may access admin endpoints.
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// Public returns a copy stripped down to what other users may see.
func (u *User) Public() *User {
	return &User{
		ID:        u.ID,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Username:  u.Username,
		Avatar:    u.Avatar,
		Role:      u.Role,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
