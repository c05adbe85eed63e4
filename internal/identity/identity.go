// Package identity is the narrow seam to the external authentication
// collaborator. The board services only ever need two facts about the acting
// user: that the user exists, and which roles they hold. Session resolution,
// tokens, and credentials all live upstream.
package identity

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/careboard/go-board-backend/internal/repo"
)

// Role names with elevated board permissions.
const (
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// ErrUnknownUser is returned when the acting user id resolves to nothing
// (a broken session). Callers surface it; they never substitute a default
// identity.
var ErrUnknownUser = errors.New("unknown user")

// Role is one named role held by a user.
type Role struct {
	Name string `json:"name"`
}

// User is the resolved acting identity.
type User struct {
	ID    string `json:"id"`
	Roles []Role `json:"roles"`
}

// HasRole reports whether the user holds the named role.
func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r.Name == name {
			return true
		}
	}
	return false
}

// CanModerate reports whether the user may perform moderation actions.
func (u *User) CanModerate() bool {
	return u.HasRole(RoleModerator) || u.HasRole(RoleAdmin)
}

// IsAdmin reports whether the user may administer categories.
func (u *User) IsAdmin() bool { return u.HasRole(RoleAdmin) }

// Directory resolves user ids to identities. Implementations must be safe
// for concurrent use.
type Directory interface {
	ResolveUser(ctx context.Context, userID string) (*User, error)
}

// GormDirectory is the default Directory backed by the local users table.
type GormDirectory struct {
	DB *gorm.DB
}

// ResolveUser implements Directory. A missing row maps to ErrUnknownUser.
func (d *GormDirectory) ResolveUser(ctx context.Context, userID string) (*User, error) {
	u, err := repo.GetUser(ctx, d.DB, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUnknownUser
		}
		return nil, err
	}
	roles := make([]Role, 0, len(u.Roles))
	for _, name := range u.Roles {
		roles = append(roles, Role{Name: name})
	}
	return &User{ID: u.ID, Roles: roles}, nil
}
