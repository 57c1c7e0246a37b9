package models

import "time"

// Role is the closed set of user roles. Anything outside RoleSuperadmin and
// RoleEmployee is treated as having no rights.
type Role string

const (
	RoleSuperadmin Role = "superadmin"
	RoleEmployee   Role = "employee"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperadmin, RoleEmployee:
		return true
	default:
		return false
	}
}

// ParseRole maps a raw role string to a Role. An empty string yields the
// default role (employee).
func ParseRole(s string) (Role, bool) {
	if s == "" {
		return RoleEmployee, true
	}
	r := Role(s)
	return r, r.Valid()
}

// User represents an account in the system.
// It maps to the `users` table.
type User struct {
	ID           string    `db:"id" json:"id"`
	Name         string    `db:"name" json:"name"`
	Email        string    `db:"email" json:"email"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Role         Role      `db:"role" json:"role"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
}
