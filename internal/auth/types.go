package auth

import (
	"regexp"
	"time"
)

// emailPattern is a deliberately loose check: one @, no spaces,
// something either side. Full RFC 5322 validation is not worth it.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks that an address looks plausible enough to store.
func IsValidEmail(email string) bool {
	return len(email) <= 254 && emailPattern.MatchString(email)
}

// Role represents an authorisation tier in the dashboard.
type Role string

const (
	// RoleViewer can read fleet state: devices, locations, alerts,
	// schedule rules. No mutations.
	RoleViewer Role = "viewer"

	// RoleOperator can edit schedules, run sync sessions, and
	// acknowledge alerts, but cannot manage users or clients.
	RoleOperator Role = "operator"

	// RoleAdmin has full control including user and client management.
	RoleAdmin Role = "admin"
)

// ValidRoles is the set of assignable user roles.
var ValidRoles = []Role{RoleViewer, RoleOperator, RoleAdmin}

// IsValidRole returns true if the role is assignable to a user account.
func IsValidRole(r Role) bool {
	for _, v := range ValidRoles {
		if r == v {
			return true
		}
	}
	return false
}

// AtLeast reports whether the role grants at least the given tier.
func (r Role) AtLeast(min Role) bool {
	return rank(r) >= rank(min)
}

func rank(r Role) int {
	switch r {
	case RoleViewer:
		return 1
	case RoleOperator:
		return 2
	case RoleAdmin:
		return 3
	}
	return 0
}

// User represents a dashboard account.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	Role         Role      `json:"role"`
	PasswordHash string    `json:"-"` // never serialised
	Enabled      bool      `json:"enabled"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
