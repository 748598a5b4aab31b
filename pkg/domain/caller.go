package domain

import (
	"strings"

	dErrors "admitly/pkg/domain-errors"
)

// Role is the coarse authorization role carried in access tokens.
type Role string

const (
	RoleStudent    Role = "STUDENT"
	RoleCounsellor Role = "COUNSELLOR"
	RoleAdmin      Role = "ADMIN"
)

// IsStaff reports whether the role may act across all students' data.
func (r Role) IsStaff() bool {
	return r == RoleCounsellor || r == RoleAdmin
}

// ParseRole validates a role string from an untrusted source (token claims).
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleStudent:
		return RoleStudent, nil
	case RoleCounsellor:
		return RoleCounsellor, nil
	case RoleAdmin:
		return RoleAdmin, nil
	default:
		return "", dErrors.New(dErrors.CodeUnauthorized, "unknown role")
	}
}

// Caller is the authenticated identity behind a request. It is passed
// explicitly into every service operation; services never read identity from
// ambient state.
type Caller struct {
	ID   UserID
	Role Role
}

// IsZero reports whether the caller carries no identity.
func (c Caller) IsZero() bool { return c.ID.IsZero() }
