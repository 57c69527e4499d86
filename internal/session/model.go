package session

import "strings"

// Role is the closed set of portal actors. Roles arrive case-insensitive on
// the wire and are normalized here once; every later comparison is plain
// enum equality.
type Role string

const (
	RoleAdmin     Role = "ADMIN"
	RoleVolunteer Role = "VOLUNTEER"
	RoleDonor     Role = "DONOR"
	RoleGuest     Role = "GUEST"
)

// ParseRole normalizes a wire role to the enum. Anything unrecognized is a
// Guest, which no protected view accepts.
func ParseRole(raw string) Role {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "ADMIN":
		return RoleAdmin
	case "VOLUNTEER":
		return RoleVolunteer
	case "DONOR":
		return RoleDonor
	default:
		return RoleGuest
	}
}

// Status describes the session lifecycle.
type Status string

const (
	StatusAnonymous Status = "ANONYMOUS"
	StatusActive    Status = "ACTIVE"
	StatusExpired   Status = "EXPIRED"
)

// Identity is the authenticated user as reported by the backend.
type Identity struct {
	UserID        string `json:"userId"`
	Name          string `json:"name"`
	Email         string `json:"email"`
	Role          Role   `json:"role"`
	EmailVerified bool   `json:"emailVerified"`
}

// Session is an immutable snapshot of the current authentication state. The
// Store hands out copies; nothing outside the Store mutates one.
type Session struct {
	Identity   Identity
	Credential string
	Status     Status
}

// Active reports whether the session may be used for role-gated decisions.
func (s Session) Active() bool { return s.Status == StatusActive }
