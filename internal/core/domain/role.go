package domain

import "fmt"

// Role is an independent authentication identity space. Each role owns
// exactly one credential slot.
type Role string

const (
	// RoleNone marks unauthenticated calls (login, public metadata).
	RoleNone    Role = ""
	RoleStaff   Role = "staff"
	RoleEndUser Role = "end_user"
)

// Roles lists every role that owns a credential slot.
var Roles = []Role{RoleStaff, RoleEndUser}

// Valid reports whether r owns a credential slot.
func (r Role) Valid() bool {
	switch r {
	case RoleStaff, RoleEndUser:
		return true
	}
	return false
}

func (r Role) String() string {
	if r == RoleNone {
		return "none"
	}
	return string(r)
}

// ParseRole converts user input into a Role. "admin" is accepted as an alias
// for staff and "user" for end_user.
func ParseRole(s string) (Role, error) {
	switch s {
	case "staff", "admin":
		return RoleStaff, nil
	case "end_user", "user", "enduser":
		return RoleEndUser, nil
	}
	return RoleNone, fmt.Errorf("%w: %q", ErrUnknownRole, s)
}

// CredentialKey is the storage key of r's credential slot. Keys are always
// role-qualified: no two roles ever share one.
func CredentialKey(r Role) string {
	return string(r) + "_token"
}
