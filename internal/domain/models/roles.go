// internal/domain/models/roles.go
package models

// Canonical role identifiers.
//
// These values are stored in the role field of the users, instructors, and
// admins collections and are used by the authorization middleware to match
// route policies. Tokens carry the role as an opaque string, so any new role
// must be added here to be considered valid.
const (
	RoleStudent    = "user"
	RoleInstructor = "instructor"
	RoleAdmin      = "admin"
)

// Roles is the full set of allowed role identifiers.
var Roles = []string{
	RoleStudent,
	RoleInstructor,
	RoleAdmin,
}

// IsValidRole checks if a value is a known role.
func IsValidRole(value string) bool {
	for _, r := range Roles {
		if r == value {
			return true
		}
	}
	return false
}
