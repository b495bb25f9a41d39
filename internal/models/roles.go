package models

// Role is the position a profile holds inside a business.
type Role string

const (
	RoleOwner Role = "owner"
	RoleStaff Role = "staff"
)

// Valid reports whether r is one of the roles offered at signup.
func (r Role) Valid() bool {
	switch r {
	case RoleOwner, RoleStaff:
		return true
	}
	return false
}
