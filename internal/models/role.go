package models

// Role is the closed set of organization roles. Owner equality overrides the
// stored role to RoleAdmin at resolution time.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleDeveloper Role = "developer"
	RoleProduct   Role = "product"
	RoleNone      Role = ""
)

// ParseRole maps a stored role string onto the closed set. Unknown strings
// resolve to RoleNone rather than leaking through as free-form values.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleAdmin, RoleDeveloper, RoleProduct:
		return Role(s)
	default:
		return RoleNone
	}
}

// Assignable reports whether the role may be granted to a member on approval.
func (r Role) Assignable() bool {
	switch r {
	case RoleAdmin, RoleDeveloper, RoleProduct:
		return true
	default:
		return false
	}
}

// CanManageGoals reports whether the role may create goals and view the
// application queue's admin-only surfaces.
func (r Role) CanManageGoals() bool {
	return r == RoleAdmin || r == RoleProduct
}

func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}
