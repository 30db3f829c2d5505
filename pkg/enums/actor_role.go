package enums

import "fmt"

// ActorRole identifies who a JWT was minted for.
type ActorRole string

const (
	ActorRoleCustomer   ActorRole = "cliente"
	ActorRoleAdmin      ActorRole = "admin"
	ActorRoleSuperAdmin ActorRole = "super_admin"
)

var validActorRoles = []ActorRole{
	ActorRoleCustomer,
	ActorRoleAdmin,
	ActorRoleSuperAdmin,
}

// String implements fmt.Stringer.
func (r ActorRole) String() string {
	return string(r)
}

// IsValid reports whether the value is a known ActorRole.
func (r ActorRole) IsValid() bool {
	for _, candidate := range validActorRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// IsAdmin reports whether the role grants access to the back office.
func (r ActorRole) IsAdmin() bool {
	return r == ActorRoleAdmin || r == ActorRoleSuperAdmin
}

// ParseActorRole converts raw input into an ActorRole.
func ParseActorRole(value string) (ActorRole, error) {
	for _, candidate := range validActorRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid actor role %q", value)
}
