package enums

import "fmt"

// Role is the platform-level role carried by every authenticated identity.
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleInvestor Role = "Investor"
	RoleFarmer   Role = "Farmer"
	RolePartner  Role = "Partner"
)

var validRoles = []Role{
	RoleAdmin,
	RoleInvestor,
	RoleFarmer,
	RolePartner,
}

// String implements fmt.Stringer.
func (r Role) String() string {
	return string(r)
}

// IsValid reports whether the value is a known Role.
func (r Role) IsValid() bool {
	for _, candidate := range validRoles {
		if candidate == r {
			return true
		}
	}
	return false
}

// SelfRegistrable reports whether a user may sign up with this role.
func (r Role) SelfRegistrable() bool {
	switch r {
	case RoleInvestor, RoleFarmer, RolePartner:
		return true
	default:
		return false
	}
}

// ParseRole converts raw input into a Role.
func ParseRole(value string) (Role, error) {
	for _, candidate := range validRoles {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid role %q", value)
}
