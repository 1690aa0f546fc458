package entity

// Role represents the type of role a user can have in the system.
type Role string

const (
	// RoleCustomer is assigned to every self-registered account.
	RoleCustomer Role = "customer"
	// RoleAdmin may manage the product catalog.
	RoleAdmin Role = "admin"
)

// String returns the string representation of the Role.
func (r Role) String() string {
	return string(r)
}

// IsValid checks if the Role is a valid value.
func (r Role) IsValid() bool {
	switch r {
	case RoleCustomer, RoleAdmin:
		return true
	default:
		return false
	}
}

// ParseRole converts a raw claim into a Role, reporting whether it is known.
func ParseRole(s string) (Role, bool) {
	r := Role(s)

	return r, r.IsValid()
}
