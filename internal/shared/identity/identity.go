package identity

import "github.com/google/uuid"

// Role is the role a caller acts under. The set is closed; credentials
// carrying any other value are rejected at the edge.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleChef     Role = "chef"
	RoleDriver   Role = "driver"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a role string against the closed set.
func ParseRole(s string) (Role, bool) {
	switch Role(s) {
	case RoleCustomer, RoleChef, RoleDriver, RoleStaff, RoleAdmin:
		return Role(s), true
	default:
		return "", false
	}
}

// IsOperator reports whether the role bypasses ownership checks.
func (r Role) IsOperator() bool {
	return r == RoleStaff || r == RoleAdmin
}

// Actor identifies who is performing an operation. It is resolved once
// at the HTTP edge and passed explicitly; services never read ambient
// request state.
type Actor struct {
	ID   uuid.UUID
	Role Role
}

// IsOperator reports whether the actor may bypass ownership checks.
func (a Actor) IsOperator() bool {
	return a.Role.IsOperator()
}
