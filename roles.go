package identity

// Role is the principal's role
type Role = string

const (
	// RoleUser is an ordinary registered account
	RoleUser Role = "USER"
	// RoleAdmin manages a single municipal service
	RoleAdmin Role = "ADMIN"
	// RoleSuperAdmin is the one bootstrap account that manages admins
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

// IsValidRole checks if the role is one of the predefined valid roles
func IsValidRole(r Role) bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	default:
		return false
	}
}

// RoleAtLeast checks if the role meets the minimum required level
func RoleAtLeast(r, minRole Role) bool {
	roleHierarchy := map[Role]int{
		RoleUser:       0,
		RoleAdmin:      1,
		RoleSuperAdmin: 2,
	}

	currentLevel, exists := roleHierarchy[r]
	if !exists {
		return false
	}

	minLevel, exists := roleHierarchy[minRole]
	if !exists {
		return false
	}

	return currentLevel >= minLevel
}

// HasCapability reports whether the caller role is in the required set.
func HasCapability(callerRole Role, required ...Role) bool {
	for _, role := range required {
		if callerRole == role {
			return true
		}
	}
	return false
}

// Authorize gates a privileged operation on the actor's role. It returns
// ErrNotAuthorized when the actor holds none of the required roles.
func Authorize(actor Actor, required ...Role) error {
	if HasCapability(actor.Role, required...) {
		return nil
	}
	return ErrNotAuthorized
}

// AllRoles returns the predefined roles in hierarchical order
func AllRoles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin}
}

// ParseRole safely parses a string into a Role
func ParseRole(roleStr string) (Role, bool) {
	role := Role(roleStr)
	return role, IsValidRole(role)
}
