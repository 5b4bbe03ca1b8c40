package identity_test

import (
	"testing"

	identity "github.com/rwandabill/go-identity"
	"github.com/stretchr/testify/assert"
)

func TestRoleAtLeast(t *testing.T) {
	tests := []struct {
		name string
		role identity.Role
		min  identity.Role
		want bool
	}{
		{"super admin is at least admin", identity.RoleSuperAdmin, identity.RoleAdmin, true},
		{"super admin is at least user", identity.RoleSuperAdmin, identity.RoleUser, true},
		{"admin is at least user", identity.RoleAdmin, identity.RoleUser, true},
		{"admin is not super admin", identity.RoleAdmin, identity.RoleSuperAdmin, false},
		{"user is not admin", identity.RoleUser, identity.RoleAdmin, false},
		{"role is at least itself", identity.RoleUser, identity.RoleUser, true},
		{"unknown role never qualifies", identity.Role("JANITOR"), identity.RoleUser, false},
		{"unknown minimum never matches", identity.RoleSuperAdmin, identity.Role("JANITOR"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, identity.RoleAtLeast(tt.role, tt.min))
		})
	}
}

func TestIsValidRole(t *testing.T) {
	for _, role := range identity.AllRoles() {
		assert.True(t, identity.IsValidRole(role))
	}
	assert.False(t, identity.IsValidRole("JANITOR"))
	assert.False(t, identity.IsValidRole(""))
}

func TestParseRole(t *testing.T) {
	role, ok := identity.ParseRole("ADMIN")
	assert.True(t, ok)
	assert.Equal(t, identity.RoleAdmin, role)

	_, ok = identity.ParseRole("nope")
	assert.False(t, ok)
}

func TestAuthorize(t *testing.T) {
	admin := identity.Actor{Email: "admin@example.com", Role: identity.RoleAdmin}
	user := identity.Actor{Email: "citizen@example.com", Role: identity.RoleUser}

	assert.NoError(t, identity.Authorize(admin, identity.RoleAdmin, identity.RoleSuperAdmin))

	err := identity.Authorize(user, identity.RoleAdmin, identity.RoleSuperAdmin)
	assert.Error(t, err)
	assert.True(t, identity.IsAuthorizationFailure(err))

	// authorization failures are distinct from credential failures
	assert.False(t, identity.IsAuthorizationFailure(identity.ErrInvalidCredentials))
}
