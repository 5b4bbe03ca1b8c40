package identity_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/google/uuid"
	identity "github.com/rwandabill/go-identity"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestFlow(t *testing.T) (*identity.ApprovalFlow, *identity.Service, identity.RepositoryManager) {
	t.Helper()

	repo := identity.NewRepositoryManager(newTestDB(t))
	cfg := testConfig()
	return identity.NewApprovalFlow(repo, cfg), identity.NewService(repo, cfg), repo
}

func TestSetApprovalStatus(t *testing.T) {
	ctx := context.Background()
	flow, service, _ := newTestFlow(t)

	superAdmin, _, err := service.SignupSuperAdmin(ctx, signupRequest("root@example.com"))
	require.NoError(t, err)
	actor := identity.ActorFor(superAdmin)

	created, err := service.Signup(ctx, signupRequest("citizen@example.com"))
	require.NoError(t, err)

	t.Run("approve", func(t *testing.T) {
		updated, err := flow.SetApprovalStatus(ctx, actor, created.ID, true, "")
		require.NoError(t, err)

		assert.True(t, updated.Approved)
		assert.True(t, updated.IsActive)
		require.NotNil(t, updated.ApprovedAt)
		assert.Equal(t, "root@example.com", updated.ApprovedBy)
		assert.Nil(t, updated.RejectionReason)
	})

	t.Run("reject clears the approval trail", func(t *testing.T) {
		updated, err := flow.SetApprovalStatus(ctx, actor, created.ID, false, "incomplete docs")
		require.NoError(t, err)

		assert.False(t, updated.Approved)
		assert.False(t, updated.IsActive)
		assert.Nil(t, updated.ApprovedAt)
		assert.Empty(t, updated.ApprovedBy)
		require.NotNil(t, updated.RejectionReason)
		assert.Equal(t, "incomplete docs", *updated.RejectionReason)
	})

	t.Run("re-approval clears the rejection reason", func(t *testing.T) {
		updated, err := flow.SetApprovalStatus(ctx, actor, created.ID, true, "")
		require.NoError(t, err)

		assert.True(t, updated.Approved)
		assert.Nil(t, updated.RejectionReason)
	})

	t.Run("status survives a fresh read", func(t *testing.T) {
		current, err := flow.GetStatus(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, current.Approved)
		assert.Equal(t, "root@example.com", current.ApprovedBy)
	})

	t.Run("unknown principal", func(t *testing.T) {
		_, err := flow.SetApprovalStatus(ctx, actor, uuid.New(), true, "")
		assert.ErrorIs(t, err, identity.ErrPrincipalNotFound)

		_, err = flow.GetStatus(ctx, uuid.New())
		assert.ErrorIs(t, err, identity.ErrPrincipalNotFound)
	})

	t.Run("user caller is refused", func(t *testing.T) {
		user := identity.Actor{Email: "citizen@example.com", Role: identity.RoleUser}
		_, err := flow.SetApprovalStatus(ctx, user, created.ID, true, "")
		assert.True(t, identity.IsAuthorizationFailure(err))
	})
}

func TestListPending(t *testing.T) {
	ctx := context.Background()
	flow, service, _ := newTestFlow(t)

	superAdmin, _, err := service.SignupSuperAdmin(ctx, signupRequest("root@example.com"))
	require.NoError(t, err)
	actor := identity.ActorFor(superAdmin)

	var pending []uuid.UUID
	for i := 0; i < 5; i++ {
		created, err := service.Signup(ctx, signupRequest(fmt.Sprintf("citizen%d@example.com", i)))
		require.NoError(t, err)
		pending = append(pending, created.ID)
	}

	// approve one so it falls out of the queue
	_, err = flow.SetApprovalStatus(ctx, actor, pending[0], true, "")
	require.NoError(t, err)

	t.Run("walks pages until exhaustion", func(t *testing.T) {
		var seen []uuid.UUID
		token := ""
		pages := 0
		for {
			page, err := flow.ListPending(ctx, actor, token)
			require.NoError(t, err)
			pages++

			for _, p := range page.Items {
				assert.False(t, p.Approved)
				seen = append(seen, p.ID)
			}
			if page.NextPageToken == "" {
				break
			}
			token = page.NextPageToken
		}

		assert.Equal(t, 2, pages, "page size of 2 splits four pending rows in two")
		assert.ElementsMatch(t, pending[1:], seen)
	})

	t.Run("admin caller may read the queue", func(t *testing.T) {
		admin := identity.Actor{Email: "admin@example.com", Role: identity.RoleAdmin}
		page, err := flow.ListPending(ctx, admin, "")
		require.NoError(t, err)
		assert.NotEmpty(t, page.Items)
	})

	t.Run("user caller is refused", func(t *testing.T) {
		user := identity.Actor{Email: "citizen0@example.com", Role: identity.RoleUser}
		_, err := flow.ListPending(ctx, user, "")
		assert.True(t, identity.IsAuthorizationFailure(err))
	})

	t.Run("garbage page token", func(t *testing.T) {
		_, err := flow.ListPending(ctx, actor, "not a token")
		assert.Error(t, err)
	})
}
