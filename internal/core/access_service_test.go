package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoshare-backend-go/internal/models"
)

func TestAuthorizeOwnerBypass(t *testing.T) {
	repo := newFakeShareRepository()
	access := NewAccessService(repo)
	ctx := context.Background()

	// With zero share records, owners pass for every capability.
	owner := Identity{UID: "alice", Email: "alice@x.com"}
	for _, capability := range []string{models.PermRead, models.PermWrite, models.PermEdit, models.PermDelete} {
		allowed, err := access.Authorize(ctx, owner, "alice", "anything", capability)
		require.NoError(t, err)
		assert.True(t, allowed, "owner must bypass share lookup for %q", capability)
	}
}

func TestAuthorizeNoShareDenies(t *testing.T) {
	repo := newFakeShareRepository()
	access := NewAccessService(repo)
	ctx := context.Background()

	// Read is only implied once a share exists; it is not a public default.
	allowed, err := access.Authorize(ctx, Identity{UID: "bob", Email: "bob@x.com"}, "alice", "shopping", models.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthorizeGrantedCapabilities(t *testing.T) {
	repo := newFakeShareRepository()
	access := NewAccessService(repo)
	ctx := context.Background()

	_, err := repo.Create(ctx, &models.Share{
		OwnerUID:    "alice",
		Category:    "shopping",
		ViewerUID:   "bob",
		ViewerEmail: "bob@x.com",
		Permissions: models.PermissionSet{"read", "write"},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	bob := Identity{UID: "bob", Email: "bob@x.com"}

	allowed, err := access.Authorize(ctx, bob, "alice", "shopping", models.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = access.Authorize(ctx, bob, "alice", "shopping", models.PermWrite)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = access.Authorize(ctx, bob, "alice", "shopping", models.PermDelete)
	require.NoError(t, err)
	assert.False(t, allowed)

	// Grant is scoped to its category.
	allowed, err = access.Authorize(ctx, bob, "alice", "home", models.PermRead)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthorizeReadImpliedByReadOnlyGrant(t *testing.T) {
	repo := newFakeShareRepository()
	access := NewAccessService(repo)
	ctx := context.Background()

	// A grant that stored only ["read"] (or nothing at all) still answers
	// true for read: any existing share implies it.
	_, err := repo.Create(ctx, &models.Share{
		OwnerUID:    "alice",
		Category:    "shopping",
		ViewerEmail: "carol@x.com",
		Permissions: nil,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	carol := Identity{UID: "carol", Email: "carol@x.com"}
	allowed, err := access.Authorize(ctx, carol, "alice", "shopping", models.PermRead)
	require.NoError(t, err)
	assert.True(t, allowed)

	allowed, err = access.Authorize(ctx, carol, "alice", "shopping", models.PermWrite)
	require.NoError(t, err)
	assert.False(t, allowed)
}

func TestAuthorizeMatchesByEmailWhenUIDUnbound(t *testing.T) {
	repo := newFakeShareRepository()
	access := NewAccessService(repo)
	ctx := context.Background()

	// Email-only share: the viewer had no account when the grant was made.
	_, err := repo.Create(ctx, &models.Share{
		OwnerUID:    "alice",
		Category:    "shopping",
		ViewerEmail: "bob@x.com",
		Permissions: models.PermissionSet{"read", "edit"},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)

	allowed, err := access.Authorize(ctx, Identity{UID: "bob-uid", Email: "BOB@x.com"}, "alice", "shopping", models.PermEdit)
	require.NoError(t, err)
	assert.True(t, allowed)
}
