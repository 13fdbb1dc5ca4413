package core

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoshare-backend-go/internal/db"
	"todoshare-backend-go/internal/models"
)

func newShareServiceForTest() (*fakeShareRepository, *fakeIdentityDirectory, ShareService) {
	repo := newFakeShareRepository()
	directory := newFakeIdentityDirectory()
	return repo, directory, NewShareService(repo, directory)
}

func TestCreateShareNormalizesAndResolvesViewer(t *testing.T) {
	repo, directory, svc := newShareServiceForTest()
	directory.add(db.DirectoryUser{UID: "bob", Email: "bob@x.com", DisplayName: "Bob"})
	ctx := context.Background()

	alice := Identity{UID: "alice", Email: "alice@x.com", Name: "Alice"}
	share, err := svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{
		Category:    "  Shopping ",
		ViewerEmail: " Bob@X.com ",
		Permissions: []string{"write"},
	})
	require.NoError(t, err)

	assert.Equal(t, "shopping", share.Category)
	assert.Equal(t, "bob@x.com", share.ViewerEmail)
	assert.Equal(t, "bob", share.ViewerUID)
	assert.Equal(t, models.PermissionSet{"read", "write"}, share.Permissions)
	assert.Equal(t, "alice", share.OwnerUID)
	assert.False(t, share.CreatedAt.IsZero())
	assert.Equal(t, 1, repo.count())
}

func TestCreateShareUpsertIdempotence(t *testing.T) {
	repo, _, svc := newShareServiceForTest()
	ctx := context.Background()
	alice := Identity{UID: "alice", Email: "alice@x.com"}
	req := models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "bob@x.com",
		Permissions: []string{"write"},
	}

	first, err := svc.CreateOrUpdateShare(ctx, alice, req)
	require.NoError(t, err)
	second, err := svc.CreateOrUpdateShare(ctx, alice, req)
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, 1, repo.count())

	// Re-granting with a superset updates the one record in place.
	req.Permissions = []string{"read", "write", "edit", "delete"}
	third, err := svc.CreateOrUpdateShare(ctx, alice, req)
	require.NoError(t, err)
	assert.Equal(t, first.ID, third.ID)
	assert.Equal(t, 1, repo.count())

	stored, err := repo.FindGrant(ctx, "alice", "shopping", "", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, models.PermissionSet{"read", "write", "edit", "delete"}, stored.Permissions)
}

func TestCreateShareRejectsSelfShare(t *testing.T) {
	_, _, svc := newShareServiceForTest()
	ctx := context.Background()

	_, err := svc.CreateOrUpdateShare(ctx, Identity{UID: "alice", Email: "alice@x.com"}, models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "ALICE@x.com",
		Permissions: []string{"read", "write", "edit", "delete"},
	})
	assert.ErrorIs(t, err, ErrSelfShare)
}

func TestCreateShareValidation(t *testing.T) {
	_, _, svc := newShareServiceForTest()
	ctx := context.Background()
	alice := Identity{UID: "alice", Email: "alice@x.com"}

	_, err := svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{ViewerEmail: "bob@x.com"})
	assert.ErrorIs(t, err, ErrValidation)

	_, err = svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{Category: "shopping"})
	assert.ErrorIs(t, err, ErrValidation)
}

func TestCreateShareEmailOnlyWhenViewerUnknown(t *testing.T) {
	repo, _, svc := newShareServiceForTest()
	ctx := context.Background()

	// No directory entry for the email: the grant stays email-only.
	share, err := svc.CreateOrUpdateShare(ctx, Identity{UID: "alice", Email: "alice@x.com"}, models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "new.user@x.com",
		Permissions: []string{"edit"},
	})
	require.NoError(t, err)
	assert.Empty(t, share.ViewerUID)

	// When the viewer signs in, reconciliation binds the grant to their uid.
	promoted, err := svc.ReconcileViewer(ctx, Identity{UID: "new-uid", Email: "New.User@x.com"})
	require.NoError(t, err)
	assert.Equal(t, 1, promoted)

	stored, err := repo.FindGrant(ctx, "alice", "shopping", "new-uid", "")
	require.NoError(t, err)
	assert.Equal(t, "new-uid", stored.ViewerUID)

	// Running reconciliation again is a no-op.
	promoted, err = svc.ReconcileViewer(ctx, Identity{UID: "new-uid", Email: "new.user@x.com"})
	require.NoError(t, err)
	assert.Zero(t, promoted)
}

func TestRevokeShareIdempotent(t *testing.T) {
	_, _, svc := newShareServiceForTest()
	ctx := context.Background()
	alice := Identity{UID: "alice", Email: "alice@x.com"}

	// Revoking a grant that never existed is a zero-count success.
	deleted, err := svc.RevokeShare(ctx, "alice", "shopping", "bob@x.com")
	require.NoError(t, err)
	assert.Zero(t, deleted)

	_, err = svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "bob@x.com",
	})
	require.NoError(t, err)

	deleted, err = svc.RevokeShare(ctx, "alice", "shopping", "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = svc.RevokeShare(ctx, "alice", "shopping", "bob@x.com")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestLeaveShareMatchesEitherIdentity(t *testing.T) {
	_, directory, svc := newShareServiceForTest()
	directory.add(db.DirectoryUser{UID: "bob", Email: "bob@x.com"})
	ctx := context.Background()
	alice := Identity{UID: "alice", Email: "alice@x.com"}

	_, err := svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "bob@x.com",
	})
	require.NoError(t, err)

	// The viewer leaves using their uid even though a different session email
	// casing is presented.
	deleted, err := svc.LeaveShare(ctx, Identity{UID: "bob", Email: "BOB@x.com"}, "alice", "shopping")
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)

	deleted, err = svc.LeaveShare(ctx, Identity{UID: "bob", Email: "bob@x.com"}, "alice", "shopping")
	require.NoError(t, err)
	assert.Zero(t, deleted)
}

func TestListSharedWithMeGroupsByOwner(t *testing.T) {
	_, directory, svc := newShareServiceForTest()
	ctx := context.Background()

	alice := Identity{UID: "alice", Email: "alice@x.com", Name: "Alice"}
	dave := Identity{UID: "dave", Email: "dave@y.com"} // no display name stored

	for _, category := range []string{"shopping", "work"} {
		_, err := svc.CreateOrUpdateShare(ctx, alice, models.CreateShareRequest{
			Category:    category,
			ViewerEmail: "bob@x.com",
			Permissions: []string{"write"},
		})
		require.NoError(t, err)
	}
	_, err := svc.CreateOrUpdateShare(ctx, dave, models.CreateShareRequest{
		Category:    "errands",
		ViewerEmail: "bob@x.com",
	})
	require.NoError(t, err)

	// Dave's display name comes from the directory during enrichment.
	directory.add(db.DirectoryUser{UID: "dave", Email: "dave@y.com", DisplayName: "Dave D"})

	owners, err := svc.ListSharedWithMe(ctx, Identity{UID: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	require.Len(t, owners, 2)

	byUID := make(map[string]*models.SharedOwner)
	for _, owner := range owners {
		byUID[owner.OwnerUID] = owner
	}

	aliceGroup := byUID["alice"]
	require.NotNil(t, aliceGroup)
	assert.Equal(t, []string{"shopping", "work"}, aliceGroup.Categories)
	assert.Equal(t, "Alice", aliceGroup.OwnerName)
	assert.Contains(t, aliceGroup.CategoriesMeta, "shopping")
	assert.False(t, aliceGroup.CategoriesMeta["shopping"].CreatedAt.IsZero())

	daveGroup := byUID["dave"]
	require.NotNil(t, daveGroup)
	assert.Equal(t, []string{"errands"}, daveGroup.Categories)
	assert.Equal(t, "Dave D", daveGroup.OwnerName)
}

func TestListSharedWithMeEnrichmentFallback(t *testing.T) {
	_, directory, svc := newShareServiceForTest()
	ctx := context.Background()

	// Owner stored no display name and the directory is down: grouping still
	// works, and the name falls back to the email local part.
	_, err := svc.CreateOrUpdateShare(ctx, Identity{UID: "dave", Email: "dave@y.com"}, models.CreateShareRequest{
		Category:    "errands",
		ViewerEmail: "bob@x.com",
	})
	require.NoError(t, err)
	directory.fail = true

	owners, err := svc.ListSharedWithMe(ctx, Identity{UID: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	require.Len(t, owners, 1)
	assert.Equal(t, "dave", owners[0].OwnerName)
	assert.Equal(t, "dave@y.com", owners[0].OwnerEmail)
}

func TestLookupPermission(t *testing.T) {
	_, _, svc := newShareServiceForTest()
	ctx := context.Background()

	_, err := svc.CreateOrUpdateShare(ctx, Identity{UID: "alice", Email: "alice@x.com"}, models.CreateShareRequest{
		Category:    "shopping",
		ViewerEmail: "bob@x.com",
		Permissions: []string{"edit"},
	})
	require.NoError(t, err)

	perms, err := svc.LookupPermission(ctx, "alice", "shopping", Identity{UID: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Equal(t, models.PermissionSet{"read", "edit"}, perms)

	// No grant: an empty set, not an error.
	perms, err = svc.LookupPermission(ctx, "alice", "home", Identity{UID: "bob", Email: "bob@x.com"})
	require.NoError(t, err)
	assert.Empty(t, perms)
}
