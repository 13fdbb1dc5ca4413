package core

import (
	"context"

	"todoshare-backend-go/internal/models"
)

// Identity is the verified caller, as resolved by the auth middleware.
// Email may be empty (some auth providers do not supply one); Name is a
// display name when the token carried one.
type Identity struct {
	UID   string
	Email string
	Name  string
}

// AccessService decides whether a requester may exercise a capability on an
// owner's category.
type AccessService interface {
	// Authorize reports whether the requester holds the capability for the
	// (ownerUID, category) pair. Owners always pass; everyone else needs a
	// share grant covering the capability. The error return is for storage
	// failures only, never for denial.
	Authorize(ctx context.Context, requester Identity, ownerUID, category, capability string) (bool, error)
}

// ShareService is the share registry: the sharing lifecycle from grant to
// revoke, plus the listings both sides of a share see.
type ShareService interface {
	CreateOrUpdateShare(ctx context.Context, owner Identity, req models.CreateShareRequest) (*models.Share, error)
	RevokeShare(ctx context.Context, ownerUID, category, viewerEmail string) (int, error)
	LeaveShare(ctx context.Context, viewer Identity, ownerUID, category string) (int, error)
	ListMine(ctx context.Context, ownerUID string) ([]*models.Share, error)
	ListSharedWithMe(ctx context.Context, viewer Identity) ([]*models.SharedOwner, error)
	// LookupPermission returns the viewer's effective permission set for the
	// pair, or an empty set when no grant exists.
	LookupPermission(ctx context.Context, ownerUID, category string, viewer Identity) (models.PermissionSet, error)
	// ReconcileViewer promotes email-only shares to the viewer's uid; called
	// on login so grants issued before signup become uid-bound.
	ReconcileViewer(ctx context.Context, viewer Identity) (int, error)
}

// TodoService is the todo store gateway: category-scoped CRUD that consults
// the AccessService whenever the requester is not the data owner.
type TodoService interface {
	List(ctx context.Context, requester Identity, ownerUID, category string) ([]*models.Todo, error)
	Create(ctx context.Context, requester Identity, req models.CreateTodoRequest) (*models.Todo, error)
	Update(ctx context.Context, requester Identity, todoID string, req models.UpdateTodoRequest) (*models.Todo, error)
	// Remove deletes a todo by ID and returns the owning uid so callers can
	// reconcile shared views.
	Remove(ctx context.Context, requester Identity, todoID string) (string, error)
	RemoveByCategory(ctx context.Context, requester Identity, category, targetOwnerUID string) (int, error)
	ClearCompleted(ctx context.Context, requester Identity, category, targetOwnerUID string) (int, error)
}
