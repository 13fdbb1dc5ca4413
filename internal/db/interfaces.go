package db

import (
	"context"
	"errors"

	"todoshare-backend-go/internal/models"
)

// ErrNotFound is returned when a document does not exist in the store.
var ErrNotFound = errors.New("document not found")

// ShareRepository defines the interface for share grant storage operations.
// A viewer is matched by uid when the grant carries one, or by lowercased
// email otherwise; both forms must keep working until reconciliation runs.
type ShareRepository interface {
	Create(ctx context.Context, share *models.Share) (string, error) // Returns new share ID
	Update(ctx context.Context, share *models.Share) error
	// FindGrant returns the share for (ownerUID, category) matching the viewer
	// by uid OR email. Returns ErrNotFound when no grant exists.
	FindGrant(ctx context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (*models.Share, error)
	// DeleteByViewerEmail removes all grants for (ownerUID, category,
	// viewerEmailLower) and returns the number deleted; zero is not an error.
	DeleteByViewerEmail(ctx context.Context, ownerUID, category, viewerEmailLower string) (int, error)
	// DeleteByViewer is the viewer-keyed variant, matching by uid OR email.
	DeleteByViewer(ctx context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (int, error)
	ListByOwner(ctx context.Context, ownerUID string) ([]*models.Share, error)
	ListByViewer(ctx context.Context, viewerUID, viewerEmailLower string) ([]*models.Share, error)
	// PromoteViewer stamps viewerUID onto email-only grants for the given
	// email, returning the number of shares promoted.
	PromoteViewer(ctx context.Context, viewerEmailLower, viewerUID string) (int, error)
}

// TodoRepository defines the interface for todo item storage operations.
type TodoRepository interface {
	Create(ctx context.Context, todo *models.Todo) (string, error) // Returns new todo ID
	GetByID(ctx context.Context, todoID string) (*models.Todo, error)
	// UpdateFields applies the given field updates to one document as a single
	// write; either every field commits or none do.
	UpdateFields(ctx context.Context, todoID string, fields map[string]interface{}) error
	Delete(ctx context.Context, todoID string) error
	ListByOwner(ctx context.Context, ownerUID string) ([]*models.Todo, error)
	ListByOwnerAndCategory(ctx context.Context, ownerUID, category string) ([]*models.Todo, error)
	DeleteByCategory(ctx context.Context, ownerUID, category string) (int, error)
	// DeleteCompleted removes completed todos for the owner; an empty category
	// means all categories. Returns the number deleted.
	DeleteCompleted(ctx context.Context, ownerUID, category string) (int, error)
}
