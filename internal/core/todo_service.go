package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"todoshare-backend-go/internal/db"
	"todoshare-backend-go/internal/models"
)

// ErrTodoNotFound is returned when a referenced todo id does not exist.
var ErrTodoNotFound = errors.New("todo not found")

// todoService implements the TodoService interface.
//
// Every operation acting on another owner's data asks the AccessService for
// the specific capability before touching the store; owners skip the check
// entirely.
type todoService struct {
	todoRepo db.TodoRepository
	access   AccessService
}

// NewTodoService creates a new TodoService instance.
func NewTodoService(todoRepo db.TodoRepository, access AccessService) TodoService {
	return &todoService{
		todoRepo: todoRepo,
		access:   access,
	}
}

// List returns todos newest first. With no owner (or the requester as owner)
// it returns the requester's own todos across all categories. For another
// owner a category is required and an existing grant on it; any grant implies
// read, so this effectively checks that a share exists.
func (s *todoService) List(ctx context.Context, requester Identity, ownerUID, category string) ([]*models.Todo, error) {
	if s.todoRepo == nil || s.access == nil {
		return nil, errors.New("todoService: component not initialized")
	}

	if ownerUID == "" || ownerUID == requester.UID {
		todos, err := s.todoRepo.ListByOwner(ctx, requester.UID)
		if err != nil {
			return nil, fmt.Errorf("failed to list todos for user '%s': %w", requester.UID, err)
		}
		return todos, nil
	}

	category = models.NormalizeCategory(category)
	if category == "" {
		return nil, fmt.Errorf("%w: category required for shared view", ErrValidation)
	}
	if err := s.authorize(ctx, requester, ownerUID, category, models.PermRead); err != nil {
		return nil, err
	}

	todos, err := s.todoRepo.ListByOwnerAndCategory(ctx, ownerUID, category)
	if err != nil {
		return nil, fmt.Errorf("failed to list shared todos for owner '%s', category '%s': %w", ownerUID, category, err)
	}
	return todos, nil
}

// Create inserts a new todo. When the request targets another owner the
// requester needs "write" on the category, and the stored todo belongs to the
// target owner, not the writer.
func (s *todoService) Create(ctx context.Context, requester Identity, req models.CreateTodoRequest) (*models.Todo, error) {
	if s.todoRepo == nil || s.access == nil {
		return nil, errors.New("todoService: component not initialized")
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrValidation)
	}
	category := models.NormalizeCategory(req.Category)
	if category == "" {
		category = models.DefaultCategory
	}

	ownerUID := requester.UID
	if req.OwnerUID != "" && req.OwnerUID != requester.UID {
		ownerUID = req.OwnerUID
		if err := s.authorize(ctx, requester, ownerUID, category, models.PermWrite); err != nil {
			return nil, err
		}
	}

	todo := &models.Todo{
		UID:       ownerUID,
		Text:      text,
		Completed: false,
		Category:  category,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.todoRepo.Create(ctx, todo); err != nil {
		return nil, fmt.Errorf("failed to create todo for owner '%s': %w", ownerUID, err)
	}
	return todo, nil
}

// Update partially updates a todo. At least one field must be provided.
// Non-owners need "edit" on the todo's current category and, when the update
// moves the todo to another category, "edit" on the destination category too;
// both checks run before any write, so the update commits all provided fields
// or none.
func (s *todoService) Update(ctx context.Context, requester Identity, todoID string, req models.UpdateTodoRequest) (*models.Todo, error) {
	if s.todoRepo == nil || s.access == nil {
		return nil, errors.New("todoService: component not initialized")
	}
	if req.Text == nil && req.Completed == nil && req.Category == nil {
		return nil, fmt.Errorf("%w: no fields", ErrValidation)
	}

	existing, err := s.getTodo(ctx, todoID)
	if err != nil {
		return nil, err
	}

	isOwner := existing.UID == requester.UID
	if !isOwner {
		if err := s.authorize(ctx, requester, existing.UID, existing.Category, models.PermEdit); err != nil {
			return nil, err
		}
	}

	fields := make(map[string]interface{})
	if req.Text != nil {
		text := strings.TrimSpace(*req.Text)
		if text == "" {
			return nil, fmt.Errorf("%w: text cannot be empty", ErrValidation)
		}
		fields["text"] = text
		existing.Text = text
	}
	if req.Completed != nil {
		fields["completed"] = *req.Completed
		existing.Completed = *req.Completed
	}
	if req.Category != nil {
		newCategory := models.NormalizeCategory(*req.Category)
		if newCategory == "" {
			return nil, fmt.Errorf("%w: category cannot be empty", ErrValidation)
		}
		if newCategory != existing.Category {
			// A category move is re-validated against the destination so edit
			// rights on one category cannot be parlayed into another.
			if !isOwner {
				if err := s.authorize(ctx, requester, existing.UID, newCategory, models.PermEdit); err != nil {
					return nil, err
				}
			}
			fields["category"] = newCategory
			existing.Category = newCategory
		}
	}

	if len(fields) > 0 {
		if err := s.todoRepo.UpdateFields(ctx, todoID, fields); err != nil {
			if errors.Is(err, db.ErrNotFound) {
				return nil, fmt.Errorf("%w: id '%s'", ErrTodoNotFound, todoID)
			}
			return nil, fmt.Errorf("failed to update todo '%s': %w", todoID, err)
		}
	}
	return existing, nil
}

// Remove deletes a todo by ID, requiring "delete" for non-owners, and returns
// the owning uid.
func (s *todoService) Remove(ctx context.Context, requester Identity, todoID string) (string, error) {
	if s.todoRepo == nil || s.access == nil {
		return "", errors.New("todoService: component not initialized")
	}

	existing, err := s.getTodo(ctx, todoID)
	if err != nil {
		return "", err
	}
	if existing.UID != requester.UID {
		if err := s.authorize(ctx, requester, existing.UID, existing.Category, models.PermDelete); err != nil {
			return "", err
		}
	}

	if err := s.todoRepo.Delete(ctx, todoID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return "", fmt.Errorf("%w: id '%s'", ErrTodoNotFound, todoID)
		}
		return "", fmt.Errorf("failed to delete todo '%s': %w", todoID, err)
	}
	return existing.UID, nil
}

// RemoveByCategory deletes every todo in the target owner's category,
// requiring "delete" for non-owners. Returns the number deleted.
func (s *todoService) RemoveByCategory(ctx context.Context, requester Identity, category, targetOwnerUID string) (int, error) {
	if s.todoRepo == nil || s.access == nil {
		return 0, errors.New("todoService: component not initialized")
	}
	category = models.NormalizeCategory(category)
	if category == "" {
		return 0, fmt.Errorf("%w: category is required", ErrValidation)
	}

	ownerUID := requester.UID
	if targetOwnerUID != "" && targetOwnerUID != requester.UID {
		ownerUID = targetOwnerUID
		if err := s.authorize(ctx, requester, ownerUID, category, models.PermDelete); err != nil {
			return 0, err
		}
	}

	deleted, err := s.todoRepo.DeleteByCategory(ctx, ownerUID, category)
	if err != nil {
		return deleted, fmt.Errorf("failed to delete todos in category '%s' for owner '%s': %w", category, ownerUID, err)
	}
	return deleted, nil
}

// ClearCompleted deletes the target owner's completed todos, optionally scoped
// to one category, requiring "delete" for non-owners. Returns the number deleted.
func (s *todoService) ClearCompleted(ctx context.Context, requester Identity, category, targetOwnerUID string) (int, error) {
	if s.todoRepo == nil || s.access == nil {
		return 0, errors.New("todoService: component not initialized")
	}
	category = models.NormalizeCategory(category)

	ownerUID := requester.UID
	if targetOwnerUID != "" && targetOwnerUID != requester.UID {
		// Shares are category-scoped, so clearing another owner's completed
		// todos only makes sense within one shared category.
		if category == "" {
			return 0, fmt.Errorf("%w: category required for shared view", ErrValidation)
		}
		ownerUID = targetOwnerUID
		if err := s.authorize(ctx, requester, ownerUID, category, models.PermDelete); err != nil {
			return 0, err
		}
	}

	deleted, err := s.todoRepo.DeleteCompleted(ctx, ownerUID, category)
	if err != nil {
		return deleted, fmt.Errorf("failed to clear completed todos for owner '%s': %w", ownerUID, err)
	}
	return deleted, nil
}

// getTodo fetches a todo, translating the store's not-found into ErrTodoNotFound.
func (s *todoService) getTodo(ctx context.Context, todoID string) (*models.Todo, error) {
	if todoID == "" {
		return nil, fmt.Errorf("%w: todo id is required", ErrValidation)
	}
	todo, err := s.todoRepo.GetByID(ctx, todoID)
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return nil, fmt.Errorf("%w: id '%s'", ErrTodoNotFound, todoID)
		}
		return nil, fmt.Errorf("failed to get todo '%s': %w", todoID, err)
	}
	return todo, nil
}

// authorize wraps the access check, collapsing denial into plain ErrForbidden
// so callers never learn whether a share exists.
func (s *todoService) authorize(ctx context.Context, requester Identity, ownerUID, category, capability string) error {
	allowed, err := s.access.Authorize(ctx, requester, ownerUID, category, capability)
	if err != nil {
		return fmt.Errorf("authorization check failed for owner '%s', category '%s': %w", ownerUID, category, err)
	}
	if !allowed {
		return ErrForbidden
	}
	return nil
}
