package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"todoshare-backend-go/internal/models"
)

const todosCollection = "todos"

// firestoreTodoRepository implements the TodoRepository interface using Firestore.
type firestoreTodoRepository struct {
	client *firestore.Client
}

// NewFirestoreTodoRepository creates a new instance of firestoreTodoRepository.
func NewFirestoreTodoRepository(client *firestore.Client) TodoRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for TodoRepository.")
	}
	return &firestoreTodoRepository{client: client}
}

// Create adds a new todo document with an auto-generated ID and sets todo.ID
// before writing.
func (r *firestoreTodoRepository) Create(ctx context.Context, todo *models.Todo) (string, error) {
	docRef := r.client.Collection(todosCollection).NewDoc()
	todo.ID = docRef.ID
	if _, err := docRef.Create(ctx, todo); err != nil {
		return "", fmt.Errorf("failed to create todo: %w", err)
	}
	return docRef.ID, nil
}

// GetByID retrieves a todo document by its ID.
func (r *firestoreTodoRepository) GetByID(ctx context.Context, todoID string) (*models.Todo, error) {
	if todoID == "" {
		return nil, errors.New("todoID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(todosCollection).Doc(todoID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("todo with ID '%s' not found: %w", todoID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get todo with ID '%s': %w", todoID, err)
	}

	var todo models.Todo
	if err := docSnap.DataTo(&todo); err != nil {
		return nil, fmt.Errorf("failed to decode todo data for ID '%s': %w", todoID, err)
	}
	todo.ID = docSnap.Ref.ID

	return &todo, nil
}

// UpdateFields applies the given field updates as one document write.
// A single-document write is atomic in Firestore, so a multi-field update
// either commits every field or none.
func (r *firestoreTodoRepository) UpdateFields(ctx context.Context, todoID string, fields map[string]interface{}) error {
	if todoID == "" {
		return errors.New("todoID cannot be empty for UpdateFields operation")
	}
	if len(fields) == 0 {
		return errors.New("fields cannot be empty for UpdateFields operation")
	}

	updates := make([]firestore.Update, 0, len(fields))
	for path, value := range fields {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	_, err := r.client.Collection(todosCollection).Doc(todoID).Update(ctx, updates)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("todo with ID '%s' not found for update: %w", todoID, ErrNotFound)
		}
		return fmt.Errorf("failed to update todo with ID '%s': %w", todoID, err)
	}
	return nil
}

// Delete removes a todo document.
func (r *firestoreTodoRepository) Delete(ctx context.Context, todoID string) error {
	if todoID == "" {
		return errors.New("todoID cannot be empty for Delete operation")
	}
	_, err := r.client.Collection(todosCollection).Doc(todoID).Delete(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("todo with ID '%s' not found for deletion: %w", todoID, ErrNotFound)
		}
		return fmt.Errorf("failed to delete todo with ID '%s': %w", todoID, err)
	}
	return nil
}

// ListByOwner retrieves all todos owned by a user across categories, newest first.
func (r *firestoreTodoRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*models.Todo, error) {
	if ownerUID == "" {
		return nil, errors.New("ownerUID cannot be empty for ListByOwner operation")
	}
	query := r.client.Collection(todosCollection).
		Where("uid", "==", ownerUID).
		OrderBy("createdAt", firestore.Desc)
	return r.collectTodos(ctx, query)
}

// ListByOwnerAndCategory retrieves the owner's todos in one category, newest first.
func (r *firestoreTodoRepository) ListByOwnerAndCategory(ctx context.Context, ownerUID, category string) ([]*models.Todo, error) {
	if ownerUID == "" || category == "" {
		return nil, errors.New("ownerUID and category cannot be empty for ListByOwnerAndCategory operation")
	}
	query := r.client.Collection(todosCollection).
		Where("uid", "==", ownerUID).
		Where("category", "==", category).
		OrderBy("createdAt", firestore.Desc)
	return r.collectTodos(ctx, query)
}

// DeleteByCategory removes every todo in the owner's category and returns the
// number deleted.
func (r *firestoreTodoRepository) DeleteByCategory(ctx context.Context, ownerUID, category string) (int, error) {
	if ownerUID == "" || category == "" {
		return 0, errors.New("ownerUID and category cannot be empty for DeleteByCategory operation")
	}
	query := r.client.Collection(todosCollection).
		Where("uid", "==", ownerUID).
		Where("category", "==", category)
	return r.deleteMatching(ctx, query)
}

// DeleteCompleted removes the owner's completed todos, optionally scoped to
// one category, and returns the number deleted.
func (r *firestoreTodoRepository) DeleteCompleted(ctx context.Context, ownerUID, category string) (int, error) {
	if ownerUID == "" {
		return 0, errors.New("ownerUID cannot be empty for DeleteCompleted operation")
	}
	query := r.client.Collection(todosCollection).
		Where("uid", "==", ownerUID).
		Where("completed", "==", true)
	if category != "" {
		query = query.Where("category", "==", category)
	}
	return r.deleteMatching(ctx, query)
}

// collectTodos drains the query into decoded todo models.
func (r *firestoreTodoRepository) collectTodos(ctx context.Context, query firestore.Query) ([]*models.Todo, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var todos []*models.Todo
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate todos: %w", err)
		}
		var todo models.Todo
		if err := doc.DataTo(&todo); err != nil {
			log.Printf("Error decoding todo data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		todo.ID = doc.Ref.ID
		todos = append(todos, &todo)
	}
	return todos, nil
}

// deleteMatching deletes every document the query yields and counts deletions.
func (r *firestoreTodoRepository) deleteMatching(ctx context.Context, query firestore.Query) (int, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, fmt.Errorf("failed to iterate todos for deletion: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to delete todo with ID '%s': %w", doc.Ref.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
