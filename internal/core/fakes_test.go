package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"todoshare-backend-go/internal/db"
	"todoshare-backend-go/internal/models"
)

// fakeShareRepository is an in-memory db.ShareRepository with the same
// matching semantics as the Firestore implementation.
type fakeShareRepository struct {
	mu     sync.Mutex
	nextID int
	shares map[string]*models.Share
}

func newFakeShareRepository() *fakeShareRepository {
	return &fakeShareRepository{shares: make(map[string]*models.Share)}
}

func (r *fakeShareRepository) Create(_ context.Context, share *models.Share) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	share.ID = fmt.Sprintf("share-%d", r.nextID)
	clone := *share
	r.shares[share.ID] = &clone
	return share.ID, nil
}

func (r *fakeShareRepository) Update(_ context.Context, share *models.Share) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.shares[share.ID]; !ok {
		return db.ErrNotFound
	}
	clone := *share
	r.shares[share.ID] = &clone
	return nil
}

func (r *fakeShareRepository) FindGrant(_ context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, share := range r.sorted() {
		if share.OwnerUID != ownerUID || share.Category != category {
			continue
		}
		if share.MatchesViewer(viewerUID, viewerEmailLower) {
			clone := *share
			return &clone, nil
		}
	}
	return nil, db.ErrNotFound
}

func (r *fakeShareRepository) DeleteByViewerEmail(_ context.Context, ownerUID, category, viewerEmailLower string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, share := range r.shares {
		if share.OwnerUID == ownerUID && share.Category == category && share.ViewerEmail == viewerEmailLower {
			delete(r.shares, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeShareRepository) DeleteByViewer(_ context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, share := range r.shares {
		if share.OwnerUID == ownerUID && share.Category == category && share.MatchesViewer(viewerUID, viewerEmailLower) {
			delete(r.shares, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeShareRepository) ListByOwner(_ context.Context, ownerUID string) ([]*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Share
	for _, share := range r.sorted() {
		if share.OwnerUID == ownerUID {
			clone := *share
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeShareRepository) ListByViewer(_ context.Context, viewerUID, viewerEmailLower string) ([]*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Share
	for _, share := range r.sorted() {
		if share.MatchesViewer(viewerUID, viewerEmailLower) {
			clone := *share
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeShareRepository) PromoteViewer(_ context.Context, viewerEmailLower, viewerUID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	promoted := 0
	for _, share := range r.shares {
		if share.ViewerEmail == viewerEmailLower && share.ViewerUID == "" {
			share.ViewerUID = viewerUID
			promoted++
		}
	}
	return promoted, nil
}

func (r *fakeShareRepository) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.shares)
}

// sorted returns shares newest-first, matching the Firestore ordering.
func (r *fakeShareRepository) sorted() []*models.Share {
	out := make([]*models.Share, 0, len(r.shares))
	for _, share := range r.shares {
		out = append(out, share)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// fakeTodoRepository is an in-memory db.TodoRepository.
type fakeTodoRepository struct {
	mu     sync.Mutex
	nextID int
	todos  map[string]*models.Todo
}

func newFakeTodoRepository() *fakeTodoRepository {
	return &fakeTodoRepository{todos: make(map[string]*models.Todo)}
}

func (r *fakeTodoRepository) Create(_ context.Context, todo *models.Todo) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	todo.ID = fmt.Sprintf("todo-%d", r.nextID)
	clone := *todo
	r.todos[todo.ID] = &clone
	return todo.ID, nil
}

func (r *fakeTodoRepository) GetByID(_ context.Context, todoID string) (*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[todoID]
	if !ok {
		return nil, db.ErrNotFound
	}
	clone := *todo
	return &clone, nil
}

func (r *fakeTodoRepository) UpdateFields(_ context.Context, todoID string, fields map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	todo, ok := r.todos[todoID]
	if !ok {
		return db.ErrNotFound
	}
	for path, value := range fields {
		switch path {
		case "text":
			todo.Text = value.(string)
		case "completed":
			todo.Completed = value.(bool)
		case "category":
			todo.Category = value.(string)
		default:
			return fmt.Errorf("unexpected update path %q", path)
		}
	}
	return nil
}

func (r *fakeTodoRepository) Delete(_ context.Context, todoID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.todos[todoID]; !ok {
		return db.ErrNotFound
	}
	delete(r.todos, todoID)
	return nil
}

func (r *fakeTodoRepository) ListByOwner(_ context.Context, ownerUID string) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Todo
	for _, todo := range r.sorted() {
		if todo.UID == ownerUID {
			clone := *todo
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTodoRepository) ListByOwnerAndCategory(_ context.Context, ownerUID, category string) ([]*models.Todo, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Todo
	for _, todo := range r.sorted() {
		if todo.UID == ownerUID && todo.Category == category {
			clone := *todo
			out = append(out, &clone)
		}
	}
	return out, nil
}

func (r *fakeTodoRepository) DeleteByCategory(_ context.Context, ownerUID, category string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, todo := range r.todos {
		if todo.UID == ownerUID && todo.Category == category {
			delete(r.todos, id)
			deleted++
		}
	}
	return deleted, nil
}

func (r *fakeTodoRepository) DeleteCompleted(_ context.Context, ownerUID, category string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	deleted := 0
	for id, todo := range r.todos {
		if todo.UID != ownerUID || !todo.Completed {
			continue
		}
		if category != "" && todo.Category != category {
			continue
		}
		delete(r.todos, id)
		deleted++
	}
	return deleted, nil
}

func (r *fakeTodoRepository) sorted() []*models.Todo {
	out := make([]*models.Todo, 0, len(r.todos))
	for _, todo := range r.todos {
		out = append(out, todo)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// fakeIdentityDirectory is an in-memory db.IdentityDirectory.
type fakeIdentityDirectory struct {
	byEmail map[string]*db.DirectoryUser
	byUID   map[string]*db.DirectoryUser
	fail    bool
}

func newFakeIdentityDirectory() *fakeIdentityDirectory {
	return &fakeIdentityDirectory{
		byEmail: make(map[string]*db.DirectoryUser),
		byUID:   make(map[string]*db.DirectoryUser),
	}
}

func (d *fakeIdentityDirectory) add(user db.DirectoryUser) {
	d.byEmail[strings.ToLower(user.Email)] = &user
	d.byUID[user.UID] = &user
}

func (d *fakeIdentityDirectory) LookupByEmail(_ context.Context, email string) (*db.DirectoryUser, error) {
	if d.fail {
		return nil, fmt.Errorf("directory unavailable")
	}
	user, ok := d.byEmail[strings.ToLower(email)]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}

func (d *fakeIdentityDirectory) LookupByUID(_ context.Context, uid string) (*db.DirectoryUser, error) {
	if d.fail {
		return nil, fmt.Errorf("directory unavailable")
	}
	user, ok := d.byUID[uid]
	if !ok {
		return nil, db.ErrNotFound
	}
	return user, nil
}
