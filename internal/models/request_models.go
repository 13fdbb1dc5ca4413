package models

// CreateTodoRequest represents the request body for creating a new todo.
// OwnerUID targets another user's category when the caller holds a share
// granting "write" on it; empty means the caller's own list.
type CreateTodoRequest struct {
	Text     string `json:"text" binding:"required"`
	Category string `json:"category,omitempty"`
	OwnerUID string `json:"ownerUid,omitempty"`
}

// UpdateTodoRequest represents the request body for partially updating a todo.
// Pointers distinguish "field not provided" from zero values (e.g. setting
// completed back to false).
type UpdateTodoRequest struct {
	Text      *string `json:"text,omitempty"`
	Completed *bool   `json:"completed,omitempty"`
	Category  *string `json:"category,omitempty"`
}

// CreateShareRequest represents the request body for granting (or updating)
// a viewer's access to one of the caller's categories.
type CreateShareRequest struct {
	Category    string   `json:"category" binding:"required"`
	ViewerEmail string   `json:"viewerEmail" binding:"required"`
	Permissions []string `json:"permissions,omitempty"`
}

// LeaveShareRequest represents the request body for a viewer walking away
// from a share that was granted to them.
type LeaveShareRequest struct {
	OwnerUID string `json:"ownerUid" binding:"required"`
	Category string `json:"category" binding:"required"`
}
