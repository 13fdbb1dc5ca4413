package api

import (
	"github.com/gin-gonic/gin"

	"todoshare-backend-go/internal/core"
	"todoshare-backend-go/internal/middleware"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message or code
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// DeletedResponse reports how many records a bulk delete removed.
type DeletedResponse struct {
	Deleted int `json:"deleted"`
}

// PermissionsResponse carries the caller's effective permission set for one
// owner/category pair.
type PermissionsResponse struct {
	OwnerUID    string   `json:"ownerUid"`
	Category    string   `json:"category"`
	Permissions []string `json:"permissions"`
}

// SessionResponse echoes the verified identity back after login housekeeping.
type SessionResponse struct {
	UID              string `json:"uid"`
	Email            string `json:"email,omitempty"`
	DisplayName      string `json:"displayName,omitempty"`
	ReconciledShares int    `json:"reconciledShares"`
}

// requesterIdentity assembles the verified caller from the Gin context keys
// the auth middleware populates. The bool is false when the middleware did not
// run (or failed), which handlers treat as 401.
func requesterIdentity(c *gin.Context) (core.Identity, bool) {
	rawUID, exists := c.Get(middleware.ContextUserID)
	uid, ok := rawUID.(string)
	if !exists || !ok || uid == "" {
		return core.Identity{}, false
	}
	email, _ := c.Get(middleware.ContextUserEmail)
	name, _ := c.Get(middleware.ContextDisplayName)
	emailStr, _ := email.(string)
	nameStr, _ := name.(string)
	return core.Identity{UID: uid, Email: emailStr, Name: nameStr}, true
}
