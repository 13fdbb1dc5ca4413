package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoshare-backend-go/internal/core"
)

// SessionHandler handles login housekeeping endpoints.
type SessionHandler struct {
	shareService core.ShareService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(ss core.ShareService) *SessionHandler {
	return &SessionHandler{shareService: ss}
}

// InitializeSession handles POST /users/initialize.
// Clients call it after a Firebase login so shares granted to the caller's
// email before they had an account get bound to their uid. Reconciliation is
// best-effort: a failure is logged and the login still succeeds.
func (h *SessionHandler) InitializeSession(c *gin.Context) {
	identity, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	reconciled, err := h.shareService.ReconcileViewer(c.Request.Context(), identity)
	if err != nil {
		log.Printf("InitializeSession: share reconciliation failed for uid %s: %v", identity.UID, err)
	}

	c.JSON(http.StatusOK, SessionResponse{
		UID:              identity.UID,
		Email:            identity.Email,
		DisplayName:      identity.Name,
		ReconciledShares: reconciled,
	})
}
