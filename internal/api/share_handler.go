package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"todoshare-backend-go/internal/core"
	"todoshare-backend-go/internal/models"
)

// ShareHandler handles API endpoints related to share grants.
type ShareHandler struct {
	shareService core.ShareService
}

// NewShareHandler creates a new ShareHandler.
func NewShareHandler(ss core.ShareService) *ShareHandler {
	return &ShareHandler{shareService: ss}
}

// mapShareErrorToStatus maps errors from core.ShareService to HTTP status codes.
func mapShareErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrSelfShare):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrSelfShare.Error()}
	case errors.Is(err, core.ErrValidation):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: err.Error()}
	case errors.Is(err, core.ErrForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: core.ErrForbidden.Error()}
	default:
		log.Printf("Internal Server Error: %v", err)
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// CreateShare handles POST /shares
// Granting the same (category, viewer) tuple again updates the existing
// grant's permission set instead of creating a duplicate.
func (h *ShareHandler) CreateShare(c *gin.Context) {
	owner, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req models.CreateShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	share, err := h.shareService.CreateOrUpdateShare(c.Request.Context(), owner, req)
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, share)
}

// RevokeShare handles DELETE /shares?category=&viewerEmail=
// Revoking a grant that does not exist succeeds with deleted=0.
func (h *ShareHandler) RevokeShare(c *gin.Context) {
	owner, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	deleted, err := h.shareService.RevokeShare(c.Request.Context(), owner.UID, c.Query("category"), c.Query("viewerEmail"))
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}

// LeaveShare handles POST /shares/leave
func (h *ShareHandler) LeaveShare(c *gin.Context) {
	viewer, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	var req models.LeaveShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	deleted, err := h.shareService.LeaveShare(c.Request.Context(), viewer, req.OwnerUID, req.Category)
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, DeletedResponse{Deleted: deleted})
}

// ListMine handles GET /shares/mine
func (h *ShareHandler) ListMine(c *gin.Context) {
	owner, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	shares, err := h.shareService.ListMine(c.Request.Context(), owner.UID)
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	if shares == nil {
		shares = []*models.Share{}
	}
	c.JSON(http.StatusOK, shares)
}

// ListSharedWithMe handles GET /shares/with-me
func (h *ShareHandler) ListSharedWithMe(c *gin.Context) {
	viewer, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}

	owners, err := h.shareService.ListSharedWithMe(c.Request.Context(), viewer)
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	if owners == nil {
		owners = []*models.SharedOwner{}
	}
	c.JSON(http.StatusOK, owners)
}

// LookupPermissions handles GET /shares/permissions?owner=&category=
// Returns the caller's effective permission set for the pair; an empty list
// means no access.
func (h *ShareHandler) LookupPermissions(c *gin.Context) {
	viewer, ok := requesterIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "User ID not found in context"})
		return
	}
	ownerUID := c.Query("owner")
	category := c.Query("category")

	permissions, err := h.shareService.LookupPermission(c.Request.Context(), ownerUID, category, viewer)
	if err != nil {
		mapShareErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, PermissionsResponse{
		OwnerUID:    ownerUID,
		Category:    models.NormalizeCategory(category),
		Permissions: permissions,
	})
}
