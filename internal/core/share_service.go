package core

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"todoshare-backend-go/internal/db"
	"todoshare-backend-go/internal/models"
)

// Custom errors for the ShareService
var (
	ErrValidation = errors.New("invalid request")
	ErrSelfShare  = errors.New("cannot share a category with yourself")
)

// enrichmentConcurrency bounds the parallel directory lookups in
// ListSharedWithMe. Sibling lookups have no ordering requirement.
const enrichmentConcurrency = 4

// shareService implements the ShareService interface.
type shareService struct {
	shareRepo db.ShareRepository
	directory db.IdentityDirectory
}

// NewShareService creates a new ShareService instance. The directory may be
// nil, which degrades sharing to email-only grants without uid resolution.
func NewShareService(shareRepo db.ShareRepository, directory db.IdentityDirectory) ShareService {
	return &shareService{
		shareRepo: shareRepo,
		directory: directory,
	}
}

// CreateOrUpdateShare grants a viewer access to one of the owner's categories.
// At most one share exists per (owner, category, viewer) tuple: a repeated
// grant updates the existing record's permission set in place instead of
// inserting a duplicate. Returns the share either way (idempotent upsert).
func (s *shareService) CreateOrUpdateShare(ctx context.Context, owner Identity, req models.CreateShareRequest) (*models.Share, error) {
	if s.shareRepo == nil {
		return nil, errors.New("shareService: shareRepo not initialized")
	}

	category := models.NormalizeCategory(req.Category)
	if category == "" {
		return nil, fmt.Errorf("%w: category is required", ErrValidation)
	}
	viewerEmail := strings.ToLower(strings.TrimSpace(req.ViewerEmail))
	if viewerEmail == "" {
		return nil, fmt.Errorf("%w: viewer email is required", ErrValidation)
	}
	if owner.Email != "" && viewerEmail == strings.ToLower(owner.Email) {
		return nil, ErrSelfShare
	}

	permissions := models.NormalizePermissions(req.Permissions)

	// Resolve the viewer's uid when an account already exists. Best effort:
	// an unknown email leaves the grant email-only, to be reconciled when the
	// viewer first signs in; a directory failure is tolerated the same way.
	viewerUID := ""
	if s.directory != nil {
		if account, err := s.directory.LookupByEmail(ctx, viewerEmail); err == nil {
			viewerUID = account.UID
		}
	}

	existing, err := s.shareRepo.FindGrant(ctx, owner.UID, category, viewerUID, viewerEmail)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up existing share for category '%s': %w", category, err)
	}

	if existing != nil {
		changed := false
		if !existing.Permissions.Equal(permissions) {
			existing.Permissions = permissions
			changed = true
		}
		if existing.ViewerUID == "" && viewerUID != "" {
			existing.ViewerUID = viewerUID
			changed = true
		}
		if changed {
			if err := s.shareRepo.Update(ctx, existing); err != nil {
				return nil, fmt.Errorf("failed to update share '%s': %w", existing.ID, err)
			}
		}
		return existing, nil
	}

	share := &models.Share{
		OwnerUID:    owner.UID,
		OwnerEmail:  strings.ToLower(owner.Email),
		OwnerName:   owner.Name,
		Category:    category,
		ViewerUID:   viewerUID,
		ViewerEmail: viewerEmail,
		Permissions: permissions,
		CreatedAt:   time.Now().UTC(),
	}
	if _, err := s.shareRepo.Create(ctx, share); err != nil {
		return nil, fmt.Errorf("failed to create share for category '%s': %w", category, err)
	}
	return share, nil
}

// RevokeShare deletes the owner's grants for (category, viewerEmail) and
// returns the number removed. Revoking a grant that does not exist is not an
// error; it returns zero.
func (s *shareService) RevokeShare(ctx context.Context, ownerUID, category, viewerEmail string) (int, error) {
	if s.shareRepo == nil {
		return 0, errors.New("shareService: shareRepo not initialized")
	}
	category = models.NormalizeCategory(category)
	if category == "" {
		return 0, fmt.Errorf("%w: category is required", ErrValidation)
	}
	viewerEmail = strings.ToLower(strings.TrimSpace(viewerEmail))
	if viewerEmail == "" {
		return 0, fmt.Errorf("%w: viewer email is required", ErrValidation)
	}

	deleted, err := s.shareRepo.DeleteByViewerEmail(ctx, ownerUID, category, viewerEmail)
	if err != nil {
		return 0, fmt.Errorf("failed to revoke share for category '%s': %w", category, err)
	}
	return deleted, nil
}

// LeaveShare removes grants from the viewer's side, matching by uid or email.
// Like RevokeShare, a missing grant yields zero, not an error.
func (s *shareService) LeaveShare(ctx context.Context, viewer Identity, ownerUID, category string) (int, error) {
	if s.shareRepo == nil {
		return 0, errors.New("shareService: shareRepo not initialized")
	}
	category = models.NormalizeCategory(category)
	if category == "" {
		return 0, fmt.Errorf("%w: category is required", ErrValidation)
	}
	if ownerUID == "" {
		return 0, fmt.Errorf("%w: owner uid is required", ErrValidation)
	}

	deleted, err := s.shareRepo.DeleteByViewer(ctx, ownerUID, category, viewer.UID, strings.ToLower(viewer.Email))
	if err != nil {
		return 0, fmt.Errorf("failed to leave share for category '%s': %w", category, err)
	}
	return deleted, nil
}

// ListMine returns the shares the owner created, newest first.
func (s *shareService) ListMine(ctx context.Context, ownerUID string) ([]*models.Share, error) {
	if s.shareRepo == nil {
		return nil, errors.New("shareService: shareRepo not initialized")
	}
	shares, err := s.shareRepo.ListByOwner(ctx, ownerUID)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for owner '%s': %w", ownerUID, err)
	}
	return shares, nil
}

// ListSharedWithMe returns the shares granted to the viewer, grouped by owner.
// Owner email/display name are backfilled from the directory where the stored
// share lacks them; enrichment failures are swallowed per owner, and a still
// unresolved display name falls back to the local part of the owner email.
func (s *shareService) ListSharedWithMe(ctx context.Context, viewer Identity) ([]*models.SharedOwner, error) {
	if s.shareRepo == nil {
		return nil, errors.New("shareService: shareRepo not initialized")
	}

	shares, err := s.shareRepo.ListByViewer(ctx, viewer.UID, strings.ToLower(viewer.Email))
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for viewer '%s': %w", viewer.UID, err)
	}

	grouped := make(map[string]*models.SharedOwner)
	var order []string
	for _, share := range shares {
		group, ok := grouped[share.OwnerUID]
		if !ok {
			group = &models.SharedOwner{
				OwnerUID:       share.OwnerUID,
				OwnerEmail:     share.OwnerEmail,
				OwnerName:      share.OwnerName,
				CategoriesMeta: make(map[string]models.CategoryMeta),
			}
			grouped[share.OwnerUID] = group
			order = append(order, share.OwnerUID)
		}
		if group.OwnerEmail == "" {
			group.OwnerEmail = share.OwnerEmail
		}
		if group.OwnerName == "" {
			group.OwnerName = share.OwnerName
		}
		if _, seen := group.CategoriesMeta[share.Category]; !seen {
			group.Categories = append(group.Categories, share.Category)
			group.CategoriesMeta[share.Category] = models.CategoryMeta{CreatedAt: share.CreatedAt}
		}
	}

	s.enrichOwners(ctx, grouped)

	result := make([]*models.SharedOwner, 0, len(order))
	for _, ownerUID := range order {
		group := grouped[ownerUID]
		sort.Strings(group.Categories)
		if group.OwnerName == "" {
			group.OwnerName = emailLocalPart(group.OwnerEmail)
		}
		result = append(result, group)
	}
	return result, nil
}

// enrichOwners fills missing owner email/name from the directory, one lookup
// per distinct owner, running concurrently. Grouping correctness never depends
// on this pass; any failure simply leaves the group as stored.
func (s *shareService) enrichOwners(ctx context.Context, grouped map[string]*models.SharedOwner) {
	if s.directory == nil {
		return
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(enrichmentConcurrency)
	for _, group := range grouped {
		if group.OwnerEmail != "" && group.OwnerName != "" {
			continue
		}
		group := group
		g.Go(func() error {
			account, err := s.directory.LookupByUID(gctx, group.OwnerUID)
			if err != nil {
				return nil // best effort, never fatal
			}
			if group.OwnerEmail == "" {
				group.OwnerEmail = strings.ToLower(account.Email)
			}
			if group.OwnerName == "" {
				group.OwnerName = account.DisplayName
			}
			return nil
		})
	}
	_ = g.Wait()
}

// LookupPermission returns the viewer's effective permission set for the pair,
// or an empty set when no grant exists.
func (s *shareService) LookupPermission(ctx context.Context, ownerUID, category string, viewer Identity) (models.PermissionSet, error) {
	if s.shareRepo == nil {
		return nil, errors.New("shareService: shareRepo not initialized")
	}
	category = models.NormalizeCategory(category)
	if ownerUID == "" || category == "" {
		return nil, fmt.Errorf("%w: owner uid and category are required", ErrValidation)
	}

	share, err := s.shareRepo.FindGrant(ctx, ownerUID, category, viewer.UID, strings.ToLower(viewer.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return models.PermissionSet{}, nil
		}
		return nil, fmt.Errorf("failed to look up permission for owner '%s', category '%s': %w", ownerUID, category, err)
	}
	return models.NormalizePermissions(share.Permissions), nil
}

// ReconcileViewer binds email-only shares to the viewer's uid. Intended to run
// on login so grants issued before the viewer signed up become uid-bound.
func (s *shareService) ReconcileViewer(ctx context.Context, viewer Identity) (int, error) {
	if s.shareRepo == nil {
		return 0, errors.New("shareService: shareRepo not initialized")
	}
	email := strings.ToLower(strings.TrimSpace(viewer.Email))
	if viewer.UID == "" || email == "" {
		return 0, nil
	}
	promoted, err := s.shareRepo.PromoteViewer(ctx, email, viewer.UID)
	if err != nil {
		return promoted, fmt.Errorf("failed to reconcile shares for viewer '%s': %w", viewer.UID, err)
	}
	return promoted, nil
}

// emailLocalPart returns the part of an email address before the '@'.
func emailLocalPart(email string) string {
	if at := strings.Index(email, "@"); at > 0 {
		return email[:at]
	}
	return email
}
