package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todoshare-backend-go/internal/db"
)

// ErrForbidden is returned whenever a requester lacks the capability for the
// target owner/category. It deliberately carries no detail: a missing share
// and an insufficient share must be indistinguishable to the caller.
var ErrForbidden = errors.New("forbidden")

// accessService implements the AccessService interface.
//
// It is a pure decision function over the share registry: owner bypass first,
// otherwise a grant lookup followed by a capability check. Read is implied by
// any existing grant, so Authorize for "read" against an existing share always
// passes.
type accessService struct {
	shareRepo db.ShareRepository
}

// NewAccessService creates a new AccessService instance.
func NewAccessService(shareRepo db.ShareRepository) AccessService {
	return &accessService{shareRepo: shareRepo}
}

// Authorize reports whether the requester holds the capability for the
// (ownerUID, category) pair.
func (s *accessService) Authorize(ctx context.Context, requester Identity, ownerUID, category, capability string) (bool, error) {
	if s.shareRepo == nil {
		return false, errors.New("accessService: shareRepo not initialized")
	}
	if requester.UID == "" || ownerUID == "" {
		return false, nil
	}

	// Owners never consult shares for their own data.
	if requester.UID == ownerUID {
		return true, nil
	}

	share, err := s.shareRepo.FindGrant(ctx, ownerUID, category, requester.UID, strings.ToLower(requester.Email))
	if err != nil {
		if errors.Is(err, db.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("failed to look up grant for owner '%s', category '%s': %w", ownerUID, category, err)
	}

	return share.Permissions.Has(capability), nil
}
