package db

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"todoshare-backend-go/internal/models"
)

const sharesCollection = "shares"

// firestoreShareRepository implements the ShareRepository interface using Firestore.
//
// Firestore cannot express "viewerUid == X OR viewerEmail == Y" in a single
// query, so every viewer-keyed operation runs the two equality queries and
// merges the results by document ID.
type firestoreShareRepository struct {
	client *firestore.Client
}

// NewFirestoreShareRepository creates a new instance of firestoreShareRepository.
func NewFirestoreShareRepository(client *firestore.Client) ShareRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for ShareRepository.")
	}
	return &firestoreShareRepository{client: client}
}

// Create adds a new share document with an auto-generated ID and sets
// share.ID before writing.
func (r *firestoreShareRepository) Create(ctx context.Context, share *models.Share) (string, error) {
	docRef := r.client.Collection(sharesCollection).NewDoc()
	share.ID = docRef.ID
	if _, err := docRef.Create(ctx, share); err != nil {
		return "", fmt.Errorf("failed to create share: %w", err)
	}
	return docRef.ID, nil
}

// Update overwrites an existing share document.
func (r *firestoreShareRepository) Update(ctx context.Context, share *models.Share) error {
	if share.ID == "" {
		return errors.New("share ID cannot be empty for Update operation")
	}
	_, err := r.client.Collection(sharesCollection).Doc(share.ID).Set(ctx, share)
	if err != nil {
		return fmt.Errorf("failed to update share with ID '%s': %w", share.ID, err)
	}
	return nil
}

// FindGrant returns the share for (ownerUID, category) whose viewer matches by
// uid or by email. Returns ErrNotFound when neither query yields a document.
func (r *firestoreShareRepository) FindGrant(ctx context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (*models.Share, error) {
	if ownerUID == "" || category == "" {
		return nil, errors.New("ownerUID and category cannot be empty for FindGrant operation")
	}

	base := r.client.Collection(sharesCollection).
		Where("ownerUid", "==", ownerUID).
		Where("category", "==", category)

	if viewerUID != "" {
		share, err := r.firstShare(ctx, base.Where("viewerUid", "==", viewerUID).Limit(1))
		if err != nil {
			return nil, fmt.Errorf("failed to query grant by viewer uid '%s': %w", viewerUID, err)
		}
		if share != nil {
			return share, nil
		}
	}
	if viewerEmailLower != "" {
		share, err := r.firstShare(ctx, base.Where("viewerEmail", "==", viewerEmailLower).Limit(1))
		if err != nil {
			return nil, fmt.Errorf("failed to query grant by viewer email '%s': %w", viewerEmailLower, err)
		}
		if share != nil {
			return share, nil
		}
	}
	return nil, fmt.Errorf("grant for owner '%s', category '%s' not found: %w", ownerUID, category, ErrNotFound)
}

// DeleteByViewerEmail removes all grants matching the owner/category/email tuple.
func (r *firestoreShareRepository) DeleteByViewerEmail(ctx context.Context, ownerUID, category, viewerEmailLower string) (int, error) {
	if ownerUID == "" || category == "" || viewerEmailLower == "" {
		return 0, errors.New("ownerUID, category and viewerEmailLower cannot be empty for DeleteByViewerEmail operation")
	}
	query := r.client.Collection(sharesCollection).
		Where("ownerUid", "==", ownerUID).
		Where("category", "==", category).
		Where("viewerEmail", "==", viewerEmailLower)

	shares, err := r.collectShares(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to query shares for revoke (owner '%s', category '%s'): %w", ownerUID, category, err)
	}
	return r.deleteAll(ctx, shares)
}

// DeleteByViewer removes all grants for (ownerUID, category) matching the
// viewer by uid or email, symmetric to DeleteByViewerEmail but keyed from the
// viewer's side.
func (r *firestoreShareRepository) DeleteByViewer(ctx context.Context, ownerUID, category, viewerUID, viewerEmailLower string) (int, error) {
	if ownerUID == "" || category == "" {
		return 0, errors.New("ownerUID and category cannot be empty for DeleteByViewer operation")
	}
	base := r.client.Collection(sharesCollection).
		Where("ownerUid", "==", ownerUID).
		Where("category", "==", category)

	shares, err := r.mergeViewerQueries(ctx, base, viewerUID, viewerEmailLower)
	if err != nil {
		return 0, fmt.Errorf("failed to query shares for leave (owner '%s', category '%s'): %w", ownerUID, category, err)
	}
	return r.deleteAll(ctx, shares)
}

// ListByOwner returns all shares created by the owner, newest first.
func (r *firestoreShareRepository) ListByOwner(ctx context.Context, ownerUID string) ([]*models.Share, error) {
	if ownerUID == "" {
		return nil, errors.New("ownerUID cannot be empty for ListByOwner operation")
	}
	query := r.client.Collection(sharesCollection).
		Where("ownerUid", "==", ownerUID).
		OrderBy("createdAt", firestore.Desc)

	shares, err := r.collectShares(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for owner '%s': %w", ownerUID, err)
	}
	return shares, nil
}

// ListByViewer returns all shares granted to the viewer (by uid or email),
// newest first.
func (r *firestoreShareRepository) ListByViewer(ctx context.Context, viewerUID, viewerEmailLower string) ([]*models.Share, error) {
	if viewerUID == "" && viewerEmailLower == "" {
		return nil, errors.New("viewerUID or viewerEmailLower is required for ListByViewer operation")
	}
	base := r.client.Collection(sharesCollection).Query
	shares, err := r.mergeViewerQueries(ctx, base, viewerUID, viewerEmailLower)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares for viewer '%s'/'%s': %w", viewerUID, viewerEmailLower, err)
	}
	sort.Slice(shares, func(i, j int) bool {
		return shares[i].CreatedAt.After(shares[j].CreatedAt)
	})
	return shares, nil
}

// PromoteViewer stamps viewerUID onto email-only grants for the given email.
func (r *firestoreShareRepository) PromoteViewer(ctx context.Context, viewerEmailLower, viewerUID string) (int, error) {
	if viewerEmailLower == "" || viewerUID == "" {
		return 0, errors.New("viewerEmailLower and viewerUID cannot be empty for PromoteViewer operation")
	}
	query := r.client.Collection(sharesCollection).Where("viewerEmail", "==", viewerEmailLower)
	shares, err := r.collectShares(ctx, query)
	if err != nil {
		return 0, fmt.Errorf("failed to query shares for promotion (email '%s'): %w", viewerEmailLower, err)
	}

	promoted := 0
	for _, share := range shares {
		if share.ViewerUID != "" {
			continue
		}
		_, err := r.client.Collection(sharesCollection).Doc(share.ID).Update(ctx, []firestore.Update{
			{Path: "viewerUid", Value: viewerUID},
		})
		if err != nil {
			return promoted, fmt.Errorf("failed to promote share '%s' to viewer uid '%s': %w", share.ID, viewerUID, err)
		}
		promoted++
	}
	return promoted, nil
}

// mergeViewerQueries runs the uid and email equality queries against base and
// merges the results, de-duplicating by document ID.
func (r *firestoreShareRepository) mergeViewerQueries(ctx context.Context, base firestore.Query, viewerUID, viewerEmailLower string) ([]*models.Share, error) {
	var merged []*models.Share
	seen := make(map[string]bool)

	if viewerUID != "" {
		byUID, err := r.collectShares(ctx, base.Where("viewerUid", "==", viewerUID))
		if err != nil {
			return nil, err
		}
		for _, share := range byUID {
			seen[share.ID] = true
			merged = append(merged, share)
		}
	}
	if viewerEmailLower != "" {
		byEmail, err := r.collectShares(ctx, base.Where("viewerEmail", "==", viewerEmailLower))
		if err != nil {
			return nil, err
		}
		for _, share := range byEmail {
			if seen[share.ID] {
				continue
			}
			merged = append(merged, share)
		}
	}
	return merged, nil
}

// firstShare returns the first document of the query, or nil when the query
// yields nothing.
func (r *firestoreShareRepository) firstShare(ctx context.Context, query firestore.Query) (*models.Share, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var share models.Share
	if err := doc.DataTo(&share); err != nil {
		return nil, fmt.Errorf("failed to decode share data (ID: %s): %w", doc.Ref.ID, err)
	}
	share.ID = doc.Ref.ID
	return &share, nil
}

// collectShares drains the query into decoded share models.
func (r *firestoreShareRepository) collectShares(ctx context.Context, query firestore.Query) ([]*models.Share, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var shares []*models.Share
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}
		var share models.Share
		if err := doc.DataTo(&share); err != nil {
			// Skip documents that no longer decode; they are reported, not fatal.
			log.Printf("Error decoding share data (ID: %s): %v. Skipping.", doc.Ref.ID, err)
			continue
		}
		share.ID = doc.Ref.ID
		shares = append(shares, &share)
	}
	return shares, nil
}

// deleteAll deletes the given shares one by one and reports how many were removed.
func (r *firestoreShareRepository) deleteAll(ctx context.Context, shares []*models.Share) (int, error) {
	deleted := 0
	for _, share := range shares {
		if _, err := r.client.Collection(sharesCollection).Doc(share.ID).Delete(ctx); err != nil {
			if status.Code(err) == codes.NotFound {
				continue
			}
			return deleted, fmt.Errorf("failed to delete share with ID '%s': %w", share.ID, err)
		}
		deleted++
	}
	return deleted, nil
}
