package models

import "time"

// Share represents "owner grants viewer a permission set over one category".
// Its existence is both the authorization record and the entry shown in the
// you-shared / shared-with-me lists; revoking deletes the document outright.
type Share struct {
	ID         string `json:"id" firestore:"-"` // Document ID, auto-generated
	OwnerUID   string `json:"ownerUid" firestore:"ownerUid"`
	OwnerEmail string `json:"ownerEmail,omitempty" firestore:"ownerEmail,omitempty"`
	OwnerName  string `json:"ownerName,omitempty" firestore:"ownerName,omitempty"`
	Category   string `json:"category" firestore:"category"`
	// ViewerUID is empty while the grant is email-only (the viewer may not have
	// an account yet); it is backfilled when the viewer first signs in.
	ViewerUID   string        `json:"viewerUid,omitempty" firestore:"viewerUid,omitempty"`
	ViewerEmail string        `json:"viewerEmail" firestore:"viewerEmail"` // always lowercase
	Permissions PermissionSet `json:"permissions" firestore:"permissions"`
	CreatedAt   time.Time     `json:"createdAt" firestore:"createdAt"`
}

// MatchesViewer reports whether the share belongs to the given viewer,
// matching by uid when the share has one, or by lowercased email otherwise.
func (s *Share) MatchesViewer(viewerUID, viewerEmailLower string) bool {
	if s.ViewerUID != "" && viewerUID != "" && s.ViewerUID == viewerUID {
		return true
	}
	return s.ViewerEmail != "" && s.ViewerEmail == viewerEmailLower
}

// CategoryMeta carries per-category grant metadata in the grouped
// shared-with-me view.
type CategoryMeta struct {
	CreatedAt time.Time `json:"createdAt"`
}

// SharedOwner is one row of the shared-with-me view: a single owner with all
// the categories they granted to the caller.
type SharedOwner struct {
	OwnerUID       string                  `json:"ownerUid"`
	OwnerEmail     string                  `json:"ownerEmail,omitempty"`
	OwnerName      string                  `json:"ownerName,omitempty"`
	Categories     []string                `json:"categories"`
	CategoriesMeta map[string]CategoryMeta `json:"categoriesMeta"`
}
