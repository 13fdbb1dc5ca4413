package models

import (
	"strings"
	"time"
)

// MaxCategoryLen caps the normalized category key length.
const MaxCategoryLen = 32

// DefaultCategory is used when a todo is created without an explicit category.
const DefaultCategory = "general"

// Todo represents a single task item. UID is always the category owner's uid,
// even when a viewer with write access created the todo on the owner's behalf.
type Todo struct {
	ID        string    `json:"id" firestore:"-"` // Document ID, auto-generated
	UID       string    `json:"uid" firestore:"uid"`
	Text      string    `json:"text" firestore:"text"`
	Completed bool      `json:"completed" firestore:"completed"`
	Category  string    `json:"category" firestore:"category"`
	CreatedAt time.Time `json:"createdAt" firestore:"createdAt"`
}

// NormalizeCategory canonicalizes a category key: trimmed, lowercased and
// truncated to MaxCategoryLen runes. Categories are not stored entities; the
// normalized key is the unit both todos and shares are scoped by.
func NormalizeCategory(raw string) string {
	category := strings.ToLower(strings.TrimSpace(raw))
	if runes := []rune(category); len(runes) > MaxCategoryLen {
		category = string(runes[:MaxCategoryLen])
	}
	return category
}
