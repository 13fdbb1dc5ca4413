package models

import "strings"

// Capability tokens a share can grant. The vocabulary is fixed and flat:
// there is no hierarchy between tokens beyond "read" being implicit.
const (
	PermRead   = "read"
	PermWrite  = "write"
	PermEdit   = "edit"
	PermDelete = "delete"
)

// PermissionSet is an ordered, de-duplicated list of capability tokens.
// A canonical set always contains "read"; it is prepended only when the
// input lacked it, otherwise it keeps its first-seen position.
type PermissionSet []string

// knownPermissions is the closed vocabulary; anything else is dropped on normalization.
var knownPermissions = map[string]bool{
	PermRead:   true,
	PermWrite:  true,
	PermEdit:   true,
	PermDelete: true,
}

// NormalizePermissions canonicalizes a raw token list: each token is trimmed and
// lowercased, unknown tokens are dropped, duplicates are removed preserving
// first-seen order, and "read" is prepended when absent. The function is pure,
// total and idempotent; it never fails, so a garbage input yields ["read"].
func NormalizePermissions(raw []string) PermissionSet {
	seen := make(map[string]bool, len(raw))
	out := make(PermissionSet, 0, len(raw)+1)
	for _, tok := range raw {
		tok = strings.ToLower(strings.TrimSpace(tok))
		if !knownPermissions[tok] || seen[tok] {
			continue
		}
		seen[tok] = true
		out = append(out, tok)
	}
	if !seen[PermRead] {
		out = append(PermissionSet{PermRead}, out...)
	}
	return out
}

// Has reports whether the set grants the given capability. The set is
// normalized first, so legacy records (nil permissions, mixed case, junk
// tokens) behave correctly, and "read" always reports true.
func (p PermissionSet) Has(capability string) bool {
	capability = strings.ToLower(strings.TrimSpace(capability))
	if capability == PermRead {
		return true
	}
	for _, tok := range NormalizePermissions(p) {
		if tok == capability {
			return true
		}
	}
	return false
}

// Equal reports whether two sets are identical after normalization.
func (p PermissionSet) Equal(other PermissionSet) bool {
	a, b := NormalizePermissions(p), NormalizePermissions(other)
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
