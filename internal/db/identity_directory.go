package db

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/v4/auth"
)

// DirectoryUser is the slice of account data the sharing flows need.
type DirectoryUser struct {
	UID         string
	Email       string
	DisplayName string
}

// IdentityDirectory resolves accounts by uid or email. It is a best-effort
// collaborator: callers must tolerate ErrNotFound (email-only shares stay
// email-only) and transient failures (enrichment is skipped, not fatal).
type IdentityDirectory interface {
	LookupByEmail(ctx context.Context, email string) (*DirectoryUser, error)
	LookupByUID(ctx context.Context, uid string) (*DirectoryUser, error)
}

// firebaseIdentityDirectory implements IdentityDirectory against Firebase Auth,
// the same service that verified the caller's token.
type firebaseIdentityDirectory struct {
	authClient *auth.Client
}

// NewFirebaseIdentityDirectory creates a new Firebase-backed directory.
func NewFirebaseIdentityDirectory(authClient *auth.Client) IdentityDirectory {
	if authClient == nil {
		log.Fatal("Firebase Auth client is not initialized for IdentityDirectory.")
	}
	return &firebaseIdentityDirectory{authClient: authClient}
}

// LookupByEmail resolves an account by email. Returns ErrNotFound when no
// account exists for the address.
func (d *firebaseIdentityDirectory) LookupByEmail(ctx context.Context, email string) (*DirectoryUser, error) {
	record, err := d.authClient.GetUserByEmail(ctx, email)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("account for email '%s' not found: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up account by email '%s': %w", email, err)
	}
	return directoryUserFromRecord(record), nil
}

// LookupByUID resolves an account by uid. Returns ErrNotFound when the uid is
// unknown to the auth service.
func (d *firebaseIdentityDirectory) LookupByUID(ctx context.Context, uid string) (*DirectoryUser, error) {
	record, err := d.authClient.GetUser(ctx, uid)
	if err != nil {
		if auth.IsUserNotFound(err) {
			return nil, fmt.Errorf("account for uid '%s' not found: %w", uid, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to look up account by uid '%s': %w", uid, err)
	}
	return directoryUserFromRecord(record), nil
}

func directoryUserFromRecord(record *auth.UserRecord) *DirectoryUser {
	return &DirectoryUser{
		UID:         record.UID,
		Email:       record.Email,
		DisplayName: record.DisplayName,
	}
}
