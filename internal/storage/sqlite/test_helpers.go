package sqlite

import (
	"context"
	"testing"

	"github.com/lfx-eng/onboard/internal/types"
)

// newTestStore creates a Store backed by a temp-file database.
//
// File-based databases are more reliable than in-memory for connection pool
// scenarios, and t.TempDir() gives each test its own isolated database.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	store, err := New(context.Background(), t.TempDir()+"/test.db")
	if err != nil {
		t.Fatalf("Failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		if cerr := store.Close(); cerr != nil {
			t.Fatalf("Failed to close test database: %v", cerr)
		}
	})

	return store
}

// newTestSession creates a session with one contact and returns both ids.
func newTestSession(t *testing.T, store *Store) (int64, int64) {
	t.Helper()
	ctx := context.Background()

	sessionID, err := store.CreateSession(ctx, "Acme Corp", "cncf", "org-001", "proj-001")
	if err != nil {
		t.Fatalf("CreateSession failed: %v", err)
	}
	contactID, err := store.AddContact(ctx, sessionID, &types.Contact{
		ContactID:   "cnt-001",
		Email:       "john.doe@acmecorp.com",
		FirstName:   "John",
		LastName:    "Doe",
		Title:       "CEO",
		ContactType: types.ContactPrimary,
	})
	if err != nil {
		t.Fatalf("AddContact failed: %v", err)
	}
	return sessionID, contactID
}
