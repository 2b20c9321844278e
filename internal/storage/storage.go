// Package storage provides shared types for onboarding persistence.
//
// The concrete storage implementation lives in the sqlite sub-package. This
// package holds the interface and value types referenced by both the sqlite
// implementation and its consumers (internal/onboard, cmd/onboard).
package storage

import (
	"context"
	"errors"

	"github.com/lfx-eng/onboard/internal/types"
)

// ErrNotFound is returned when a requested session or contact does not exist.
var ErrNotFound = errors.New("not found")

// StatusDetail is the optional payload recorded with a status update. It is
// serialized into the audit event and, where relevant, into the contact row
// (committee_id, slack_user_id).
type StatusDetail struct {
	CommitteeID      string `json:"committee_id,omitempty"`
	SlackUserID      string `json:"slack_user_id,omitempty"`
	Reason           string `json:"reason,omitempty"`
	Error            string `json:"error,omitempty"`
	RetriesExhausted bool   `json:"retries_exhausted,omitempty"`
}

// Store is the interface satisfied by *sqlite.Store.
// Consumers depend on this interface rather than on the concrete type so that
// alternative implementations (mocks, proxies, etc.) can be substituted.
type Store interface {
	// Sessions
	CreateSession(ctx context.Context, orgName, projectSlug, memberID, projectID string) (int64, error)
	GetSession(ctx context.Context, sessionID int64) (*types.Session, error)
	// RefreshSessionStats recomputes the session's contact counts by scanning
	// its contacts. Counts are never maintained incrementally.
	RefreshSessionStats(ctx context.Context, sessionID int64) (*types.SessionStats, error)
	// CompleteSession marks the session completed and stamps completed_at.
	CompleteSession(ctx context.Context, sessionID int64) error
	GetSessionReport(ctx context.Context, sessionID int64) (*types.Report, error)

	// Contacts
	AddContact(ctx context.Context, sessionID int64, contact *types.Contact) (int64, error)
	GetContact(ctx context.Context, contactID int64) (*types.ContactRecord, error)
	FindContactsByStatus(ctx context.Context, sessionID int64, overall types.OverallStatus) ([]*types.ContactRecord, error)

	// UpdateContactStatus records a sub-step outcome. The status write, the
	// derived overall_status recompute, and the audit event append execute in
	// one transaction: no status update is ever recorded without its event.
	UpdateContactStatus(ctx context.Context, contactID int64, kind types.EventType, status types.StepStatus, detail *StatusDetail) error

	// Events
	GetContactEvents(ctx context.Context, contactID int64, limit int) ([]*types.Event, error)

	// Transactions
	RunInTx(ctx context.Context, fn func(tx Tx) error) error

	// Lifecycle
	Close() error
}

// Tx exposes the subset of storage methods that execute within a single
// database transaction. If the callback passed to RunInTx returns an error or
// panics, every operation performed through Tx is rolled back.
type Tx interface {
	AddContact(ctx context.Context, sessionID int64, contact *types.Contact) (int64, error)
	GetContact(ctx context.Context, contactID int64) (*types.ContactRecord, error) // read-your-writes within the transaction
	UpdateContactStatus(ctx context.Context, contactID int64, kind types.EventType, status types.StepStatus, detail *StatusDetail) error
}
