package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/types"
)

// AddContact creates a pending contact row for the session.
func (s *Store) AddContact(ctx context.Context, sessionID int64, contact *types.Contact) (int64, error) {
	return addContact(ctx, s.db, sessionID, contact)
}

// GetContact returns a contact row by its store-assigned id.
func (s *Store) GetContact(ctx context.Context, contactID int64) (*types.ContactRecord, error) {
	return getContact(ctx, s.db, contactID)
}

// UpdateContactStatus records a sub-step outcome. The column update, the
// overall_status recompute, and the audit event append run in one transaction:
// either all are persisted or none are.
func (s *Store) UpdateContactStatus(ctx context.Context, contactID int64, kind types.EventType, status types.StepStatus, detail *storage.StatusDetail) error {
	return s.RunInTx(ctx, func(tx storage.Tx) error {
		return tx.UpdateContactStatus(ctx, contactID, kind, status, detail)
	})
}

// FindContactsByStatus returns the session's contacts with the given overall
// status, in insertion order.
func (s *Store) FindContactsByStatus(ctx context.Context, sessionID int64, overall types.OverallStatus) ([]*types.ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE session_id = ? AND overall_status = ?
		ORDER BY id`, sessionID, string(overall))
	if err != nil {
		return nil, fmt.Errorf("failed to query contacts by status: %w", err)
	}
	defer func() { _ = rows.Close() }()
	return scanContacts(rows)
}

// GetContactEvents returns the contact's audit timeline, oldest first.
// A limit of 0 means no limit.
func (s *Store) GetContactEvents(ctx context.Context, contactID int64, limit int) ([]*types.Event, error) {
	query := `
		SELECT id, contact_id, event_type, event_status, COALESCE(event_details, ''), created_at
		FROM events
		WHERE contact_id = ?
		ORDER BY id`
	args := []any{contactID}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []*types.Event
	for rows.Next() {
		var ev types.Event
		if err := rows.Scan(&ev.ID, &ev.ContactID, &ev.Type, &ev.Status, &ev.Details, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, &ev)
	}
	return events, rows.Err()
}

const contactColumns = `id, session_id, contact_id, email, first_name, last_name, title,
	contact_type, committee_status, committee_id, slack_status, slack_user_id,
	email_status, overall_status, started_at, completed_at`

func addContact(ctx context.Context, q querier, sessionID int64, contact *types.Contact) (int64, error) {
	if err := contact.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}

	res, err := q.ExecContext(ctx, `
		INSERT INTO contacts (session_id, contact_id, email, first_name, last_name, title, contact_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sessionID, contact.ContactID, contact.Email, contact.FirstName,
		contact.LastName, contact.Title, string(contact.ContactType))
	if err != nil {
		return 0, fmt.Errorf("failed to insert contact: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get contact id: %w", err)
	}
	return id, nil
}

func getContact(ctx context.Context, q querier, contactID int64) (*types.ContactRecord, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts WHERE id = ?`, contactID)
	rec, err := scanContact(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("contact %d: %w", contactID, storage.ErrNotFound)
	}
	return rec, err
}

func updateContactStatus(ctx context.Context, q querier, contactID int64, kind types.EventType, status types.StepStatus, detail *storage.StatusDetail) error {
	if !status.IsValid() {
		return fmt.Errorf("invalid step status: %q", status)
	}

	// Read the current sub-statuses so the derived overall_status can be
	// recomputed from the full triple, not just the column being written.
	rec, err := getContact(ctx, q, contactID)
	if err != nil {
		return err
	}

	var column string
	extra := ""
	args := []any{string(status)}
	switch kind {
	case types.EventCommittee:
		column = "committee_status"
		rec.CommitteeStatus = status
		if detail != nil && detail.CommitteeID != "" {
			extra = ", committee_id = ?"
			args = append(args, detail.CommitteeID)
		}
	case types.EventSlack:
		column = "slack_status"
		rec.SlackStatus = status
		if detail != nil && detail.SlackUserID != "" {
			extra = ", slack_user_id = ?"
			args = append(args, detail.SlackUserID)
		}
	case types.EventEmail:
		column = "email_status"
		rec.EmailStatus = status
	default:
		return fmt.Errorf("invalid event type: %q", kind)
	}

	overall := types.DeriveOverall(rec.CommitteeStatus, rec.SlackStatus, rec.EmailStatus)
	args = append(args, string(overall))

	// completed_at is stamped once, on the transition into a terminal overall
	// status, and never cleared.
	completedAt := ""
	if overall.Terminal() && rec.CompletedAt == nil {
		completedAt = ", completed_at = ?"
		args = append(args, time.Now().UTC())
	}
	args = append(args, contactID)

	res, err := q.ExecContext(ctx,
		`UPDATE contacts SET `+column+` = ?`+extra+`, overall_status = ?`+completedAt+` WHERE id = ?`,
		args...)
	if err != nil {
		return fmt.Errorf("failed to update %s status: %w", kind, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("contact %d: %w", contactID, storage.ErrNotFound)
	}

	// Append the audit event in the same transaction as the status write.
	var details any
	if detail != nil {
		payload, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("failed to marshal event details: %w", err)
		}
		details = string(payload)
	}
	if _, err := q.ExecContext(ctx, `
		INSERT INTO events (contact_id, event_type, event_status, event_details)
		VALUES (?, ?, ?, ?)`,
		contactID, string(kind), string(status), details); err != nil {
		return fmt.Errorf("failed to record %s event: %w", kind, err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanContact.
type scanner interface {
	Scan(dest ...any) error
}

func scanContact(row scanner) (*types.ContactRecord, error) {
	var rec types.ContactRecord
	var completedAt sql.NullTime
	err := row.Scan(
		&rec.ID, &rec.SessionID, &rec.ContactID, &rec.Email, &rec.FirstName,
		&rec.LastName, &rec.Title, &rec.ContactType, &rec.CommitteeStatus,
		&rec.CommitteeID, &rec.SlackStatus, &rec.SlackUserID, &rec.EmailStatus,
		&rec.OverallStatus, &rec.StartedAt, &completedAt)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		rec.CompletedAt = &completedAt.Time
	}
	return &rec, nil
}

func scanContacts(rows *sql.Rows) ([]*types.ContactRecord, error) {
	var contacts []*types.ContactRecord
	for rows.Next() {
		rec, err := scanContact(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		contacts = append(contacts, rec)
	}
	return contacts, rows.Err()
}
