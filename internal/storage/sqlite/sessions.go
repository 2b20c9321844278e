package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/types"
)

// CreateSession creates a new onboarding session and returns its id.
func (s *Store) CreateSession(ctx context.Context, orgName, projectSlug, memberID, projectID string) (int64, error) {
	if orgName == "" || projectSlug == "" {
		return 0, fmt.Errorf("organization name and project slug are required")
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (organization_name, project_slug, member_id, project_id)
		VALUES (?, ?, ?, ?)`,
		orgName, projectSlug, memberID, projectID)
	if err != nil {
		return 0, fmt.Errorf("failed to create session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get session id: %w", err)
	}
	return id, nil
}

// GetSession returns a session row by id.
func (s *Store) GetSession(ctx context.Context, sessionID int64) (*types.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, organization_name, project_slug, member_id, project_id,
		       started_at, completed_at, status,
		       total_contacts, successful_contacts, failed_contacts
		FROM sessions WHERE id = ?`, sessionID)

	sess, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("session %d: %w", sessionID, storage.ErrNotFound)
	}
	return sess, err
}

// RefreshSessionStats recomputes the session's contact counts by scanning its
// contacts: total = all rows, successful = overall completed, failed = overall
// failed. The counts are written back to the session row and returned.
func (s *Store) RefreshSessionStats(ctx context.Context, sessionID int64) (*types.SessionStats, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET
			total_contacts = (
				SELECT COUNT(*) FROM contacts WHERE session_id = ?
			),
			successful_contacts = (
				SELECT COUNT(*) FROM contacts WHERE session_id = ? AND overall_status = 'completed'
			),
			failed_contacts = (
				SELECT COUNT(*) FROM contacts WHERE session_id = ? AND overall_status = 'failed'
			)
		WHERE id = ?`,
		sessionID, sessionID, sessionID, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to refresh session stats: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, fmt.Errorf("session %d: %w", sessionID, storage.ErrNotFound)
	}

	var stats types.SessionStats
	err = s.db.QueryRowContext(ctx, `
		SELECT total_contacts, successful_contacts, failed_contacts
		FROM sessions WHERE id = ?`, sessionID).
		Scan(&stats.Total, &stats.Successful, &stats.Failed)
	if err != nil {
		return nil, fmt.Errorf("failed to read session stats: %w", err)
	}
	return &stats, nil
}

// CompleteSession marks the session completed and stamps completed_at.
// Completing an already-completed session is a no-op.
func (s *Store) CompleteSession(ctx context.Context, sessionID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE sessions SET status = 'completed', completed_at = ?
		WHERE id = ? AND status <> 'completed'`,
		time.Now().UTC(), sessionID)
	if err != nil {
		return fmt.Errorf("failed to complete session: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Either missing or already completed; distinguish for the caller.
		var exists int
		if scanErr := s.db.QueryRowContext(ctx, `SELECT 1 FROM sessions WHERE id = ?`, sessionID).Scan(&exists); scanErr != nil {
			return fmt.Errorf("session %d: %w", sessionID, storage.ErrNotFound)
		}
	}
	return nil
}

// GetSessionReport returns the session row, every contact ordered by
// (contact_type, email), and the per-type summary.
func (s *Store) GetSessionReport(ctx context.Context, sessionID int64) (*types.Report, error) {
	sess, err := s.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+`
		FROM contacts
		WHERE session_id = ?
		ORDER BY contact_type, email`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query session contacts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	contacts, err := scanContacts(rows)
	if err != nil {
		return nil, err
	}

	summaryRows, err := s.db.QueryContext(ctx, `
		SELECT contact_type,
		       COUNT(*) AS total,
		       SUM(CASE WHEN overall_status = 'completed' THEN 1 ELSE 0 END) AS successful
		FROM contacts
		WHERE session_id = ?
		GROUP BY contact_type
		ORDER BY contact_type`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to query type summary: %w", err)
	}
	defer func() { _ = summaryRows.Close() }()

	var summary []types.TypeSummary
	for summaryRows.Next() {
		var ts types.TypeSummary
		if err := summaryRows.Scan(&ts.ContactType, &ts.Total, &ts.Successful); err != nil {
			return nil, fmt.Errorf("failed to scan type summary: %w", err)
		}
		summary = append(summary, ts)
	}
	if err := summaryRows.Err(); err != nil {
		return nil, err
	}

	return &types.Report{Session: sess, Contacts: contacts, TypeSummary: summary}, nil
}

func scanSession(row scanner) (*types.Session, error) {
	var sess types.Session
	var completedAt sql.NullTime
	err := row.Scan(
		&sess.ID, &sess.OrganizationName, &sess.ProjectSlug, &sess.MemberID,
		&sess.ProjectID, &sess.StartedAt, &completedAt, &sess.Status,
		&sess.TotalContacts, &sess.SuccessfulContacts, &sess.FailedContacts)
	if err != nil {
		return nil, err
	}
	if completedAt.Valid {
		sess.CompletedAt = &completedAt.Time
	}
	return &sess, nil
}
