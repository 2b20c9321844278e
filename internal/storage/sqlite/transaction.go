package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lfx-eng/onboard/internal/storage"
	"github.com/lfx-eng/onboard/internal/types"
)

// Verify sqliteTx implements storage.Tx at compile time
var _ storage.Tx = (*sqliteTx)(nil)

// querier is the subset of database/sql execution methods shared by *sql.DB
// and *sql.Conn. Query helpers are written against it so the same code serves
// both direct store calls and calls inside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// sqliteTx implements the storage.Tx interface for SQLite.
// It wraps a dedicated database connection with an active transaction.
type sqliteTx struct {
	conn *sql.Conn
}

// RunInTx executes a function within a database transaction.
//
// The transaction uses BEGIN IMMEDIATE to acquire the write lock early,
// preventing deadlocks when multiple goroutines compete for the same lock.
//
// Transaction lifecycle:
//  1. Acquire dedicated connection from pool
//  2. Begin IMMEDIATE transaction with retry on SQLITE_BUSY
//  3. Execute user function with the Tx interface
//  4. On success: COMMIT
//  5. On error or panic: ROLLBACK
func (s *Store) RunInTx(ctx context.Context, fn func(tx storage.Tx) error) error {
	// All statements in the transaction must use the same connection;
	// database/sql's pool would otherwise spread them across connections.
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("failed to acquire connection for transaction: %w", err)
	}
	defer func() { _ = conn.Close() }()

	if err := beginImmediateWithRetry(ctx, conn, 5, 10*time.Millisecond); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	// Rollback in the defer unless committed; background context so cleanup
	// happens even if ctx is cancelled. A panic in fn unwinds through the
	// defer, rolls back, and is re-raised to the caller.
	committed := false
	defer func() {
		if !committed {
			_, _ = conn.ExecContext(context.Background(), "ROLLBACK")
		}
	}()

	if err := fn(&sqliteTx{conn: conn}); err != nil {
		return err // rollback happens in defer
	}

	if _, err := conn.ExecContext(ctx, "COMMIT"); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	committed = true
	return nil
}

// beginImmediateWithRetry starts an IMMEDIATE transaction, retrying with
// exponential backoff when SQLITE_BUSY is reported. database/sql's BeginTx
// cannot express transaction modes, so this issues raw SQL on the connection.
func beginImmediateWithRetry(ctx context.Context, conn *sql.Conn, attempts int, initialDelay time.Duration) error {
	var err error
	delay := initialDelay
	for i := 0; i < attempts; i++ {
		_, err = conn.ExecContext(ctx, "BEGIN IMMEDIATE")
		if err == nil {
			return nil
		}
		if !isBusyError(err) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= 2
	}
	return err
}

func isBusyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

// AddContact creates a pending contact row within the transaction.
func (t *sqliteTx) AddContact(ctx context.Context, sessionID int64, contact *types.Contact) (int64, error) {
	return addContact(ctx, t.conn, sessionID, contact)
}

// GetContact reads a contact row within the transaction.
func (t *sqliteTx) GetContact(ctx context.Context, contactID int64) (*types.ContactRecord, error) {
	return getContact(ctx, t.conn, contactID)
}

// UpdateContactStatus records a sub-step outcome within the transaction.
func (t *sqliteTx) UpdateContactStatus(ctx context.Context, contactID int64, kind types.EventType, status types.StepStatus, detail *storage.StatusDetail) error {
	return updateContactStatus(ctx, t.conn, contactID, kind, status, detail)
}
