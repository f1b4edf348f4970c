// Package storage archives parsed statements in SQLite. Exactly one
// statement is active at a time; its transactions, read back in upload
// order, are the snapshot questions run against. Older statements stay
// archived for the sheet mirror and for audit.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"mledger/internal/core"
)

// Sync states a statement moves through on its way to the sheet mirror.
const (
	SyncPending = "pending"
	SyncDone    = "done"
	SyncError   = "error"
)

// Statement is the archive record for one uploaded statement.
type Statement struct {
	ID         int64
	Name       string
	UploadedAt time.Time
	Active     bool
	SyncStatus string
	SyncedAt   *time.Time
}

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens (creating if needed) the database at dbPath and
// applies pending migrations.
func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	if err := RunMigrations(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Info("SQLite repository initialized", "path", dbPath)
	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

// ReplaceStatement stores a newly parsed statement and makes it the active
// one. The swap is atomic: readers see either the old statement or the new
// one, never a mix.
func (r *SQLiteRepository) ReplaceStatement(ctx context.Context, name string, txns []core.Transaction) (int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `UPDATE statements SET active = 0 WHERE active = 1`); err != nil {
		return 0, fmt.Errorf("failed to deactivate previous statement: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO statements (name, uploaded_at, active, sync_status) VALUES (?, ?, 1, ?)`,
		name, time.Now().UTC(), SyncPending)
	if err != nil {
		return 0, fmt.Errorf("failed to insert statement: %w", err)
	}
	statementID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read statement id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO transactions
			(statement_id, position, date, time, reference, type, party, description, amount_cents, category, balance_cents)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare transaction insert: %w", err)
	}
	defer stmt.Close()

	for i, t := range txns {
		if _, err := stmt.ExecContext(ctx, statementID, i,
			t.Date, t.Time, t.Reference, t.Type, t.Party, t.Description,
			t.AmountCents, string(t.Category), t.BalanceCents); err != nil {
			return 0, fmt.Errorf("failed to insert transaction %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit statement: %w", err)
	}

	slog.InfoContext(ctx, "Statement replaced",
		"statement_id", statementID, "name", name, "transactions", len(txns))
	return statementID, nil
}

// ActiveTransactions returns the active statement's transactions in upload
// order. An empty archive yields an empty slice, not an error.
func (r *SQLiteRepository) ActiveTransactions(ctx context.Context) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT t.date, t.time, t.reference, t.type, t.party, t.description,
		       t.amount_cents, t.category, t.balance_cents
		FROM transactions t
		JOIN statements s ON s.id = t.statement_id
		WHERE s.active = 1
		ORDER BY t.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query active transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// StatementTransactions returns one archived statement's transactions in
// upload order.
func (r *SQLiteRepository) StatementTransactions(ctx context.Context, statementID int64) ([]core.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT date, time, reference, type, party, description,
		       amount_cents, category, balance_cents
		FROM transactions
		WHERE statement_id = ?
		ORDER BY position`, statementID)
	if err != nil {
		return nil, fmt.Errorf("failed to query statement transactions: %w", err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func scanTransactions(rows *sql.Rows) ([]core.Transaction, error) {
	var txns []core.Transaction
	for rows.Next() {
		var t core.Transaction
		var category string
		if err := rows.Scan(&t.Date, &t.Time, &t.Reference, &t.Type, &t.Party,
			&t.Description, &t.AmountCents, &category, &t.BalanceCents); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Category = core.Category(category)
		txns = append(txns, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transactions: %w", err)
	}
	return txns, nil
}

// GetStatement looks up one archive record.
func (r *SQLiteRepository) GetStatement(ctx context.Context, statementID int64) (*Statement, error) {
	var s Statement
	var active int
	var syncedAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, uploaded_at, active, sync_status, synced_at
		FROM statements WHERE id = ?`, statementID).
		Scan(&s.ID, &s.Name, &s.UploadedAt, &active, &s.SyncStatus, &syncedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrStatementNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get statement: %w", err)
	}
	s.Active = active == 1
	if syncedAt.Valid {
		s.SyncedAt = &syncedAt.Time
	}
	return &s, nil
}

// PendingSyncStatements returns statements still waiting for the sheet
// mirror, oldest first.
func (r *SQLiteRepository) PendingSyncStatements(ctx context.Context, limit int) ([]Statement, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, uploaded_at, active, sync_status, synced_at
		FROM statements
		WHERE sync_status IN (?, ?)
		ORDER BY uploaded_at
		LIMIT ?`, SyncPending, SyncError, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending statements: %w", err)
	}
	defer rows.Close()

	var out []Statement
	for rows.Next() {
		var s Statement
		var active int
		var syncedAt sql.NullTime
		if err := rows.Scan(&s.ID, &s.Name, &s.UploadedAt, &active, &s.SyncStatus, &syncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		s.Active = active == 1
		if syncedAt.Valid {
			s.SyncedAt = &syncedAt.Time
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// MarkSynced records a successful sheet mirror.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, statementID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE statements SET sync_status = ?, synced_at = ? WHERE id = ?`,
		SyncDone, time.Now().UTC(), statementID)
	if err != nil {
		return fmt.Errorf("failed to mark statement synced: %w", err)
	}
	return nil
}

// MarkSyncError records a failed sheet mirror so the pending scan retries it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, statementID int64) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE statements SET sync_status = ? WHERE id = ?`, SyncError, statementID)
	if err != nil {
		return fmt.Errorf("failed to mark statement sync error: %w", err)
	}
	return nil
}
