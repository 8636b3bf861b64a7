package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"proofok-api/models"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS proof_records (
	id            TEXT PRIMARY KEY,
	original_name TEXT NOT NULL,
	stored_name   TEXT NOT NULL,
	created_at    TEXT NOT NULL,
	status        TEXT NOT NULL,
	responses     TEXT NOT NULL
)`

// SQLiteStore provides SQLite-backed persistence for records.
type SQLiteStore struct {
	sqlDB *sql.DB
}

// OpenSQLite opens (and if needed creates) the database at path.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}

	cleanPath := filepath.Clean(path)
	if err := os.MkdirAll(filepath.Dir(cleanPath), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite directory: %w", err)
	}
	dsn := cleanPath + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.ExecContext(ctx, sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &SQLiteStore{sqlDB: sqlDB}, nil
}

// Close closes the underlying SQLite database.
func (s *SQLiteStore) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Get loads the record for id.
func (s *SQLiteStore) Get(ctx context.Context, id string) (*models.Record, error) {
	if !ValidID(id) {
		return nil, ErrNotFound
	}

	var (
		row       models.ProofRecordRow
		createdAt string
	)
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, original_name, stored_name, created_at, status, responses FROM proof_records WHERE id = ?`, id,
	).Scan(&row.ID, &row.OriginalName, &row.StoredName, &createdAt, &row.Status, &row.Responses)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load record %s: %w", id, err)
	}

	row.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at for %s: %w", id, err)
	}
	return row.ToRecord()
}

// Put upserts the whole record in one statement.
func (s *SQLiteStore) Put(ctx context.Context, rec *models.Record) error {
	if err := checkPut(ctx, rec); err != nil {
		return err
	}
	row, err := models.NewProofRecordRow(rec)
	if err != nil {
		return err
	}

	_, err = s.sqlDB.ExecContext(ctx, `
INSERT INTO proof_records (id, original_name, stored_name, created_at, status, responses)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	original_name = excluded.original_name,
	stored_name   = excluded.stored_name,
	created_at    = excluded.created_at,
	status        = excluded.status,
	responses     = excluded.responses`,
		row.ID, row.OriginalName, row.StoredName, row.CreatedAt.Format(time.RFC3339Nano), row.Status, row.Responses,
	)
	if err != nil {
		return fmt.Errorf("save record %s: %w", rec.ID, err)
	}
	return nil
}
