package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/splitscan/splitscan/internal/batch"
)

// SQLite is a file-backed BatchStore. Each batch is stored as one JSON
// document; status is duplicated into its own column for filtering.
type SQLite struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS batches (
	id         TEXT PRIMARY KEY,
	status     TEXT NOT NULL,
	data       TEXT NOT NULL,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_batches_status ON batches (status);
`

// NewSQLite opens (and if needed initializes) a SQLite-backed store.
func NewSQLite(path string) (*SQLite, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite store: %w", err)
	}
	// A single writer keeps the read-modify-write transactions simple.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize sqlite schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

func (s *SQLite) Create(ctx context.Context, b *batch.Batch) error {
	data, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("failed to marshal batch: %w", err)
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO batches (id, status, data, created_at, updated_at) VALUES (?, ?, ?, ?, ?)`,
		b.ID, string(b.Status), string(data),
		b.CreatedAt.Format(time.RFC3339Nano), b.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert batch: %w", err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, id string) (*batch.Batch, error) {
	var data string
	err := s.db.QueryRowContext(ctx, `SELECT data FROM batches WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}
	return unmarshalBatch(data)
}

func (s *SQLite) List(ctx context.Context) ([]*batch.Batch, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT data FROM batches ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list batches: %w", err)
	}
	defer rows.Close()

	var out []*batch.Batch
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, fmt.Errorf("failed to scan batch row: %w", err)
		}
		b, err := unmarshalBatch(data)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLite) Update(ctx context.Context, id string, fn func(*batch.Batch) error) (*batch.Batch, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	var data string
	err = tx.QueryRowContext(ctx, `SELECT data FROM batches WHERE id = ?`, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, batch.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query batch: %w", err)
	}

	b, err := unmarshalBatch(data)
	if err != nil {
		return nil, err
	}

	if err := fn(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = time.Now().UTC()

	updated, err := json.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal batch: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`UPDATE batches SET status = ?, data = ?, updated_at = ? WHERE id = ?`,
		string(b.Status), string(updated), b.UpdatedAt.Format(time.RFC3339Nano), id,
	); err != nil {
		return nil, fmt.Errorf("failed to update batch: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit update: %w", err)
	}
	return b, nil
}

func (s *SQLite) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM batches WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete batch: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if n == 0 {
		return batch.ErrNotFound
	}
	return nil
}

func (s *SQLite) Close() error { return s.db.Close() }

func unmarshalBatch(data string) (*batch.Batch, error) {
	var b batch.Batch
	if err := json.Unmarshal([]byte(data), &b); err != nil {
		return nil, fmt.Errorf("failed to unmarshal batch: %w", err)
	}
	return &b, nil
}
