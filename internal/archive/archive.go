// Package archive provides durable storage for recorded trajectory
// documents.
//
// Storage location and filename policy are the caller's business for
// plain file round trips; the archive exists for setups that accumulate
// many recordings and want listing, lookup by id, and deletion without a
// directory convention. Documents are validated before insert so the
// archive never contains a recording the replay engine would reject.
package archive

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/retrace-io/retrace/internal/trajectory"

	_ "embed"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotFound is returned by Get and Delete for unknown recording ids.
var ErrNotFound = errors.New("recording not found")

// Recording describes one archived recording.
type Recording struct {
	ID          string
	Name        string
	CreatedAt   time.Time
	DurationMs  int64
	SampleCount int
	Document    []byte
}

// Archive is a SQLite-backed recording store. SQLite only supports one
// writer at a time, so the connection pool is limited to a single
// connection; WAL mode keeps concurrent readers cheap.
type Archive struct {
	db *sql.DB
}

// Open creates or opens the archive database at the given path.
// Idempotent: pragmas and schema apply on every open.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect archive: %w", err)
	}

	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}
	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &Archive{db: db}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db == nil {
		return nil
	}
	return a.db.Close()
}

func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return nil
}

// Put validates and stores a recording document under a fresh UUIDv7 id.
// Rejected documents never enter the archive; the validation error is
// returned as-is (a trajectory.DocumentError).
func (a *Archive) Put(ctx context.Context, name string, doc []byte) (Recording, error) {
	store, err := trajectory.Decode(doc)
	if err != nil {
		return Recording{}, fmt.Errorf("put %q: %w", name, err)
	}

	rec := Recording{
		ID:          uuid.Must(uuid.NewV7()).String(),
		Name:        name,
		CreatedAt:   time.Now().UTC().Truncate(time.Second),
		DurationMs:  store.DurationMs(),
		SampleCount: store.SampleCount(),
		Document:    doc,
	}

	_, err = a.db.ExecContext(ctx, `
		INSERT INTO recordings (id, name, created_at, duration_ms, sample_count, document)
		VALUES (?, ?, ?, ?, ?, ?)
	`,
		rec.ID,
		rec.Name,
		rec.CreatedAt.Format(time.RFC3339),
		rec.DurationMs,
		rec.SampleCount,
		rec.Document,
	)
	if err != nil {
		return Recording{}, fmt.Errorf("put %q: %w", name, err)
	}
	return rec, nil
}

// Get returns one recording including its document bytes.
func (a *Archive) Get(ctx context.Context, id string) (Recording, error) {
	row := a.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, duration_ms, sample_count, document
		FROM recordings
		WHERE id = ?
	`, id)

	rec, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Recording{}, fmt.Errorf("get %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return Recording{}, fmt.Errorf("get %s: %w", id, err)
	}
	return rec, nil
}

// List returns all recordings, newest first, without document bytes.
// Returns an empty slice (not nil) when the archive is empty.
func (a *Archive) List(ctx context.Context) ([]Recording, error) {
	rows, err := a.db.QueryContext(ctx, `
		SELECT id, name, created_at, duration_ms, sample_count
		FROM recordings
		ORDER BY created_at DESC, id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list recordings: %w", err)
	}
	defer rows.Close()

	recordings := []Recording{}
	for rows.Next() {
		var rec Recording
		var createdAt string
		if err := rows.Scan(&rec.ID, &rec.Name, &createdAt, &rec.DurationMs, &rec.SampleCount); err != nil {
			return nil, fmt.Errorf("scan recording: %w", err)
		}
		rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parse created_at %q: %w", createdAt, err)
		}
		recordings = append(recordings, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recordings: %w", err)
	}
	return recordings, nil
}

// Delete removes a recording. Deleting an unknown id returns ErrNotFound.
func (a *Archive) Delete(ctx context.Context, id string) error {
	res, err := a.db.ExecContext(ctx, `DELETE FROM recordings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("delete %s: %w", id, ErrNotFound)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecording(row rowScanner) (Recording, error) {
	var rec Recording
	var createdAt string
	if err := row.Scan(&rec.ID, &rec.Name, &createdAt, &rec.DurationMs, &rec.SampleCount, &rec.Document); err != nil {
		return Recording{}, err
	}
	parsed, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return Recording{}, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	rec.CreatedAt = parsed
	return rec, nil
}
