// Package manifest keeps a history of point cloud exports in SQLite.
package manifest

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/Faultbox/meshpcd/internal/export"
)

//go:embed schema.sql
var schemaSQL string

// Entry is one recorded export.
type Entry struct {
	ID        int64
	RunID     uuid.UUID
	Object    string
	Path      string
	Points    int
	Channels  []string
	Status    string // export.Kind name, "None" on success
	Error     string
	CreatedAt time.Time
}

// DB is the export history database.
type DB struct {
	*sql.DB
	now func() time.Time
}

var _ export.Recorder = (*DB)(nil)

// Open opens or creates the database at path and applies the schema.
func Open(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening manifest %s: %w", path, err)
	}
	// A single connection keeps ":memory:" databases intact.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying manifest schema: %w", err)
	}
	return &DB{DB: db, now: time.Now}, nil
}

// Record stores one export result.
func (db *DB) Record(ctx context.Context, runID uuid.UUID, res export.Result) error {
	query := `
		INSERT INTO exports (run_id, object, path, points, channels, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	var errText string
	if res.Err != nil {
		errText = res.Err.Error()
	}

	_, err := db.ExecContext(ctx, query,
		runID.String(), res.Object, res.Path, res.Points,
		strings.Join(res.Channels, ","), res.Kind.String(), errText,
		db.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("recording export of %s: %w", res.Object, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (db *DB) Recent(ctx context.Context, limit int) ([]Entry, error) {
	query := `
		SELECT id, run_id, object, path, points, channels, status, error, created_at
		FROM exports
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`

	rows, err := db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("querying exports: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			runID    string
			channels string
			created  int64
		)
		if err := rows.Scan(&e.ID, &runID, &e.Object, &e.Path, &e.Points, &channels, &e.Status, &e.Error, &created); err != nil {
			return nil, fmt.Errorf("scanning export: %w", err)
		}
		if e.RunID, err = uuid.Parse(runID); err != nil {
			return nil, fmt.Errorf("export %d: %w", e.ID, err)
		}
		if channels != "" {
			e.Channels = strings.Split(channels, ",")
		}
		e.CreatedAt = time.UnixMilli(created)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
