package history

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

	"abb/internal/config"
)

// timeLayout has fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// Build is one recorded build attempt.
type Build struct {
	ID         string
	Mode       string
	Source     string
	Manifest   string
	Output     string
	Chapters   int
	Duration   time.Duration
	Status     string
	Error      string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Elapsed is the wall-clock time of the build.
func (b Build) Elapsed() time.Duration {
	if b.FinishedAt.Before(b.StartedAt) {
		return 0
	}
	return b.FinishedAt.Sub(b.StartedAt)
}

// Store persists builds in SQLite.
type Store struct {
	db   *sql.DB
	path string
}

// ErrDisabled is returned by Open when history is turned off in config.
var ErrDisabled = errors.New("build history disabled")

// Open connects to the configured history database, creating it if needed.
func Open(cfg *config.Config) (*Store, error) {
	if !cfg.History.Enabled {
		return nil, ErrDisabled
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.History.Path)
}

// OpenPath opens the database at dbPath and applies migrations.
func OpenPath(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.applyMigrations(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the database file location.
func (s *Store) Path() string {
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record inserts or replaces a build row.
func (s *Store) Record(ctx context.Context, b Build) error {
	if strings.TrimSpace(b.ID) == "" {
		return errors.New("record build: empty id")
	}
	_, err := s.db.ExecContext(
		ctx,
		`INSERT OR REPLACE INTO builds (
            id, mode, source_path, manifest_path, output_path, chapter_count,
            duration_ms, status, error_message, started_at, finished_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.ID,
		b.Mode,
		b.Source,
		nullableString(b.Manifest),
		b.Output,
		b.Chapters,
		b.Duration.Milliseconds(),
		b.Status,
		nullableString(b.Error),
		b.StartedAt.UTC().Format(timeLayout),
		b.FinishedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("insert build: %w", err)
	}
	return nil
}

// Recent returns up to limit builds, newest first. A non-positive limit
// returns every row.
func (s *Store) Recent(ctx context.Context, limit int) ([]Build, error) {
	query := `SELECT id, mode, source_path, manifest_path, output_path, chapter_count,
        duration_ms, status, error_message, started_at, finished_at
        FROM builds ORDER BY started_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query builds: %w", err)
	}
	defer rows.Close()

	var builds []Build
	for rows.Next() {
		b, err := scanBuild(rows)
		if err != nil {
			return nil, err
		}
		builds = append(builds, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate builds: %w", err)
	}
	return builds, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBuild(row scanner) (Build, error) {
	var (
		b          Build
		manifest   sql.NullString
		errMessage sql.NullString
		durationMS int64
		started    string
		finished   string
	)
	if err := row.Scan(&b.ID, &b.Mode, &b.Source, &manifest, &b.Output, &b.Chapters,
		&durationMS, &b.Status, &errMessage, &started, &finished); err != nil {
		return Build{}, fmt.Errorf("scan build: %w", err)
	}
	b.Manifest = manifest.String
	b.Error = errMessage.String
	b.Duration = time.Duration(durationMS) * time.Millisecond
	b.StartedAt = parseTime(started)
	b.FinishedAt = parseTime(finished)
	return b, nil
}

func parseTime(value string) time.Time {
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nullableString(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
