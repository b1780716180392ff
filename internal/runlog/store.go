package runlog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"albumsync/internal/config"
)

// Store records sync runs in a SQLite database. A Store opened with history
// disabled is inactive: recording is a no-op and queries return nothing.
type Store struct {
	db   *sql.DB
	path string
}

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
)

// Open initializes or connects to the history database.
func Open(cfg *config.Config) (*Store, error) {
	if cfg == nil || !cfg.History.Enabled {
		return &Store{}, nil
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	dbPath := cfg.History.DatabasePath
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys = ON",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	store := &Store{db: db, path: dbPath}
	if err := store.initSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}

	return store, nil
}

// Enabled reports whether the store is backed by a database.
func (s *Store) Enabled() bool {
	return s != nil && s.db != nil
}

// Path returns the database file location, empty when history is disabled.
func (s *Store) Path() string {
	if s == nil {
		return ""
	}
	return s.path
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Record persists a finished run. Inactive stores accept and drop the record.
func (s *Store) Record(ctx context.Context, run *Run) error {
	if run == nil {
		return errors.New("run is nil")
	}
	if !s.Enabled() {
		return nil
	}

	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sync_runs (
            run_id, started_at, finished_at, mode, dry_run, bins_total,
            created_albums, updated_albums, skipped_albums, failed_albums,
            assets_added, assets_removed, status, error_message
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.RunID,
		run.StartedAt.UTC().Format(time.RFC3339Nano),
		run.FinishedAt.UTC().Format(time.RFC3339Nano),
		run.Mode,
		boolToInt(run.DryRun),
		run.BinsTotal,
		run.Created,
		run.Updated,
		run.Skipped,
		run.Failed,
		run.AssetsAdded,
		run.AssetsRemoved,
		string(run.Status),
		nullableString(run.ErrorMessage),
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("last insert id: %w", err)
	}
	run.ID = id
	return nil
}

// Recent returns the most recent runs, newest first. A limit <= 0 returns all.
func (s *Store) Recent(ctx context.Context, limit int) ([]*Run, error) {
	if !s.Enabled() {
		return nil, nil
	}

	query := `SELECT ` + runColumns + ` FROM sync_runs ORDER BY id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// Clear removes all recorded runs.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	res, err := s.execWithRetry(ctx, `DELETE FROM sync_runs`)
	if err != nil {
		return 0, fmt.Errorf("clear history: %w", err)
	}
	return res.RowsAffected()
}

const runColumns = "id, run_id, started_at, finished_at, mode, dry_run, bins_total, created_albums, updated_albums, skipped_albums, failed_albums, assets_added, assets_removed, status, error_message"

func scanRun(scanner interface{ Scan(dest ...any) error }) (*Run, error) {
	var (
		id           int64
		runID        string
		startedRaw   sql.NullString
		finishedRaw  sql.NullString
		mode         sql.NullString
		dryRun       sql.NullInt64
		binsTotal    sql.NullInt64
		created      sql.NullInt64
		updated      sql.NullInt64
		skipped      sql.NullInt64
		failed       sql.NullInt64
		added        sql.NullInt64
		removed      sql.NullInt64
		statusStr    string
		errorMessage sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&runID,
		&startedRaw,
		&finishedRaw,
		&mode,
		&dryRun,
		&binsTotal,
		&created,
		&updated,
		&skipped,
		&failed,
		&added,
		&removed,
		&statusStr,
		&errorMessage,
	); err != nil {
		return nil, err
	}

	run := &Run{
		ID:            id,
		RunID:         runID,
		Mode:          mode.String,
		DryRun:        dryRun.Int64 != 0,
		BinsTotal:     int(binsTotal.Int64),
		Created:       int(created.Int64),
		Updated:       int(updated.Int64),
		Skipped:       int(skipped.Int64),
		Failed:        int(failed.Int64),
		AssetsAdded:   int(added.Int64),
		AssetsRemoved: int(removed.Int64),
		Status:        Status(statusStr),
		ErrorMessage:  errorMessage.String,
	}
	if started, err := parseTimeString(startedRaw.String); err == nil {
		run.StartedAt = started
	}
	if finished, err := parseTimeString(finishedRaw.String); err == nil {
		run.FinishedAt = finished
	}
	return run, nil
}

func ensureContext(ctx context.Context) context.Context {
	if ctx != nil {
		return ctx
	}
	return context.Background()
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil {
			return nil
		}
		if !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if next := delay * 2; next <= busyRetryMaxBackoff {
			delay = next
		}
	}
	return lastErr
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = ensureContext(ctx)
	var (
		res     sql.Result
		execErr error
	)
	if err := retryOnBusy(ctx, func() error {
		res, execErr = s.db.ExecContext(ctx, query, args...)
		return execErr
	}); err != nil {
		return nil, err
	}
	return res, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}
