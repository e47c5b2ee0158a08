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

	apperrors "opsreports/internal/errors"

	_ "modernc.org/sqlite"
)

// Run statuses
const (
	StatusRunning = "running"
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// ErrRunNotFound is returned by Get for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// Run is one persisted report execution.
type Run struct {
	ID          string     `json:"id"`
	Report      string     `json:"report"`
	DateMode    int        `json:"date_mode"`
	DateInput   string     `json:"date_input"`
	Location    string     `json:"location"`
	RowsIn      int        `json:"rows_in"`
	RowsOut     int        `json:"rows_out"`
	Charts      int        `json:"charts"`
	EmptyCharts int        `json:"empty_charts"`
	Status      string     `json:"status"`
	Error       string     `json:"error,omitempty"`
	StartedAt   time.Time  `json:"started_at"`
	FinishedAt  *time.Time `json:"finished_at,omitempty"`
}

// Store persists run history in SQLite.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open creates the database directory, opens dbPath and applies migrations.
func Open(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, apperrors.NewStorageError("create db directory", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, apperrors.NewStorageError("open sqlite database", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("ping database", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, apperrors.NewStorageError("run migrations", err)
	}

	return &Store{db: db, logger: logger}, nil
}

// Close closes the database
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return apperrors.NewStorageError("ping database", err)
	}
	return nil
}

// Create inserts a run in the running state.
func (s *Store) Create(ctx context.Context, run *Run) error {
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO runs (id, report, date_mode, date_input, location, status, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Report, run.DateMode, run.DateInput, run.Location, run.Status, run.StartedAt)
	if err != nil {
		return apperrors.NewStorageError("insert run", err)
	}

	s.logger.DebugContext(ctx, "run created",
		slog.String("run_id", run.ID),
		slog.String("report", run.Report))
	return nil
}

// Finish stores the outcome of a run.
func (s *Store) Finish(ctx context.Context, run *Run) error {
	if run.FinishedAt == nil {
		now := time.Now().UTC()
		run.FinishedAt = &now
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE runs
		SET location = ?, rows_in = ?, rows_out = ?, charts = ?, empty_charts = ?,
		    status = ?, error = ?, finished_at = ?
		WHERE id = ?`,
		run.Location, run.RowsIn, run.RowsOut, run.Charts, run.EmptyCharts,
		run.Status, run.Error, *run.FinishedAt, run.ID)
	if err != nil {
		return apperrors.NewStorageError("update run", err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return apperrors.NewNotFoundError(fmt.Sprintf("run %s", run.ID), ErrRunNotFound)
	}
	return nil
}

const selectRuns = `
	SELECT id, report, date_mode, date_input, location, rows_in, rows_out, charts,
	       empty_charts, status, error, started_at, finished_at
	FROM runs`

// List returns the most recent runs first. limit <= 0 means 50.
func (s *Store) List(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY started_at DESC, id LIMIT ?`, limit)
	if err != nil {
		return nil, apperrors.NewStorageError("list runs", err)
	}
	defer rows.Close()

	runs := make([]Run, 0)
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterate runs", err)
	}
	return runs, nil
}

// Get returns one run by id.
func (s *Store) Get(ctx context.Context, id string) (*Run, error) {
	row := s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, id)
	run, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(fmt.Sprintf("run %s", id), ErrRunNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (Run, error) {
	var (
		run      Run
		finished sql.NullTime
	)
	err := row.Scan(&run.ID, &run.Report, &run.DateMode, &run.DateInput, &run.Location,
		&run.RowsIn, &run.RowsOut, &run.Charts, &run.EmptyCharts, &run.Status, &run.Error,
		&run.StartedAt, &finished)
	if errors.Is(err, sql.ErrNoRows) {
		return run, err
	}
	if err != nil {
		return run, apperrors.NewStorageError("scan run", err)
	}
	if finished.Valid {
		t := finished.Time
		run.FinishedAt = &t
	}
	return run, nil
}
