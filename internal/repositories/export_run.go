package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ExportRun is the history record of one bulk post export.
type ExportRun struct {
	ID         string
	Format     string
	OutputDir  string
	Total      int
	Succeeded  int
	Failed     int
	StartedAt  time.Time
	FinishedAt *time.Time
}

// ExportRunRepository persists [ExportRun] rows.
type ExportRunRepository struct {
	db *sql.DB
}

// NewExportRunRepository creates a new [ExportRunRepository] with the given database connection
func NewExportRunRepository(db *sql.DB) *ExportRunRepository {
	return &ExportRunRepository{db: db}
}

// Start inserts a run that has not finished yet.
func (r *ExportRunRepository) Start(ctx context.Context, run *ExportRun) error {
	if run.ID == "" {
		return fmt.Errorf("export run id is required")
	}
	if run.StartedAt.IsZero() {
		run.StartedAt = time.Now().UTC()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO export_runs (id, format, output_dir, total, started_at)
		VALUES (?, ?, ?, ?, ?)
	`, run.ID, run.Format, run.OutputDir, run.Total, run.StartedAt)
	if err != nil {
		return fmt.Errorf("failed to insert export run: %w", err)
	}
	return nil
}

// Finish records the outcome counts of a run.
func (r *ExportRunRepository) Finish(ctx context.Context, id string, succeeded, failed int) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `
		UPDATE export_runs SET succeeded = ?, failed = ?, finished_at = ? WHERE id = ?
	`, succeeded, failed, now, id)
	if err != nil {
		return fmt.Errorf("failed to update export run: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("export run %s: %w", id, ErrNoRows)
	}
	return nil
}

// Get retrieves a run by id.
func (r *ExportRunRepository) Get(ctx context.Context, id string) (*ExportRun, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, format, output_dir, total, succeeded, failed, started_at, finished_at
		FROM export_runs WHERE id = ?
	`, id)

	run, err := scanExportRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export run %s: %w", id, ErrNoRows)
	}
	return run, err
}

// List returns the most recent runs first, at most limit rows (all when limit <= 0).
func (r *ExportRunRepository) List(ctx context.Context, limit int) ([]*ExportRun, error) {
	query := `
		SELECT id, format, output_dir, total, succeeded, failed, started_at, finished_at
		FROM export_runs ORDER BY started_at DESC
	`
	args := []any{}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query export runs: %w", err)
	}
	defer rows.Close()

	var runs []*ExportRun
	for rows.Next() {
		run, err := scanExportRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return runs, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExportRun(s scanner) (*ExportRun, error) {
	var (
		run      ExportRun
		finished sql.NullTime
	)
	err := s.Scan(&run.ID, &run.Format, &run.OutputDir, &run.Total, &run.Succeeded, &run.Failed, &run.StartedAt, &finished)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan export run: %w", err)
	}
	if finished.Valid {
		run.FinishedAt = &finished.Time
	}
	return &run, nil
}
