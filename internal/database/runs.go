package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/scanera/product-service/internal/importer"
)

// ImportRunRepository records one audit row per feed import batch. It
// implements importer.RunRecorder and writes outside the batch
// transaction so failed imports remain visible.
type ImportRunRepository struct {
	pool *pgxpool.Pool
}

// NewImportRunRepository creates a repository over the given pool.
func NewImportRunRepository(pool *pgxpool.Pool) *ImportRunRepository {
	return &ImportRunRepository{pool: pool}
}

// StartRun inserts a running run row and returns its id.
func (r *ImportRunRepository) StartRun(ctx context.Context, feedPath string) (string, error) {
	runID := uuid.New().String()
	_, err := r.pool.Exec(ctx, `
		INSERT INTO import_runs (id, feed_path, status, started_at)
		VALUES ($1, $2, $3, NOW())
	`, runID, feedPath, RunStatusRunning)
	if err != nil {
		return "", fmt.Errorf("insert import run: %w", err)
	}
	return runID, nil
}

// FinishRun marks a run completed or failed with its final counts.
func (r *ImportRunRepository) FinishRun(ctx context.Context, runID string, s importer.Summary, runErr error) error {
	status := RunStatusCompleted
	var errMsg *string
	if runErr != nil {
		status = RunStatusFailed
		msg := runErr.Error()
		errMsg = &msg
	}

	_, err := r.pool.Exec(ctx, `
		UPDATE import_runs
		SET status = $2, created_count = $3, updated_count = $4, skipped_count = $5,
		    error = $6, finished_at = NOW()
		WHERE id = $1
	`, runID, status, s.Created, s.Updated, s.Skipped, errMsg)
	if err != nil {
		return fmt.Errorf("finish import run: %w", err)
	}
	return nil
}

// ListRecent returns the most recent runs, newest first.
func (r *ImportRunRepository) ListRecent(ctx context.Context, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
		SELECT id, feed_path, status, created_count, updated_count, skipped_count,
		       error, started_at, finished_at
		FROM import_runs
		ORDER BY started_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	defer rows.Close()

	runs := []ImportRun{}
	for rows.Next() {
		var run ImportRun
		if err := rows.Scan(
			&run.ID, &run.FeedPath, &run.Status,
			&run.CreatedCount, &run.UpdatedCount, &run.SkippedCount,
			&run.Error, &run.StartedAt, &run.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan import run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
