package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"remit-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// JobRepo implements ports.JobRepository.
type JobRepo struct {
	pool Pool
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(pool Pool) *JobRepo {
	return &JobRepo{pool: pool}
}

// Create inserts an outbox job within a database transaction, so the job
// commits together with the financial mutation it belongs to.
func (r *JobRepo) Create(ctx context.Context, tx pgx.Tx, j *domain.Job) error {
	query := `INSERT INTO jobs (id, job_type, payload, status, attempts, max_attempts, run_at, last_error, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := tx.Exec(ctx, query,
		j.ID, j.JobType, j.Payload, j.Status, j.Attempts, j.MaxAttempts,
		j.RunAt, j.LastError, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

// PickPending leases the next due job. The status flip to PROCESSING and
// the pick are one statement; SKIP LOCKED keeps concurrent workers from
// fighting over the same row.
func (r *JobRepo) PickPending(ctx context.Context, now time.Time) (*domain.Job, error) {
	query := `UPDATE jobs SET status = $1, updated_at = NOW()
		WHERE id = (
			SELECT id FROM jobs
			WHERE status = $2 AND run_at <= $3
			ORDER BY run_at
			LIMIT 1
			FOR UPDATE SKIP LOCKED
		)
		RETURNING id, job_type, payload, status, attempts, max_attempts, run_at, last_error, created_at, updated_at`

	j := &domain.Job{}
	err := r.pool.QueryRow(ctx, query, domain.JobStatusProcessing, domain.JobStatusPending, now).Scan(
		&j.ID, &j.JobType, &j.Payload, &j.Status, &j.Attempts, &j.MaxAttempts,
		&j.RunAt, &j.LastError, &j.CreatedAt, &j.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("pick pending job: %w", err)
	}
	return j, nil
}

// MarkCompleted finishes a job.
func (r *JobRepo) MarkCompleted(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE jobs SET status = $2, updated_at = NOW() WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, domain.JobStatusCompleted); err != nil {
		return fmt.Errorf("complete job: %w", err)
	}
	return nil
}

// Reschedule puts a job back in the queue with a later run_at after a
// failed attempt.
func (r *JobRepo) Reschedule(ctx context.Context, id uuid.UUID, attempts int, runAt time.Time, lastError string) error {
	query := `UPDATE jobs SET status = $2, attempts = $3, run_at = $4, last_error = $5, updated_at = NOW()
		WHERE id = $1`

	if _, err := r.pool.Exec(ctx, query, id, domain.JobStatusPending, attempts, runAt, lastError); err != nil {
		return fmt.Errorf("reschedule job: %w", err)
	}
	return nil
}

// MarkFailed terminally fails a job within the compensation transaction.
func (r *JobRepo) MarkFailed(ctx context.Context, tx pgx.Tx, id uuid.UUID, lastError string) error {
	query := `UPDATE jobs SET status = $2, last_error = $3, updated_at = NOW() WHERE id = $1`

	if _, err := tx.Exec(ctx, query, id, domain.JobStatusFailed, lastError); err != nil {
		return fmt.Errorf("fail job: %w", err)
	}
	return nil
}
