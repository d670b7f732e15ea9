package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JobType identifies what a queued job does.
type JobType string

const (
	JobTypeProcessWithdraw JobType = "PROCESS_WITHDRAW"
)

// JobStatus represents the lifecycle state of an outbox job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "PENDING"
	JobStatusProcessing JobStatus = "PROCESSING"
	JobStatusCompleted  JobStatus = "COMPLETED"
	JobStatusFailed     JobStatus = "FAILED"
)

// Job is a durable outbox record for a slow external side effect. It is
// written in the same transaction as the financial mutation it belongs to
// and executed later by the worker. The PENDING->PROCESSING status flip
// acts as a single-writer lease.
type Job struct {
	ID          uuid.UUID       `json:"id"`
	JobType     JobType         `json:"job_type"`
	Payload     json.RawMessage `json:"payload"`
	Status      JobStatus       `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	RunAt       time.Time       `json:"run_at"`
	LastError   *string         `json:"last_error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// WithdrawJobPayload is the payload of a PROCESS_WITHDRAW job.
type WithdrawJobPayload struct {
	WithdrawalID uuid.UUID `json:"withdrawal_id"`
}

// NewWithdrawJob builds a PROCESS_WITHDRAW job due immediately.
func NewWithdrawJob(withdrawalID uuid.UUID, maxAttempts int, now time.Time) (*Job, error) {
	payload, err := json.Marshal(WithdrawJobPayload{WithdrawalID: withdrawalID})
	if err != nil {
		return nil, err
	}
	return &Job{
		ID:          uuid.New(),
		JobType:     JobTypeProcessWithdraw,
		Payload:     payload,
		Status:      JobStatusPending,
		Attempts:    0,
		MaxAttempts: maxAttempts,
		RunAt:       now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
