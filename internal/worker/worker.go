// Package worker runs the outbox loop: it leases due jobs from the jobs
// table and hands them to their processor. Leasing happens through a
// SKIP LOCKED status flip, so multiple worker processes can run safely
// against the same table.
package worker

import (
	"context"
	"sync"
	"time"

	"remit-ledger/internal/core/domain"
	"remit-ledger/internal/core/ports"

	"github.com/rs/zerolog"
)

// Runner polls the job table and dispatches leased jobs.
type Runner struct {
	jobRepo      ports.JobRepository
	withdrawals  ports.WithdrawalService
	pollInterval time.Duration
	log          zerolog.Logger

	stopOnce sync.Once
	stopped  chan struct{}
	done     chan struct{}
}

// New creates a worker runner.
func New(jobRepo ports.JobRepository, withdrawals ports.WithdrawalService, pollInterval time.Duration, log zerolog.Logger) *Runner {
	return &Runner{
		jobRepo:      jobRepo,
		withdrawals:  withdrawals,
		pollInterval: pollInterval,
		log:          log,
		stopped:      make(chan struct{}),
		done:         make(chan struct{}),
	}
}

// Start runs the poll loop until Stop is called or ctx is cancelled.
// It returns immediately; the loop runs on its own goroutine.
func (r *Runner) Start(ctx context.Context) {
	go r.loop(ctx)
}

// Stop signals the loop to exit and waits for the in-flight job, if any,
// to finish.
func (r *Runner) Stop() {
	r.stopOnce.Do(func() { close(r.stopped) })
	<-r.done
}

func (r *Runner) loop(ctx context.Context) {
	defer close(r.done)

	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	r.log.Info().Dur("poll_interval", r.pollInterval).Msg("worker started")

	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("worker stopping: context cancelled")
			return
		case <-r.stopped:
			r.log.Info().Msg("worker stopping")
			return
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

// drain processes due jobs until the table has none left, so a backlog
// clears faster than one job per tick.
func (r *Runner) drain(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.stopped:
			return
		default:
		}

		job, err := r.jobRepo.PickPending(ctx, time.Now().UTC())
		if err != nil {
			r.log.Error().Err(err).Msg("picking pending job")
			return
		}
		if job == nil {
			return
		}
		r.dispatch(ctx, job)
	}
}

func (r *Runner) dispatch(ctx context.Context, job *domain.Job) {
	log := r.log.With().
		Str("job_id", job.ID.String()).
		Str("job_type", string(job.JobType)).
		Int("attempts", job.Attempts).
		Logger()

	switch job.JobType {
	case domain.JobTypeProcessWithdraw:
		if err := r.withdrawals.ProcessJob(ctx, job); err != nil {
			log.Error().Err(err).Msg("processing withdraw job")
			return
		}
		log.Debug().Msg("job processed")
	default:
		log.Error().Msg("unknown job type, leaving in PROCESSING for inspection")
	}
}
