package scheduler

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/library/backend/internal/application/lending"
)

// AccrualRunner runs one daily fine accrual pass
type AccrualRunner interface {
	Run(ctx context.Context) (*lending.AccrualReport, error)
}

// BanSweeper lifts expired fixed-term bans
type BanSweeper interface {
	SweepExpired(ctx context.Context) (int, error)
}

// LendingJobExecutor dispatches scheduled jobs to the lending services
type LendingJobExecutor struct {
	accrual AccrualRunner
	bans    BanSweeper
	logger  *zap.Logger
}

// NewLendingJobExecutor creates a new LendingJobExecutor
func NewLendingJobExecutor(accrual AccrualRunner, bans BanSweeper, logger *zap.Logger) *LendingJobExecutor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LendingJobExecutor{
		accrual: accrual,
		bans:    bans,
		logger:  logger,
	}
}

// Execute runs the job's maintenance task
func (e *LendingJobExecutor) Execute(ctx context.Context, job *Job) error {
	switch job.Type {
	case JobTypeFineAccrual:
		report, err := e.accrual.Run(ctx)
		if err != nil {
			return fmt.Errorf("fine accrual run failed: %w", err)
		}
		e.logger.Info("Scheduled fine accrual completed",
			zap.String("job_id", job.ID.String()),
			zap.String("run_date", report.RunDate),
			zap.Int("processed", report.Processed),
			zap.Int("updated", report.Updated),
			zap.Int("failed", report.Failed),
			zap.Int("banned", report.Banned),
		)
		return nil

	case JobTypeBanSweep:
		lifted, err := e.bans.SweepExpired(ctx)
		if err != nil {
			return fmt.Errorf("ban sweep failed: %w", err)
		}
		e.logger.Info("Scheduled ban sweep completed",
			zap.String("job_id", job.ID.String()),
			zap.Int("lifted", lifted),
		)
		return nil

	default:
		return fmt.Errorf("%w: %s", ErrUnknownJobType, job.Type)
	}
}
