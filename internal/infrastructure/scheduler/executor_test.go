package scheduler

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/library/backend/internal/application/lending"
)

type fakeAccrualRunner struct {
	runs   int
	report *lending.AccrualReport
	err    error
}

func (f *fakeAccrualRunner) Run(ctx context.Context) (*lending.AccrualReport, error) {
	f.runs++
	if f.err != nil {
		return nil, f.err
	}
	return f.report, nil
}

type fakeBanSweeper struct {
	sweeps int
	lifted int
	err    error
}

func (f *fakeBanSweeper) SweepExpired(ctx context.Context) (int, error) {
	f.sweeps++
	return f.lifted, f.err
}

func TestLendingJobExecutor_FineAccrual(t *testing.T) {
	runner := &fakeAccrualRunner{report: &lending.AccrualReport{RunDate: "2025-04-21", Processed: 3, Updated: 2}}
	sweeper := &fakeBanSweeper{}
	executor := NewLendingJobExecutor(runner, sweeper, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(JobTypeFineAccrual, 0))

	require.NoError(t, err)
	assert.Equal(t, 1, runner.runs)
	assert.Zero(t, sweeper.sweeps)
}

func TestLendingJobExecutor_BanSweep(t *testing.T) {
	runner := &fakeAccrualRunner{}
	sweeper := &fakeBanSweeper{lifted: 4}
	executor := NewLendingJobExecutor(runner, sweeper, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(JobTypeBanSweep, 0))

	require.NoError(t, err)
	assert.Equal(t, 1, sweeper.sweeps)
	assert.Zero(t, runner.runs)
}

func TestLendingJobExecutor_AccrualErrorPropagates(t *testing.T) {
	runner := &fakeAccrualRunner{err: errors.New("settings unavailable")}
	executor := NewLendingJobExecutor(runner, &fakeBanSweeper{}, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(JobTypeFineAccrual, 0))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings unavailable")
}

func TestLendingJobExecutor_SweepErrorPropagates(t *testing.T) {
	sweeper := &fakeBanSweeper{err: errors.New("db down")}
	executor := NewLendingJobExecutor(&fakeAccrualRunner{}, sweeper, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(JobTypeBanSweep, 0))

	assert.Error(t, err)
}

func TestLendingJobExecutor_UnknownJobType(t *testing.T) {
	executor := NewLendingJobExecutor(&fakeAccrualRunner{}, &fakeBanSweeper{}, zap.NewNop())

	err := executor.Execute(context.Background(), NewJob(JobType("REINDEX"), 0))

	assert.ErrorIs(t, err, ErrUnknownJobType)
}
