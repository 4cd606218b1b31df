package scheduler

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseCronSchedule(t *testing.T) {
	tests := []struct {
		name         string
		cronExpr     string
		expectedHour int
		expectedMin  int
	}{
		{
			name:         "Default 2am",
			cronExpr:     "0 2 * * *",
			expectedHour: 2,
			expectedMin:  0,
		},
		{
			name:         "Half past 2am",
			cronExpr:     "30 2 * * *",
			expectedHour: 2,
			expectedMin:  30,
		},
		{
			name:         "Midnight",
			cronExpr:     "0 0 * * *",
			expectedHour: 0,
			expectedMin:  0,
		},
		{
			name:         "11pm",
			cronExpr:     "0 23 * * *",
			expectedHour: 23,
			expectedMin:  0,
		},
		{
			name:         "Empty string defaults",
			cronExpr:     "",
			expectedHour: 2,
			expectedMin:  0,
		},
		{
			name:         "Extra whitespace",
			cronExpr:     "  15   4   *   *   *  ",
			expectedHour: 4,
			expectedMin:  15,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hour, minute, err := ParseCronSchedule(tt.cronExpr)
			assert.NoError(t, err)
			assert.Equal(t, tt.expectedHour, hour, "hour mismatch")
			assert.Equal(t, tt.expectedMin, minute, "minute mismatch")
		})
	}
}

func TestParseCronSchedule_OutOfRange(t *testing.T) {
	_, _, err := ParseCronSchedule("75 2 * * *")
	assert.Error(t, err)

	_, _, err = ParseCronSchedule("0 25 * * *")
	assert.Error(t, err)
}

func TestNewCronTriggerConfig(t *testing.T) {
	cfg, err := NewCronTriggerConfig("0 2 * * *", "30 2 * * *")
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.AccrualHour)
	assert.Equal(t, 0, cfg.AccrualMinute)
	assert.Equal(t, 2, cfg.SweepHour)
	assert.Equal(t, 30, cfg.SweepMinute)
}

func TestNewCronTriggerConfig_Invalid(t *testing.T) {
	_, err := NewCronTriggerConfig("99 2 * * *", "30 2 * * *")
	assert.Error(t, err)

	_, err = NewCronTriggerConfig("0 2 * * *", "0 99 * * *")
	assert.Error(t, err)
}

func TestDefaultCronTriggerConfig(t *testing.T) {
	cfg := DefaultCronTriggerConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 2, cfg.AccrualHour)
	assert.Equal(t, 0, cfg.AccrualMinute)
	assert.Equal(t, 2, cfg.SweepHour)
	assert.Equal(t, 30, cfg.SweepMinute)
	assert.Equal(t, time.Minute, cfg.CheckInterval)
}

func newStartedTrigger(t *testing.T, executor JobExecutor) *LendingCronTrigger {
	t.Helper()
	cfg := DefaultCronTriggerConfig()
	cfg.CheckInterval = time.Hour // The tests drive checkAndTrigger directly

	sched := newTestScheduler(t, executor)
	trigger := NewLendingCronTrigger(cfg, sched, zap.NewNop())
	require.NoError(t, trigger.Start(context.Background()))
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = trigger.Stop(ctx)
	})
	return trigger
}

func TestCronTrigger_SubmitsAccrualAtScheduledMinute(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	trigger.checkAndTrigger(time.Date(2025, 4, 21, 2, 0, 0, 0, time.UTC))

	waitForCount(t, executor, 1)
	executor.mu.Lock()
	jobType := executor.executed[0].Type
	executor.mu.Unlock()
	assert.Equal(t, JobTypeFineAccrual, jobType)
}

func TestCronTrigger_RunsOncePerDay(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	at := time.Date(2025, 4, 21, 2, 0, 0, 0, time.UTC)
	trigger.checkAndTrigger(at)
	trigger.checkAndTrigger(at.Add(10 * time.Second))

	waitForCount(t, executor, 1)
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, 1, executor.count())

	// Next day fires again
	trigger.checkAndTrigger(at.AddDate(0, 0, 1))
	waitForCount(t, executor, 2)
}

func TestCronTrigger_SubmitsSweepSeparately(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	trigger.checkAndTrigger(time.Date(2025, 4, 21, 2, 30, 0, 0, time.UTC))

	waitForCount(t, executor, 1)
	executor.mu.Lock()
	jobType := executor.executed[0].Type
	executor.mu.Unlock()
	assert.Equal(t, JobTypeBanSweep, jobType)
}

func TestCronTrigger_OffScheduleMinuteIsIgnored(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	trigger.checkAndTrigger(time.Date(2025, 4, 21, 2, 15, 0, 0, time.UTC))

	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, executor.count())
}

func TestCronTrigger_ManualTriggers(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	require.NoError(t, trigger.TriggerAccrualRun())
	require.NoError(t, trigger.TriggerBanSweep())

	waitForCount(t, executor, 2)
}

func TestCronTrigger_ManualTriggerWhenNotRunning(t *testing.T) {
	sched := NewScheduler(DefaultConfig(), &countingExecutor{}, zap.NewNop())
	trigger := NewLendingCronTrigger(DefaultCronTriggerConfig(), sched, zap.NewNop())

	assert.ErrorIs(t, trigger.TriggerAccrualRun(), ErrSchedulerNotRunning)
	assert.ErrorIs(t, trigger.TriggerBanSweep(), ErrSchedulerNotRunning)
}

func TestCronTrigger_GetStatus(t *testing.T) {
	executor := &countingExecutor{}
	trigger := newStartedTrigger(t, executor)

	status := trigger.GetStatus()

	assert.Equal(t, true, status["enabled"])
	assert.Equal(t, true, status["is_running"])
	assert.Equal(t, 2, status["accrual_hour"])
	assert.Equal(t, 30, status["sweep_minute"])
	assert.Contains(t, status, "job_types")
}
