package scheduler

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// cronTickerInterval is how often the trigger checks whether a run is due
const cronTickerInterval = time.Minute

// CronTriggerConfig holds the daily schedule for both maintenance jobs
type CronTriggerConfig struct {
	Enabled bool

	// Accrual run time (24h clock)
	AccrualHour   int
	AccrualMinute int

	// Ban sweep time, scheduled after the accrual run so newly expired
	// bans from manual corrections are picked up the same night
	SweepHour   int
	SweepMinute int

	CheckInterval time.Duration
}

// DefaultCronTriggerConfig returns the default schedule: accrual at 2:00,
// sweep at 2:30
func DefaultCronTriggerConfig() CronTriggerConfig {
	return CronTriggerConfig{
		Enabled:       true,
		AccrualHour:   2,
		AccrualMinute: 0,
		SweepHour:     2,
		SweepMinute:   30,
		CheckInterval: cronTickerInterval,
	}
}

// NewCronTriggerConfig builds a trigger config from two cron expressions
// of the form "minute hour * * *"
func NewCronTriggerConfig(accrualExpr, sweepExpr string) (CronTriggerConfig, error) {
	cfg := DefaultCronTriggerConfig()

	hour, minute, err := ParseCronSchedule(accrualExpr)
	if err != nil {
		return cfg, fmt.Errorf("invalid accrual schedule %q: %w", accrualExpr, err)
	}
	cfg.AccrualHour = hour
	cfg.AccrualMinute = minute

	hour, minute, err = ParseCronSchedule(sweepExpr)
	if err != nil {
		return cfg, fmt.Errorf("invalid sweep schedule %q: %w", sweepExpr, err)
	}
	cfg.SweepHour = hour
	cfg.SweepMinute = minute

	return cfg, nil
}

// ParseCronSchedule parses a cron expression "minute hour * * *" to extract hour and minute
// Returns defaults (2:00) if the expression is empty or has too few fields
func ParseCronSchedule(cronExpr string) (hour, minute int, err error) {
	hour = 2
	minute = 0

	if cronExpr == "" {
		return hour, minute, nil
	}

	parts := strings.Fields(cronExpr)
	if len(parts) < 2 {
		return hour, minute, nil
	}

	if parts[0] != "*" {
		if val, parseErr := parseIntOrDefault(parts[0], 0); parseErr == nil {
			minute = val
		}
	}
	if parts[1] != "*" {
		if val, parseErr := parseIntOrDefault(parts[1], 2); parseErr == nil {
			hour = val
		}
	}

	if minute < 0 || minute > 59 {
		return 2, 0, fmt.Errorf("minute must be 0-59, got %d", minute)
	}
	if hour < 0 || hour > 23 {
		return 2, 0, fmt.Errorf("hour must be 0-23, got %d", hour)
	}

	return hour, minute, nil
}

// parseIntOrDefault parses an int string or returns default
func parseIntOrDefault(s string, defaultVal int) (int, error) {
	if s == "" || s == "*" {
		return defaultVal, nil
	}
	var val int
	for _, c := range s {
		if c < '0' || c > '9' {
			return defaultVal, ErrInvalidConfig
		}
		val = val*10 + int(c-'0')
	}
	return val, nil
}

// LendingCronTrigger submits the daily accrual run and ban sweep to the
// scheduler at their configured times. A per-job last-run-date guard makes
// restarts within the trigger minute harmless.
type LendingCronTrigger struct {
	config    CronTriggerConfig
	scheduler *Scheduler
	logger    *zap.Logger

	cancel    context.CancelFunc
	wg        sync.WaitGroup
	mu        sync.Mutex
	isRunning bool

	lastAccrualDate string
	lastSweepDate   string
}

// NewLendingCronTrigger creates a new cron trigger
func NewLendingCronTrigger(config CronTriggerConfig, scheduler *Scheduler, logger *zap.Logger) *LendingCronTrigger {
	if config.CheckInterval <= 0 {
		config.CheckInterval = cronTickerInterval
	}
	return &LendingCronTrigger{
		config:    config,
		scheduler: scheduler,
		logger:    logger,
	}
}

// Start starts the cron trigger
func (c *LendingCronTrigger) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = true
	c.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	c.cancel = cancel

	c.wg.Add(1)
	go c.runLoop(ctx)

	c.logger.Info("Lending cron trigger started",
		zap.Int("accrual_hour", c.config.AccrualHour),
		zap.Int("accrual_minute", c.config.AccrualMinute),
		zap.Int("sweep_hour", c.config.SweepHour),
		zap.Int("sweep_minute", c.config.SweepMinute),
	)

	return nil
}

// Stop stops the cron trigger
func (c *LendingCronTrigger) Stop(ctx context.Context) error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return nil
	}
	c.isRunning = false
	c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}

	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		c.logger.Info("Lending cron trigger stopped")
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runLoop checks periodically whether either job is due
func (c *LendingCronTrigger) runLoop(ctx context.Context) {
	defer c.wg.Done()

	ticker := time.NewTicker(c.config.CheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			c.checkAndTrigger(now)
		}
	}
}

// checkAndTrigger submits each job whose scheduled minute has arrived and
// which has not yet run today
func (c *LendingCronTrigger) checkAndTrigger(now time.Time) {
	currentDate := now.Format("2006-01-02")

	if now.Hour() == c.config.AccrualHour && now.Minute() == c.config.AccrualMinute {
		c.mu.Lock()
		due := c.lastAccrualDate != currentDate
		if due {
			c.lastAccrualDate = currentDate
		}
		c.mu.Unlock()

		if due {
			c.logger.Info("Triggering daily fine accrual", zap.String("run_date", currentDate))
			if err := c.scheduler.Submit(JobTypeFineAccrual); err != nil {
				c.logger.Error("Failed to submit fine accrual job", zap.Error(err))
			}
		}
	}

	if now.Hour() == c.config.SweepHour && now.Minute() == c.config.SweepMinute {
		c.mu.Lock()
		due := c.lastSweepDate != currentDate
		if due {
			c.lastSweepDate = currentDate
		}
		c.mu.Unlock()

		if due {
			c.logger.Info("Triggering daily ban sweep", zap.String("run_date", currentDate))
			if err := c.scheduler.Submit(JobTypeBanSweep); err != nil {
				c.logger.Error("Failed to submit ban sweep job", zap.Error(err))
			}
		}
	}
}

// TriggerAccrualRun submits a fine accrual job outside the daily schedule
func (c *LendingCronTrigger) TriggerAccrualRun() error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	c.mu.Unlock()
	return c.scheduler.Submit(JobTypeFineAccrual)
}

// TriggerBanSweep submits a ban sweep job outside the daily schedule
func (c *LendingCronTrigger) TriggerBanSweep() error {
	c.mu.Lock()
	if !c.isRunning {
		c.mu.Unlock()
		return ErrSchedulerNotRunning
	}
	c.mu.Unlock()
	return c.scheduler.Submit(JobTypeBanSweep)
}

// GetStatus returns the current status of the cron trigger
func (c *LendingCronTrigger) GetStatus() map[string]any {
	c.mu.Lock()
	defer c.mu.Unlock()

	return map[string]any{
		"enabled":           c.config.Enabled,
		"is_running":        c.isRunning,
		"accrual_hour":      c.config.AccrualHour,
		"accrual_minute":    c.config.AccrualMinute,
		"sweep_hour":        c.config.SweepHour,
		"sweep_minute":      c.config.SweepMinute,
		"last_accrual_date": c.lastAccrualDate,
		"last_sweep_date":   c.lastSweepDate,
		"job_types":         AllJobTypes(),
	}
}
