package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"newsolvr/internal/ports"
)

// CronScheduler fires pipeline runs on a cron expression in the configured
// timezone.
type CronScheduler struct {
	spec string
	loc  *time.Location
	cron *cron.Cron
}

var _ ports.Scheduler = (*CronScheduler)(nil)

// NewCronScheduler builds a scheduler from a standard five-field cron
// expression. A nil location means UTC.
func NewCronScheduler(spec string, loc *time.Location) *CronScheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &CronScheduler{spec: spec, loc: loc}
}

// Start registers the job and begins scheduling. Calling Start twice without
// an intervening Stop is a no-op.
func (c *CronScheduler) Start(ctx context.Context, job func(time.Time)) error {
	if job == nil {
		return nil
	}
	if c.cron != nil {
		return nil
	}

	runner := cron.New(cron.WithLocation(c.loc))
	if _, err := runner.AddFunc(c.spec, func() {
		select {
		case <-ctx.Done():
			return
		default:
		}
		job(time.Now().In(c.loc))
	}); err != nil {
		return fmt.Errorf("parse cron expression %q: %w", c.spec, err)
	}

	runner.Start()
	c.cron = runner
	return nil
}

// Stop halts scheduling and waits for a running job, bounded by ctx.
func (c *CronScheduler) Stop(ctx context.Context) error {
	if c.cron == nil {
		return nil
	}

	done := c.cron.Stop()
	c.cron = nil

	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return fmt.Errorf("stop scheduler: %w", ctx.Err())
	}
}
