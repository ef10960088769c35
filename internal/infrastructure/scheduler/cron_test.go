package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestStartRejectsBadExpression(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("not a cron spec", time.UTC)
	if err := s.Start(context.Background(), func(time.Time) {}); err == nil {
		t.Fatal("expected error for malformed expression")
	}
}

func TestSchedulerFiresJob(t *testing.T) {
	t.Parallel()

	fired := make(chan time.Time, 1)
	s := NewCronScheduler("@every 10ms", time.UTC)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := s.Start(ctx, func(ts time.Time) {
		select {
		case fired <- ts:
		default:
		}
	}); err != nil {
		t.Fatalf("start: %v", err)
	}

	select {
	case <-fired:
	case <-time.After(2 * time.Second):
		t.Fatal("job never fired")
	}

	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}

func TestStopWithoutStartIsNoop(t *testing.T) {
	t.Parallel()

	s := NewCronScheduler("0 6 * * *", nil)
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
