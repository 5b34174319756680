package report

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// ParseSchedule parses a standard 5-field cron expression
// (minute hour day-of-month month day-of-week), e.g. "0 18 * * 1-5".
func ParseSchedule(expr string) (cron.Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("report schedule is empty")
	}
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	sched, err := parser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", expr, err)
	}
	return sched, nil
}

// Schedule runs the reporter every time sched fires until ctx is done.
// A failed run is logged and the loop waits for the next slot.
func Schedule(ctx context.Context, sched cron.Schedule, reporter *Reporter) error {
	for {
		now := time.Now()
		next := sched.Next(now)
		wait := next.Sub(now)
		slog.Info("Next report scheduled", "at", next.Format("Mon Jan 2 15:04"), "in", wait.Round(time.Minute))

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}

		if _, err := reporter.Run(ctx); err != nil {
			slog.Error("Report failed", "error", err)
		}
	}
}
