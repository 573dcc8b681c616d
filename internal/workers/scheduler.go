package workers

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/skillbridge-dev/skillbridge/internal/tasks"
)

// ReportScheduler enqueues a report refresh whenever its cron schedule is due
type ReportScheduler struct {
	client   tasks.Enqueuer
	schedule cron.Schedule
	next     time.Time
	logger   zerolog.Logger
}

// NewReportScheduler parses a standard 5-field cron expression
func NewReportScheduler(client tasks.Enqueuer, cronExpr string, logger zerolog.Logger) (*ReportScheduler, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(cronExpr)
	if err != nil {
		return nil, fmt.Errorf("invalid report schedule %q: %w", cronExpr, err)
	}
	return &ReportScheduler{
		client:   client,
		schedule: schedule,
		logger:   logger.With().Str("component", "report_scheduler").Logger(),
	}, nil
}

// Next returns when the next refresh is due
func (s *ReportScheduler) Next() time.Time {
	return s.next
}

// Run checks every minute until ctx is done
func (s *ReportScheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	s.next = s.schedule.Next(time.Now())
	s.logger.Info().Time("next_refresh_at", s.next).Msg("Report scheduler started")

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Tick(ctx, now)
		}
	}
}

// Tick enqueues a refresh if one is due at now and advances the schedule.
// It reports whether a task was enqueued.
func (s *ReportScheduler) Tick(ctx context.Context, now time.Time) bool {
	if s.next.IsZero() {
		s.next = s.schedule.Next(now)
		return false
	}
	if now.Before(s.next) {
		s.logger.Debug().Time("next_refresh_at", s.next).Msg("Refresh not due yet")
		return false
	}

	task, err := tasks.NewReportsRefreshTask("")
	if err != nil {
		s.logger.Error().Err(err).Msg("Failed to create refresh task")
		return false
	}
	// a missed window is not replayed; the schedule moves on from now
	s.next = s.schedule.Next(now)

	if _, err := s.client.EnqueueContext(ctx, task, asynq.Timeout(30*time.Minute)); err != nil {
		s.logger.Error().Err(err).Msg("Failed to enqueue report refresh")
		return false
	}

	s.logger.Info().Time("next_refresh_at", s.next).Msg("Report refresh enqueued")
	return true
}
