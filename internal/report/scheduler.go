package report

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
)

// Scheduler runs a job on a 5-field cron schedule. Used by serve to emit
// reports unattended.
type Scheduler struct {
	schedule cron.Schedule
	spec     string
	job      func(ctx context.Context)
	logger   *slog.Logger
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewScheduler parses the cron expression. An empty expression is a
// configuration decision, not an error; callers check for nil.
func NewScheduler(spec string, job func(ctx context.Context), logger *slog.Logger) (*Scheduler, error) {
	if spec == "" {
		return nil, nil
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	schedule, err := parser.Parse(spec)
	if err != nil {
		return nil, err
	}

	return &Scheduler{
		schedule: schedule,
		spec:     spec,
		job:      job,
		logger:   logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start launches the run loop. Non-blocking.
func (s *Scheduler) Start(ctx context.Context) {
	s.logger.Info("report scheduler started", "cron", s.spec)
	go s.run(ctx)
}

// Stop ends the loop and waits for it to exit. A job in flight finishes.
func (s *Scheduler) Stop() {
	close(s.stopCh)
	<-s.doneCh
}

func (s *Scheduler) run(ctx context.Context) {
	defer close(s.doneCh)

	for {
		next := s.schedule.Next(time.Now())
		s.logger.Debug("next scheduled report", "at", next)

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stopCh:
			timer.Stop()
			return
		case <-timer.C:
			s.logger.Info("running scheduled report")
			s.job(ctx)
		}
	}
}
