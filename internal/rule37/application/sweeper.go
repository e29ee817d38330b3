package application

import (
	"context"
	"errors"
	"log"

	"github.com/robfig/cron/v3"

	"rule37-cloud/internal/observability/metrics"
	rule37 "rule37-cloud/internal/rule37/domain"
)

// RetentionSweeper removes expired calculation runs on a cron schedule.
type RetentionSweeper struct {
	repo     rule37.RunRepository
	schedule string
	clock    Clock
	logger   *log.Logger
	cron     *cron.Cron
}

// NewRetentionSweeper constructs the sweeper. Start must be called to begin
// sweeping.
func NewRetentionSweeper(repo rule37.RunRepository, schedule string, clock Clock, logger *log.Logger) (*RetentionSweeper, error) {
	if repo == nil {
		return nil, errors.New("retention sweeper: nil run repository")
	}
	if schedule == "" {
		return nil, errors.New("retention sweeper: empty schedule")
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &RetentionSweeper{
		repo:     repo,
		schedule: schedule,
		clock:    clock,
		logger:   logger,
	}, nil
}

// Start schedules the sweep and begins running it.
func (s *RetentionSweeper) Start() error {
	c := cron.New()
	_, err := c.AddFunc(s.schedule, func() {
		s.RunOnce(context.Background())
	})
	if err != nil {
		return err
	}
	s.cron = c
	c.Start()
	s.logger.Printf("retention sweeper: started with schedule %q", s.schedule)
	return nil
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *RetentionSweeper) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
}

// RunOnce performs a single sweep of runs past their expiry.
func (s *RetentionSweeper) RunOnce(ctx context.Context) {
	cutoff := s.clock.Now().UTC()
	removed, err := s.repo.DeleteExpired(ctx, cutoff)
	if err != nil {
		s.logger.Printf("retention sweeper: sweep failed: %v", err)
		return
	}
	if removed > 0 {
		s.logger.Printf("retention sweeper: removed %d expired runs", removed)
	}
	metrics.AddRunsSwept(removed)
}
