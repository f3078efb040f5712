package scheduler

import (
	"context"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/vytor/wordflash/internal/logger"
	"github.com/vytor/wordflash/internal/repository"
)

// Scheduler runs periodic maintenance tasks.
type Scheduler struct {
	scheduler *gocron.Scheduler
	sessions  repository.SessionRepository
	ttl       time.Duration
	interval  time.Duration
	now       func() time.Time
	log       *logger.Logger
}

// New creates a scheduler that deletes unfinished sessions older than ttl
// every interval. Progress is never touched: abandoned sessions have not
// committed anything.
func New(sessions repository.SessionRepository, ttl, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		sessions:  sessions,
		ttl:       ttl,
		interval:  interval,
		now:       time.Now,
		log:       logger.Default().WithPrefix("scheduler"),
	}
}

// Start begins running all scheduled tasks
func (s *Scheduler) Start() error {
	s.log.Info("sweeping abandoned sessions every %v (ttl %v)", s.interval, s.ttl)
	if _, err := s.scheduler.Every(s.interval).Do(s.sweep); err != nil {
		return err
	}
	s.scheduler.StartAsync()
	return nil
}

// Stop terminates all scheduled tasks
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
	s.log.Info("scheduler stopped")
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if _, err := s.SweepAbandoned(logger.NewContext(ctx, s.log)); err != nil {
		s.log.Error("abandoned session sweep failed: %v", err)
	}
}

// SweepAbandoned deletes sessions that were never finalized within the ttl.
func (s *Scheduler) SweepAbandoned(ctx context.Context) (int64, error) {
	cutoff := s.now().UTC().Add(-s.ttl)
	n, err := s.sessions.DeleteAbandoned(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("deleted %d abandoned sessions created before %s", n, cutoff.Format(time.RFC3339))
	}
	return n, nil
}
