package scheduler

import (
	"context"
	"log"
	"time"

	"github.com/go-co-op/gocron"
)

// Runner is the pipeline surface the scheduler drives.
type Runner interface {
	RunOnce(ctx context.Context) error
}

// Scheduler periodically re-runs the extraction pipeline. The window cache
// makes repeated runs cheap: only windows without a cache entry hit the
// remote datastore.
type Scheduler struct {
	scheduler *gocron.Scheduler
	runner    Runner
	interval  time.Duration
}

// New creates a new Scheduler.
func New(runner Runner, interval time.Duration) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	// Runs never overlap; a long extraction simply delays the next one.
	s.SingletonModeAll()
	return &Scheduler{
		scheduler: s,
		runner:    runner,
		interval:  interval,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	_, err := s.scheduler.Every(s.interval).Do(func() {
		log.Println("scheduler: running extraction job")
		if err := s.runner.RunOnce(context.Background()); err != nil {
			log.Printf("scheduler: extraction failed: %v", err)
			return
		}
		log.Println("scheduler: completed extraction job")
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
