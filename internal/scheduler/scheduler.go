// Package scheduler runs background jobs, primarily the periodic scrape.
package scheduler

import (
	"context"
	"errors"
	"sync/atomic"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// ErrAlreadyRunning is returned when a scrape is requested while one is in
// flight. The crawl owns the device UI exclusively, so runs never overlap.
var ErrAlreadyRunning = errors.New("a scrape session is already running")

// Job represents a scheduled job
type Job interface {
	Run() error
	Name() string
}

// Scheduler manages background jobs
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger
}

// New creates a new scheduler
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()),
		log:  log.With().Str("component", "scheduler").Logger(),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Msg("Scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.log.Info().Msg("Scheduler stopped")
}

// AddJob registers a new job with cron schedule
// Schedule examples:
//   - "0 */30 * * * *"     - Every 30 minutes
//   - "@hourly"            - Every hour
//   - "0 0 7-22 * * *"     - On the hour, 07:00 through 22:00
func (s *Scheduler) AddJob(schedule string, job Job) error {
	_, err := s.cron.AddFunc(schedule, func() {
		s.log.Debug().Str("job", job.Name()).Msg("Running job")

		if err := job.Run(); err != nil {
			s.log.Error().
				Err(err).
				Str("job", job.Name()).
				Msg("Job failed")
		} else {
			s.log.Debug().Str("job", job.Name()).Msg("Job completed")
		}
	})

	if err != nil {
		return err
	}

	s.log.Info().
		Str("schedule", schedule).
		Str("job", job.Name()).
		Msg("Job registered")

	return nil
}

// SessionRunner is the scrape entry point the job drives.
type SessionRunner interface {
	Run(ctx context.Context) error
}

// ScrapeJob runs one scrape session per invocation and refuses overlap.
type ScrapeJob struct {
	runner  SessionRunner
	log     zerolog.Logger
	ctx     context.Context
	running atomic.Bool
}

// NewScrapeJob creates the scrape job. ctx bounds every run it starts.
func NewScrapeJob(ctx context.Context, runner SessionRunner, log zerolog.Logger) *ScrapeJob {
	return &ScrapeJob{
		runner: runner,
		log:    log.With().Str("component", "scrape-job").Logger(),
		ctx:    ctx,
	}
}

// Name implements Job.
func (j *ScrapeJob) Name() string { return "scrape" }

// Run implements Job. Overlapping invocations return ErrAlreadyRunning.
func (j *ScrapeJob) Run() error {
	if !j.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer j.running.Store(false)

	return j.runner.Run(j.ctx)
}

// Running reports whether a scrape is currently in flight.
func (j *ScrapeJob) Running() bool {
	return j.running.Load()
}

// TriggerScrape starts a run in the background, for on-demand triggering
// from the API. The running guard is shared with scheduled runs.
func (j *ScrapeJob) TriggerScrape() error {
	if j.Running() {
		return ErrAlreadyRunning
	}
	go func() {
		if err := j.Run(); err != nil && !errors.Is(err, ErrAlreadyRunning) {
			j.log.Error().Err(err).Msg("Triggered scrape failed")
		}
	}()
	return nil
}
