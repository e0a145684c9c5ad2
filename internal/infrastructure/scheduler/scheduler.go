package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/iho/legendtrack/internal/infrastructure/metrics"
	"github.com/iho/legendtrack/internal/usecase"
)

// PollRunner runs one poll cycle.
type PollRunner interface {
	RunCycle(ctx context.Context, now time.Time) ([]usecase.Outcome, error)
}

// Scheduler drives the poller on a fixed interval using cron. Each run is
// bounded by a timeout so a wedged upstream cannot stall the schedule
// forever.
type Scheduler struct {
	cron         *cron.Cron
	poller       PollRunner
	interval     time.Duration
	cycleTimeout time.Duration
	metrics      *metrics.Metrics
	logger       zerolog.Logger
}

// Config holds Scheduler settings.
type Config struct {
	Poller       PollRunner
	Interval     time.Duration
	CycleTimeout time.Duration
	Metrics      *metrics.Metrics
	Logger       zerolog.Logger
}

// New creates a new Scheduler.
func New(cfg Config) (*Scheduler, error) {
	s := &Scheduler{
		poller:       cfg.Poller,
		interval:     cfg.Interval,
		cycleTimeout: cfg.CycleTimeout,
		metrics:      cfg.Metrics,
		logger:       cfg.Logger,
	}

	cronLogger := zerologCronAdapter{logger: cfg.Logger}
	s.cron = cron.New(cron.WithChain(cron.Recover(cronLogger)))

	spec := fmt.Sprintf("@every %s", cfg.Interval)
	if _, err := s.cron.AddFunc(spec, s.runOnce); err != nil {
		return nil, fmt.Errorf("schedule poll job: %w", err)
	}

	return s, nil
}

// Start begins the schedule.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Dur("interval", s.interval).Msg("poll scheduler started")
}

// Stop halts the schedule and waits for a running job to finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info().Msg("poll scheduler stopped")
}

func (s *Scheduler) runOnce() {
	ctx, cancel := context.WithTimeout(context.Background(), s.cycleTimeout)
	defer cancel()

	start := time.Now().UTC()

	outcomes, err := s.poller.RunCycle(ctx, start)
	if err != nil {
		if errors.Is(err, usecase.ErrCycleInProgress) {
			// The previous cycle is still draining; skip this tick rather
			// than queueing behind it.
			s.metrics.PollCyclesSkipped.Inc()
			s.logger.Warn().Msg("poll tick skipped, cycle still running")
			return
		}

		s.logger.Error().Err(err).Msg("poll cycle failed")
		return
	}

	s.metrics.PollCycles.Inc()
	s.metrics.PollCycleDuration.Observe(time.Since(start).Seconds())
	s.metrics.TrackedPlayers.Set(float64(len(outcomes)))
	for _, o := range outcomes {
		s.metrics.PollOutcomes.WithLabelValues(string(o.Status)).Inc()
	}
}

// zerologCronAdapter bridges cron's logger interface onto zerolog.
type zerologCronAdapter struct {
	logger zerolog.Logger
}

func (a zerologCronAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (a zerologCronAdapter) Error(err error, msg string, keysAndValues ...interface{}) {
	a.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
