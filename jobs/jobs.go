// Package jobs runs the periodic maintenance tasks on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync/atomic"
	"time"

	"labquote/config"
	"labquote/logger"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single run of a task.
const DefaultTimeout = 10 * time.Minute

// Scheduler wraps cron with per-task overlap guards, timeouts and logging.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func New(log zerolog.Logger) *Scheduler {
	log = log.With().Str("component", "jobs").Logger()
	return &Scheduler{
		cron:    cron.New(cron.WithLogger(logger.NewCron(log))),
		log:     log,
		timeout: DefaultTimeout,
	}
}

// Add schedules fn under a standard cron spec. A run that is still going when
// the next one fires causes that next run to be skipped.
func (s *Scheduler) Add(name, spec string, fn func(context.Context) error) error {
	if spec == "" {
		s.log.Info().Str("job", name).Msg("job disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(spec, s.wrap(name, fn)); err != nil {
		return fmt.Errorf("schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) wrap(name string, fn func(context.Context) error) func() {
	var running int32
	return func() {
		if !atomic.CompareAndSwapInt32(&running, 0, 1) {
			s.log.Warn().Str("job", name).Msg("previous run still going, skipping")
			return
		}
		defer atomic.StoreInt32(&running, 0)

		log := s.log.With().Str("job", name).Logger()
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Bytes("stack", debug.Stack()).Msg("job panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(log.WithContext(context.Background()), s.timeout)
		defer cancel()

		started := time.Now()
		if err := fn(ctx); err != nil {
			log.Error().Err(err).Dur("duration", time.Since(started)).Msg("job failed")
			return
		}
		log.Info().Dur("duration", time.Since(started)).Msg("job finished")
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
}

// Stop prevents new runs and waits for running ones until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) error {
	done := s.cron.Stop()
	select {
	case <-done.Done():
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Expirer moves submitted quotations past their validity to expired.
type Expirer interface {
	ExpireLapsed(ctx context.Context) (int, error)
}

// SessionCleaner drops sessions that expired before now minus grace.
type SessionCleaner interface {
	CleanupSessions(ctx context.Context, grace time.Duration) (int64, error)
}

// Register schedules the quotation expiry and session cleanup jobs.
func Register(s *Scheduler, cfg config.Jobs, quotations Expirer, sessions SessionCleaner) error {
	if err := s.Add("expire-quotations", cfg.ExpirySpec, func(ctx context.Context) error {
		n, err := quotations.ExpireLapsed(ctx)
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().Int("expired", n).Msg("lapsed quotations expired")
		return nil
	}); err != nil {
		return err
	}
	return s.Add("cleanup-sessions", cfg.SessionCleanupSpec, func(ctx context.Context) error {
		n, err := sessions.CleanupSessions(ctx, cfg.SessionGrace)
		if err != nil {
			return err
		}
		zerolog.Ctx(ctx).Info().Int64("removed", n).Msg("expired sessions removed")
		return nil
	})
}
