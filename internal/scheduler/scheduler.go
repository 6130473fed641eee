package scheduler

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// DefaultSpec runs the sweep once a minute.
const DefaultSpec = "@every 1m"

// Sweeper restores an expired temporary override. autoreply.TempMode implements it.
type Sweeper interface {
	ResetIfExpired(ctx context.Context) (bool, error)
}

// Scheduler resets expired overrides on a cron schedule so the rule book
// comes back even when no message arrives to trigger the lazy reset.
type Scheduler struct {
	sweeper Sweeper
	log     *zap.Logger
	spec    string
}

// New creates a Scheduler. An empty spec means DefaultSpec.
func New(sweeper Sweeper, log *zap.Logger, spec string) *Scheduler {
	if spec == "" {
		spec = DefaultSpec
	}
	return &Scheduler{sweeper: sweeper, log: log, spec: spec}
}

// Run starts the cron loop and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	c := cron.New(cron.WithChain(cron.Recover(cronLogger{s.log})))
	if _, err := c.AddFunc(s.spec, func() { s.tick(ctx) }); err != nil {
		return fmt.Errorf("schedule sweep %q: %w", s.spec, err)
	}
	c.Start()
	s.log.Info("scheduler started", zap.String("spec", s.spec))

	<-ctx.Done()
	<-c.Stop().Done()
	s.log.Info("scheduler stopping")
	return nil
}

// tick performs one sweep.
func (s *Scheduler) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	reset, err := s.sweeper.ResetIfExpired(ctx)
	if err != nil {
		s.log.Error("sweep failed", zap.Error(err))
		return
	}
	if reset {
		s.log.Info("expired temp mode restored by sweep")
	}
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct{ log *zap.Logger }

func (l cronLogger) Info(msg string, kv ...interface{}) {
	l.log.Sugar().Debugw(msg, kv...)
}

func (l cronLogger) Error(err error, msg string, kv ...interface{}) {
	l.log.Sugar().Errorw(msg, append(kv, "error", err)...)
}
