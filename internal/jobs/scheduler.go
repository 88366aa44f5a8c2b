// Package jobs runs the API's background work on cron schedules.
package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// JobName identifies a registered job in the registry and in log fields.
type JobName string

// Scheduler wraps robfig/cron with named registration and zap logging.
// Schedules use the six-field form with a leading seconds field.
type Scheduler struct {
	cron   *cron.Cron
	logger *zap.Logger
	mu     sync.Mutex
	jobs   map[JobName]cron.EntryID
}

// NewScheduler creates a scheduler. Panic recovery and overlap skipping
// report through the given logger rather than cron's default stderr logger.
func NewScheduler(logger *zap.Logger) *Scheduler {
	cronLog := &cronLogger{logger: logger.Named("cron")}
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(
			cron.SkipIfStillRunning(cronLog),
			cron.Recover(cronLog),
		)),
		logger: logger,
		jobs:   make(map[JobName]cron.EntryID),
	}
}

// Start begins executing registered jobs on their schedules.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler")
	s.cron.Start()
}

// Stop stops scheduling new runs. The returned context is done once
// in-flight jobs have finished.
func (s *Scheduler) Stop() context.Context {
	s.logger.Info("stopping job scheduler")
	return s.cron.Stop()
}

// AddJob registers a named job under a cron expression. Registering the
// same name twice is an error.
func (s *Scheduler) AddJob(name JobName, cronExpr string, job func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	entryID, err := s.cron.AddFunc(cronExpr, s.instrument(name, job))
	if err != nil {
		return fmt.Errorf("failed to schedule job %q: %w", name, err)
	}
	s.jobs[name] = entryID

	s.logger.Info("registered scheduled job",
		zap.String("job", string(name)),
		zap.String("schedule", cronExpr))

	return nil
}

// RemoveJob unregisters a job by name.
func (s *Scheduler) RemoveJob(name JobName) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entryID, exists := s.jobs[name]
	if !exists {
		return fmt.Errorf("job %q not registered", name)
	}
	s.cron.Remove(entryID)
	delete(s.jobs, name)

	s.logger.Info("removed scheduled job", zap.String("job", string(name)))
	return nil
}

// JobNames returns the names of all registered jobs.
func (s *Scheduler) JobNames() []JobName {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]JobName, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// instrument wraps a job with start and finish logging, including how
// long the run took.
func (s *Scheduler) instrument(name JobName, job func()) func() {
	return func() {
		start := time.Now()
		s.logger.Info("job started", zap.String("job", string(name)))
		job()
		s.logger.Info("job finished",
			zap.String("job", string(name)),
			zap.Duration("duration", time.Since(start)))
	}
}

// cronLogger adapts zap to the cron.Logger interface so recovered
// panics and skipped runs land in the application log.
type cronLogger struct {
	logger *zap.Logger
}

func (l *cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Info(msg, zap.Any("details", keysAndValues))
}

func (l *cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
