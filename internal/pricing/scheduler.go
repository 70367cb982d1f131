package pricing

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ndewijer/Crypto-Portfolio-Tracker-Backend/internal/logger"
)

// Scheduler runs a job at a fixed interval until stopped.
type Scheduler interface {
	Schedule(interval time.Duration, job func()) error
	Stop()
}

// CronScheduler schedules jobs on a robfig/cron runner. A trigger that fires
// while the previous run is still going is skipped.
type CronScheduler struct {
	cron *cron.Cron

	mu    sync.Mutex
	entry cron.EntryID
}

func NewCronScheduler(logger logger.Logger) *CronScheduler {
	l := cronLogger{logger: logger.With("component", "scheduler")}
	return &CronScheduler{
		cron: cron.New(
			cron.WithLogger(l),
			cron.WithChain(cron.Recover(l), cron.SkipIfStillRunning(l)),
		),
	}
}

// Schedule registers job every interval and starts the runner.
func (s *CronScheduler) Schedule(interval time.Duration, job func()) error {
	if interval <= 0 {
		return fmt.Errorf("invalid schedule interval %s", interval)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 {
		s.cron.Remove(s.entry)
	}
	id, err := s.cron.AddFunc("@every "+interval.String(), job)
	if err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}
	s.entry = id
	s.cron.Start()
	return nil
}

// Stop removes the scheduled job and halts the runner. Jobs already running
// are left to finish.
func (s *CronScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
	}
	s.cron.Stop()
}

// cronLogger adapts logger.Logger to cron.Logger.
type cronLogger struct {
	logger logger.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debugf("%s %v", msg, keysAndValues)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Errorf("%s: %v %v", msg, err, keysAndValues)
}
