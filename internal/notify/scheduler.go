package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// cronLogger adapts slog to the cron.Logger interface.
type cronLogger struct {
	logger *slog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.logger.Debug(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.logger.Error(msg, append(keysAndValues, "error", err.Error())...)
}

// Scheduler runs a job once a day at a configurable UTC hour.
type Scheduler struct {
	cron   *cron.Cron
	job    func(context.Context)
	logger *slog.Logger

	mu    sync.Mutex
	ctx   context.Context
	entry cron.EntryID
	hour  int
}

// NewScheduler creates a stopped scheduler for job.
func NewScheduler(job func(context.Context), logger *slog.Logger) *Scheduler {
	cl := cronLogger{logger: logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		job:    job,
		logger: logger,
		ctx:    context.Background(),
		hour:   -1,
	}
}

// Schedule replaces the current daily entry. With enabled false the job is
// unscheduled.
func (s *Scheduler) Schedule(enabled bool, hour int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("notify: reminder hour %d out of range 0-23", hour)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.entry != 0 {
		s.cron.Remove(s.entry)
		s.entry = 0
		s.hour = -1
	}
	if !enabled {
		s.logger.Info("daily reminder job disabled")
		return nil
	}

	spec := fmt.Sprintf("0 %d * * *", hour)
	id, err := s.cron.AddFunc(spec, func() {
		s.job(s.baseContext())
	})
	if err != nil {
		return fmt.Errorf("notify: schedule %q: %w", spec, err)
	}
	s.entry, s.hour = id, hour
	s.logger.Info("daily reminder job scheduled",
		slog.String("cron", spec),
		slog.String("time_zone", "UTC"),
		slog.Time("next_run", s.cron.Entry(id).Schedule.Next(time.Now().UTC())))
	return nil
}

// Hour returns the scheduled UTC hour, or -1 when nothing is scheduled.
func (s *Scheduler) Hour() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hour
}

// NextAfter returns when the job would next fire after t, or the zero time
// when nothing is scheduled.
func (s *Scheduler) NextAfter(t time.Time) time.Time {
	s.mu.Lock()
	id := s.entry
	s.mu.Unlock()
	if id == 0 {
		return time.Time{}
	}
	e := s.cron.Entry(id)
	if !e.Valid() {
		return time.Time{}
	}
	return e.Schedule.Next(t)
}

// Run starts the scheduler and blocks until ctx is cancelled, then waits for
// a running job to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.mu.Lock()
	s.ctx = ctx
	s.mu.Unlock()

	s.cron.Start()
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ctx
}
