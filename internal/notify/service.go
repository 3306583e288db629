package notify

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/mailer"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/store"
)

// Report summarises one sweep.
type Report struct {
	Users    int `json:"users"`
	Sent     int `json:"sent"`
	Nothing  int `json:"nothing_due"`
	OptedOut int `json:"opted_out"`
	Failed   int `json:"failed"`
}

// Service computes notifications and runs the daily email sweep.
type Service struct {
	apps    store.ApplicationStore
	users   store.UserStore
	sender  mailer.Sender
	logger  *slog.Logger
	now     func() time.Time
	running atomic.Bool
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithLogger sets the logger used by the sweep.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// NewService creates a notification service.
func NewService(apps store.ApplicationStore, users store.UserStore, sender mailer.Sender, opts ...Option) *Service {
	s := &Service{
		apps:   apps,
		users:  users,
		sender: sender,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ForUser returns the caller's current follow-up notifications.
func (s *Service) ForUser(ctx context.Context, userID string) (Notifications, error) {
	apps, err := s.apps.ListApplications(ctx, userID, store.ListFilter{})
	if err != nil {
		return Notifications{}, err
	}
	return Build(apps, s.now()), nil
}

// RunDailySweep emails every opted-in user with something due. A failure
// for one user is logged and the sweep moves on. If a sweep is already
// running it returns apperr.ErrRunInProgress without doing anything.
func (s *Service) RunDailySweep(ctx context.Context) (rep Report, err error) {
	if !s.running.CompareAndSwap(false, true) {
		return rep, apperr.ErrRunInProgress
	}
	defer s.running.Store(false)
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("notify: sweep panicked: %v", r)
		}
	}()

	now := s.now()
	users, err := s.users.ListUsers(ctx)
	if err != nil {
		return rep, fmt.Errorf("notify: list users: %w", err)
	}

	for i := range users {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		u := &users[i]
		rep.Users++
		if u.Email == "" || !u.EmailNotifications {
			rep.OptedOut++
			continue
		}
		sent, err := s.remindUser(ctx, u, now)
		switch {
		case err != nil:
			rep.Failed++
			s.logger.Error("reminder failed",
				slog.String("user_id", u.ID),
				slog.String("error", err.Error()))
		case sent:
			rep.Sent++
		default:
			rep.Nothing++
		}
	}
	return rep, nil
}

func (s *Service) remindUser(ctx context.Context, u *models.User, now time.Time) (sent bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	apps, err := s.apps.ListApplications(ctx, u.ID, store.ListFilter{})
	if err != nil {
		return false, err
	}
	n := Build(apps, now)
	if n.Empty() {
		return false, nil
	}
	if err := s.sender.Send(ctx, ComposeDigest(u, n)); err != nil {
		return false, err
	}
	s.logger.Info("reminder sent",
		slog.String("user_id", u.ID),
		slog.Int("overdue", len(n.Overdue)),
		slog.Int("today", len(n.Today)),
		slog.Int("upcoming", len(n.Upcoming)))
	return true, nil
}

// RunScheduled is the cron entry point. It never returns an error; the
// outcome is logged.
func (s *Service) RunScheduled(ctx context.Context) {
	s.logger.Info("daily reminder sweep starting")
	start := time.Now()
	rep, err := s.RunDailySweep(ctx)
	if err != nil {
		s.logger.Error("daily reminder sweep failed", slog.String("error", err.Error()))
		return
	}
	s.logger.Info("daily reminder sweep finished",
		slog.Int("users", rep.Users),
		slog.Int("sent", rep.Sent),
		slog.Int("failed", rep.Failed),
		slog.Duration("took", time.Since(start)))
}
