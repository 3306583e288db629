// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/sync/errgroup"

	"github.com/jobtrackr/jobtrackr/internal/api"
	"github.com/jobtrackr/jobtrackr/internal/auth"
	"github.com/jobtrackr/jobtrackr/internal/configwatch"
	"github.com/jobtrackr/jobtrackr/internal/mailer"
	"github.com/jobtrackr/jobtrackr/internal/mcpserver"
	"github.com/jobtrackr/jobtrackr/internal/notify"
	"github.com/jobtrackr/jobtrackr/internal/sse"
	"github.com/jobtrackr/jobtrackr/internal/store"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
	pkgconfig "github.com/jobtrackr/jobtrackr/pkg/config"
)

var errConfigRequired = errors.New("config is required")

func newLogger(cfg *Config, w io.Writer) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
}

// newNotifier opens the mail transport and builds the notification service.
func newNotifier(cfg *Config, db *store.DB, logger *slog.Logger) (*notify.Service, error) {
	sender, err := mailer.New(cfg.Mail.Mailer(), logger)
	if err != nil {
		return nil, fmt.Errorf("init mailer: %w", err)
	}
	return notify.NewService(db, db, sender, notify.WithLogger(logger)), nil
}

// Run starts the application with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("sqlite_path", cfg.SQLite.Path),
		slog.String("mail_mode", cfg.Mail.Mode),
		slog.Bool("reminder_enabled", cfg.Reminder.Enabled),
		slog.Int("reminder_hour_utc", cfg.Reminder.Hour),
		slog.String("log_level", cfg.App.LogLevel.String()))

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	// SSE broker.
	broker := sse.NewBroker(2 * time.Second)
	defer broker.Close()

	trackerSvc := tracker.NewService(db, tracker.WithPublisher(broker))
	authSvc := auth.NewService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	notifySvc, err := newNotifier(cfg, db, logger)
	if err != nil {
		return err
	}

	scheduler := notify.NewScheduler(notifySvc.RunScheduled, logger)
	if err := scheduler.Schedule(cfg.Reminder.Enabled, cfg.Reminder.Hour); err != nil {
		return err
	}

	apiRouter := api.NewRouter(api.Deps{
		Tracker: trackerSvc,
		Auth:    authSvc,
		Notify:  notifySvc,
		Events:  broker,
	})

	// Build chi router.
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	// Health check endpoints (unauthenticated).
	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := db.Ping(req.Context()); err != nil {
			logger.Warn("readiness check failed", slog.String("error", err.Error()))
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"status":"unavailable"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	// Mount API routes under /api.
	r.Mount("/api", apiRouter)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	// Daily reminder sweep.
	g.Go(func() error {
		return scheduler.Run(gCtx)
	})

	// Reload the reminder schedule when the config file changes.
	if app.configPath != "" {
		g.Go(func() error {
			reload := newReloader(cfg, scheduler, logger)
			if err := configwatch.Watch(gCtx, app.configPath, logger, reload); err != nil {
				logger.Warn("config watcher stopped", slog.String("error", err.Error()))
			}
			return nil
		})
	}

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the group so the scheduler and watcher exit too.
var errShutdown = errors.New("shutdown requested")

// newReloader returns a config change handler. Only the reminder section is
// applied live; other differences are reported as needing a restart.
func newReloader(current *Config, scheduler *notify.Scheduler, logger *slog.Logger) configwatch.ChangeFunc {
	active := *current
	return func(data []byte) {
		next := NewDefaultConfig()
		if err := pkgconfig.Parse(data, next); err != nil {
			logger.Warn("ignoring invalid config change", slog.String("error", err.Error()))
			return
		}

		if next.Reminder != active.Reminder {
			if err := scheduler.Schedule(next.Reminder.Enabled, next.Reminder.Hour); err != nil {
				logger.Error("reschedule reminder job", slog.String("error", err.Error()))
				return
			}
			active.Reminder = next.Reminder
			if hour := scheduler.Hour(); hour >= 0 {
				logger.Info("reminder schedule reloaded",
					slog.Int("hour_utc", hour),
					slog.Time("next_run", scheduler.NextAfter(time.Now())))
			}
		}

		if next.App != active.App || next.SQLite != active.SQLite ||
			next.Auth != active.Auth || next.Mail != active.Mail {
			logger.Warn("config changed outside the reminder section; restart to apply")
		}
	}
}

// Remind runs a single reminder sweep and returns when it completes.
func Remind(ctx context.Context, opts ...Option) (notify.Report, error) {
	app, err := newApplication(opts)
	if err != nil {
		return notify.Report{}, err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stdout)
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return notify.Report{}, fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	notifySvc, err := newNotifier(cfg, db, logger)
	if err != nil {
		return notify.Report{}, err
	}
	return notifySvc.RunDailySweep(ctx)
}

// ServeMCP serves the MCP tools over stdio on behalf of the user with the
// given email. Logs go to stderr because stdout carries the protocol.
func ServeMCP(ctx context.Context, email string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(cfg, os.Stderr)
	slog.SetDefault(logger)

	db, err := store.Open(cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("init store: %w", err)
	}
	defer db.Close()

	authSvc := auth.NewService(db, cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	user, err := authSvc.UserByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("lookup user %s: %w", email, err)
	}

	notifySvc, err := newNotifier(cfg, db, logger)
	if err != nil {
		return err
	}

	srv := mcpserver.New(tracker.NewService(db), notifySvc, user.ID, time.Now)
	logger.Info("MCP server starting on stdio", slog.String("user_id", user.ID))
	return srv.ServeStdio()
}
