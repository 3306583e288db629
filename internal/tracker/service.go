// Package tracker implements application and timeline operations on top of
// the store, scoped to the calling user.
package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/store"
)

// Change kinds passed to a Publisher.
const (
	ChangeCreated         = "created"
	ChangeUpdated         = "updated"
	ChangeDeleted         = "deleted"
	ChangeTimelineAdded   = "timeline.added"
	ChangeTimelineRemoved = "timeline.removed"
)

// Publisher is told about every successful mutation.
type Publisher interface {
	PublishApplicationEvent(userID, kind, applicationID string)
}

type noopPublisher struct{}

func (noopPublisher) PublishApplicationEvent(string, string, string) {}

// Service coordinates validation, clock and store for application records.
type Service struct {
	apps   store.ApplicationStore
	events Publisher
	now    func() time.Time
	newID  func() string
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithPublisher registers a mutation listener.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.events = p }
}

// NewService creates a new application service.
func NewService(apps store.ApplicationStore, opts ...Option) *Service {
	s := &Service{
		apps:   apps,
		events: noopPublisher{},
		now:    time.Now,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Create validates in and stores a new application owned by userID.
func (s *Service) Create(ctx context.Context, userID string, in CreateInput) (*models.Application, error) {
	in.normalize()
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}

	now := s.now().UTC()
	app := &models.Application{
		ID:               s.newID(),
		UserID:           userID,
		Company:          in.Company,
		Position:         in.Position,
		Location:         in.Location,
		Status:           in.Status,
		JobLink:          in.JobLink,
		Source:           in.Source,
		DateApplied:      in.DateApplied.Value(),
		NextFollowUpDate: in.NextFollowUpDate.Value(),
		Priority:         in.Priority,
		Tags:             in.Tags,
		Notes:            in.Notes,
		PrepNotes:        in.PrepNotes,
		PrepChecklist:    nonNil(in.PrepChecklist),
		Timeline:         []models.TimelineEvent{},
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.apps.CreateApplication(ctx, app); err != nil {
		return nil, err
	}
	s.events.PublishApplicationEvent(userID, ChangeCreated, app.ID)
	return app, nil
}

// List returns the user's applications, newest first.
func (s *Service) List(ctx context.Context, userID string, f store.ListFilter) ([]models.Application, error) {
	f.Status = strings.TrimSpace(f.Status)
	return s.apps.ListApplications(ctx, userID, f)
}

// ListAll returns every application the user owns.
func (s *Service) ListAll(ctx context.Context, userID string) ([]models.Application, error) {
	return s.apps.ListApplications(ctx, userID, store.ListFilter{})
}

// Get returns one application owned by userID.
func (s *Service) Get(ctx context.Context, userID, id string) (*models.Application, error) {
	return s.apps.GetApplication(ctx, userID, id)
}

// Update merges p into the stored application.
func (s *Service) Update(ctx context.Context, userID, id string, p Patch) (*models.Application, error) {
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	app, err := s.apps.MutateApplication(ctx, userID, id, func(app *models.Application) error {
		p.apply(app)
		app.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.PublishApplicationEvent(userID, ChangeUpdated, app.ID)
	return app, nil
}

// Delete removes the application and its timeline.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if err := s.apps.DeleteApplication(ctx, userID, id); err != nil {
		return err
	}
	s.events.PublishApplicationEvent(userID, ChangeDeleted, id)
	return nil
}

// AddTimelineEvent appends an event and returns the updated application.
func (s *Service) AddTimelineEvent(ctx context.Context, userID, id string, in EventInput) (*models.Application, error) {
	in.Note = strings.TrimSpace(in.Note)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	app, err := s.apps.MutateApplication(ctx, userID, id, func(app *models.Application) error {
		now := s.now().UTC()
		app.Timeline = append(app.Timeline, models.TimelineEvent{
			ID:        s.newID(),
			Date:      *in.Date.Value(),
			Type:      in.Type,
			Note:      in.Note,
			CreatedAt: now,
		})
		app.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.PublishApplicationEvent(userID, ChangeTimelineAdded, app.ID)
	return app, nil
}

// RemoveTimelineEvent deletes one event. It returns apperr.ErrEventNotFound
// when the application exists but has no such event.
func (s *Service) RemoveTimelineEvent(ctx context.Context, userID, id, eventID string) (*models.Application, error) {
	app, err := s.apps.MutateApplication(ctx, userID, id, func(app *models.Application) error {
		i := app.TimelineIndex(eventID)
		if i < 0 {
			return apperr.ErrEventNotFound
		}
		app.Timeline = append(app.Timeline[:i], app.Timeline[i+1:]...)
		app.UpdatedAt = s.now().UTC()
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.events.PublishApplicationEvent(userID, ChangeTimelineRemoved, app.ID)
	return app, nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
