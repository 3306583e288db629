package api

import (
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/jobtrackr/jobtrackr/internal/auth"
	"github.com/jobtrackr/jobtrackr/internal/notify"
	"github.com/jobtrackr/jobtrackr/internal/sse"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
)

// Deps are the services the API is built on. Events may be nil, in which
// case GET /events is not mounted. Now defaults to time.Now.
type Deps struct {
	Tracker *tracker.Service
	Auth    *auth.Service
	Notify  *notify.Service
	Events  *sse.Broker
	Now     func() time.Time
}

// NewRouter creates a chi router with all API routes mounted. Everything
// except signup and login requires a bearer token.
func NewRouter(d Deps) chi.Router {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := NewHandler(d)

	r := chi.NewRouter()

	r.Post("/auth/signup", h.Signup)
	r.Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(AuthMiddleware(d.Auth))

		// Applications CRUD.
		r.Get("/applications", h.ListApplications)
		r.Post("/applications", h.CreateApplication)
		r.Get("/applications/{id}", h.GetApplication)
		r.Put("/applications/{id}", h.UpdateApplication)
		r.Delete("/applications/{id}", h.DeleteApplication)

		// Timeline.
		r.Post("/applications/{id}/timeline", h.AddTimelineEvent)
		r.Delete("/applications/{id}/timeline/{eventId}", h.RemoveTimelineEvent)

		r.Get("/dashboard/summary", h.DashboardSummary)
		r.Get("/notifications", h.Notifications)

		// Profile.
		r.Get("/user/me", h.GetProfile)
		r.Put("/user/me", h.UpdateProfile)

		if d.Events != nil {
			r.Get("/events", h.Events)
		}
	})

	return r
}
