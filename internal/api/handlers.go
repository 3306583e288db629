package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jobtrackr/jobtrackr/internal/checksum"
	"github.com/jobtrackr/jobtrackr/internal/store"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
)

const appNotFound = "Application not found"

// Handler holds API route handlers.
type Handler struct {
	d Deps
}

// NewHandler creates a new Handler.
func NewHandler(d Deps) *Handler {
	return &Handler{d: d}
}

// ListApplications handles GET /api/applications.
//
//	@Summary		List the caller's applications, newest first
//	@Tags			applications
//	@Produce		json
//	@Param			status	query		string	false	"Exact status; All means no filter"
//	@Param			search	query		string	false	"Case-insensitive match on company or position"
//	@Success		200		{array}		Application
//	@Security		BearerAuth
//	@Router			/applications [get]
func (h *Handler) ListApplications(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	apps, err := h.d.Tracker.List(r.Context(), UserID(r.Context()), store.ListFilter{
		Status: q.Get("status"),
		Search: q.Get("search"),
	})
	if err != nil {
		writeError(w, r, err, "list applications", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, apps)
}

// CreateApplication handles POST /api/applications.
//
//	@Summary		Create an application
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Param			body	body		tracker.CreateInput	true	"Application to create"
//	@Success		201		{object}	Application
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications [post]
func (h *Handler) CreateApplication(w http.ResponseWriter, r *http.Request) {
	var in tracker.CreateInput
	if !decodeJSON(w, r, &in) {
		return
	}
	app, err := h.d.Tracker.Create(r.Context(), UserID(r.Context()), in)
	if err != nil {
		writeError(w, r, err, "create application", appNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, app)
}

// GetApplication handles GET /api/applications/{id}. The response carries
// an ETag; a matching If-None-Match yields 304.
//
//	@Summary		Get one application
//	@Tags			applications
//	@Produce		json
//	@Param			id				path		string	true	"Application id"
//	@Param			If-None-Match	header		string	false	"ETag from a previous response"
//	@Success		200				{object}	Application
//	@Success		304
//	@Failure		404				{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications/{id} [get]
func (h *Handler) GetApplication(w http.ResponseWriter, r *http.Request) {
	app, err := h.d.Tracker.Get(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err, "get application", appNotFound)
		return
	}
	body, err := json.Marshal(app)
	if err != nil {
		writeError(w, r, err, "encode application", appNotFound)
		return
	}
	etag := checksum.ETag(body)
	w.Header().Set("ETag", etag)
	if match := r.Header.Get("If-None-Match"); match != "" && checksum.MatchesETag(match, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(append(body, '\n')); err != nil {
		slog.Debug("write response failed", slog.String("error", err.Error()))
	}
}

// UpdateApplication handles PUT /api/applications/{id}.
//
//	@Summary		Partially update an application
//	@Description	Only known fields are applied; other keys are ignored.
//	@Tags			applications
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string			true	"Application id"
//	@Param			body	body		tracker.Patch	true	"Fields to change"
//	@Success		200		{object}	Application
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications/{id} [put]
func (h *Handler) UpdateApplication(w http.ResponseWriter, r *http.Request) {
	var p tracker.Patch
	if !decodeJSON(w, r, &p) {
		return
	}
	app, err := h.d.Tracker.Update(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), p)
	if err != nil {
		writeError(w, r, err, "update application", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// DeleteApplication handles DELETE /api/applications/{id}.
//
//	@Summary		Delete an application and its timeline
//	@Tags			applications
//	@Produce		json
//	@Param			id	path		string	true	"Application id"
//	@Success		200	{object}	MessageResponse
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications/{id} [delete]
func (h *Handler) DeleteApplication(w http.ResponseWriter, r *http.Request) {
	if err := h.d.Tracker.Delete(r.Context(), UserID(r.Context()), chi.URLParam(r, "id")); err != nil {
		writeError(w, r, err, "delete application", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Application deleted"})
}

// AddTimelineEvent handles POST /api/applications/{id}/timeline.
//
//	@Summary		Append a timeline event
//	@Tags			timeline
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Application id"
//	@Param			body	body		tracker.EventInput	true	"Event"
//	@Success		200		{object}	Application
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications/{id}/timeline [post]
func (h *Handler) AddTimelineEvent(w http.ResponseWriter, r *http.Request) {
	var in tracker.EventInput
	if !decodeJSON(w, r, &in) {
		return
	}
	app, err := h.d.Tracker.AddTimelineEvent(r.Context(), UserID(r.Context()), chi.URLParam(r, "id"), in)
	if err != nil {
		writeError(w, r, err, "add timeline event", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}

// RemoveTimelineEvent handles DELETE /api/applications/{id}/timeline/{eventId}.
//
//	@Summary		Remove a timeline event
//	@Tags			timeline
//	@Produce		json
//	@Param			id		path		string	true	"Application id"
//	@Param			eventId	path		string	true	"Timeline event id"
//	@Success		200		{object}	Application
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/applications/{id}/timeline/{eventId} [delete]
func (h *Handler) RemoveTimelineEvent(w http.ResponseWriter, r *http.Request) {
	app, err := h.d.Tracker.RemoveTimelineEvent(r.Context(), UserID(r.Context()),
		chi.URLParam(r, "id"), chi.URLParam(r, "eventId"))
	if err != nil {
		writeError(w, r, err, "remove timeline event", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, app)
}
