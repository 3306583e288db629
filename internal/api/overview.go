package api

import (
	"net/http"

	"github.com/jobtrackr/jobtrackr/internal/dashboard"
)

// DashboardSummary handles GET /api/dashboard/summary.
//
//	@Summary		Status counts, recent applications and next follow-ups
//	@Tags			dashboard
//	@Produce		json
//	@Success		200	{object}	DashboardSummary
//	@Security		BearerAuth
//	@Router			/dashboard/summary [get]
func (h *Handler) DashboardSummary(w http.ResponseWriter, r *http.Request) {
	apps, err := h.d.Tracker.ListAll(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "dashboard summary", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Summarize(apps, h.d.Now()))
}

// Notifications handles GET /api/notifications.
//
//	@Summary		Overdue, due-today and upcoming follow-ups
//	@Tags			notifications
//	@Produce		json
//	@Success		200	{object}	NotificationsResponse
//	@Security		BearerAuth
//	@Router			/notifications [get]
func (h *Handler) Notifications(w http.ResponseWriter, r *http.Request) {
	n, err := h.d.Notify.ForUser(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "notifications", appNotFound)
		return
	}
	writeJSON(w, http.StatusOK, n)
}

// Events handles GET /api/events, streaming the caller's change events.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	h.d.Events.ServeUser(w, r, UserID(r.Context()))
}
