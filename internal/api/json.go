package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/auth"
)

const maxBodyBytes = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("json encode failed", slog.String("error", err.Error()))
	}
}

type errResponse struct {
	Message string            `json:"message" validate:"required"`
	Errors  validation.Errors `json:"errors,omitempty"`
}

func errorBody(msg string) errResponse {
	return errResponse{Message: msg}
}

// decodeJSON reads a JSON request body into v. Unknown keys are ignored.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body: "+err.Error()))
		return false
	}
	return true
}

// writeError maps a service error to a status code and body. notFound is the
// message used for apperr.ErrNotFound.
func writeError(w http.ResponseWriter, r *http.Request, err error, op, notFound string) {
	var verrs validation.Errors
	switch {
	case errors.Is(err, apperr.ErrValidation):
		body := errResponse{Message: "validation failed"}
		if errors.As(err, &verrs) {
			body.Message = verrs.Error()
			body.Errors = verrs
		}
		writeJSON(w, http.StatusBadRequest, body)
	case errors.Is(err, auth.ErrInvalidCredentials):
		writeJSON(w, http.StatusBadRequest, errorBody("Invalid email or password"))
	case errors.Is(err, apperr.ErrAlreadyExists):
		writeJSON(w, http.StatusBadRequest, errorBody("User already exists with this email"))
	case errors.Is(err, apperr.ErrEventNotFound):
		writeJSON(w, http.StatusNotFound, errorBody("Timeline entry not found"))
	case errors.Is(err, apperr.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody(notFound))
	case errors.Is(err, apperr.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorBody("Not authorized"))
	default:
		slog.ErrorContext(r.Context(), op+" failed",
			slog.String("user_id", UserID(r.Context())),
			slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("Server error"))
	}
}
