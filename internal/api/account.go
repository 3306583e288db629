package api

import (
	"net/http"

	"github.com/jobtrackr/jobtrackr/internal/auth"
)

const userNotFound = "User not found"

// Signup handles POST /api/auth/signup.
//
//	@Summary		Register a new account
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		auth.SignupInput	true	"Name, email and password"
//	@Success		201		{object}	AuthResponse
//	@Failure		400		{object}	errResponse
//	@Router			/auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var in auth.SignupInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sess, err := h.d.Auth.Signup(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "signup", userNotFound)
		return
	}
	writeJSON(w, http.StatusCreated, AuthResponse{
		Message: "User registered successfully",
		User:    sess.User,
		Token:   sess.Token,
	})
}

// Login handles POST /api/auth/login.
//
//	@Summary		Log in with email and password
//	@Tags			auth
//	@Accept			json
//	@Produce		json
//	@Param			body	body		auth.LoginInput	true	"Credentials"
//	@Success		200		{object}	AuthResponse
//	@Failure		400		{object}	errResponse
//	@Router			/auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var in auth.LoginInput
	if !decodeJSON(w, r, &in) {
		return
	}
	sess, err := h.d.Auth.Login(r.Context(), in)
	if err != nil {
		writeError(w, r, err, "login", userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, AuthResponse{
		Message: "Login successful",
		User:    sess.User,
		Token:   sess.Token,
	})
}

// GetProfile handles GET /api/user/me.
func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	u, err := h.d.Auth.Profile(r.Context(), UserID(r.Context()))
	if err != nil {
		writeError(w, r, err, "get profile", userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

// UpdateProfile handles PUT /api/user/me.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var p auth.ProfilePatch
	if !decodeJSON(w, r, &p) {
		return
	}
	u, err := h.d.Auth.UpdateProfile(r.Context(), UserID(r.Context()), p)
	if err != nil {
		writeError(w, r, err, "update profile", userNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}
