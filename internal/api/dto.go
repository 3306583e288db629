package api

import (
	"github.com/jobtrackr/jobtrackr/internal/dashboard"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/notify"
)

// MessageResponse is a bare acknowledgement.
type MessageResponse struct {
	Message string `json:"message" example:"Application deleted" validate:"required"`
}

// AuthResponse is returned by signup and login.
type AuthResponse struct {
	Message string             `json:"message" example:"Login successful" validate:"required"`
	User    models.UserSummary `json:"user" validate:"required"`
	Token   string             `json:"token" validate:"required"`
}

// Application is the application response type (aliased from the domain layer).
type Application = models.Application

// User is the profile response type (aliased from the domain layer).
type User = models.User

// DashboardSummary is the dashboard response type (aliased from the domain layer).
type DashboardSummary = dashboard.Summary

// NotificationsResponse is the notifications response type (aliased from the domain layer).
type NotificationsResponse = notify.Notifications
