// Package models defines the domain types for JobTrackr.
package models

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status is the pipeline stage of an application.
type Status string

const (
	StatusApplied    Status = "Applied"
	StatusOnlineTest Status = "Online Test"
	StatusInterview  Status = "Interview"
	StatusOffer      Status = "Offer"
	StatusRejected   Status = "Rejected"
	StatusOnHold     Status = "On Hold"
)

// Statuses lists every status in display order.
var Statuses = []Status{
	StatusApplied,
	StatusOnlineTest,
	StatusInterview,
	StatusOffer,
	StatusRejected,
	StatusOnHold,
}

// StatusAll is the list filter value meaning "no status filter".
const StatusAll = "All"

// Priority ranks how much the user cares about an application.
type Priority string

const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// Priorities lists every priority.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// EventType classifies a timeline event.
type EventType string

const (
	EventApplied    EventType = "Applied"
	EventOnlineTest EventType = "Online Test"
	EventInterview  EventType = "Interview"
	EventHRCall     EventType = "HR Call"
	EventOffer      EventType = "Offer"
	EventRejected   EventType = "Rejected"
	EventFollowUp   EventType = "Follow-up"
	EventOther      EventType = "Other"
)

// EventTypes lists every timeline event type.
var EventTypes = []EventType{
	EventApplied,
	EventOnlineTest,
	EventInterview,
	EventHRCall,
	EventOffer,
	EventRejected,
	EventFollowUp,
	EventOther,
}

// ChecklistItem is one entry of an application's interview-prep checklist.
type ChecklistItem struct {
	Label string `json:"label"`
	Done  bool   `json:"done"`
}

// Validate implements validation.Validatable.
func (c ChecklistItem) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Label, validation.Required),
	)
}

// TimelineEvent is a dated activity entry embedded in an Application.
type TimelineEvent struct {
	ID        string    `json:"_id"`
	Date      time.Time `json:"date"`
	Type      EventType `json:"type"`
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"createdAt"`
}

// Application is a single tracked job application owned by one user.
type Application struct {
	ID               string          `json:"_id"`
	UserID           string          `json:"user"`
	Company          string          `json:"company"`
	Position         string          `json:"position"`
	Location         string          `json:"location"`
	Status           Status          `json:"status"`
	JobLink          string          `json:"jobLink"`
	Source           string          `json:"source"`
	DateApplied      *time.Time      `json:"dateApplied"`
	NextFollowUpDate *time.Time      `json:"nextFollowUpDate"`
	Priority         Priority        `json:"priority"`
	Tags             []string        `json:"tags"`
	Notes            string          `json:"notes"`
	PrepNotes        string          `json:"prepNotes"`
	PrepChecklist    []ChecklistItem `json:"prepChecklist"`
	Timeline         []TimelineEvent `json:"timeline"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// TimelineIndex returns the position of the event with the given id, or -1.
func (a *Application) TimelineIndex(eventID string) int {
	for i, ev := range a.Timeline {
		if ev.ID == eventID {
			return i
		}
	}
	return -1
}
