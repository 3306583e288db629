package tracker

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/jobtrackr/jobtrackr/internal/models"
)

// CreateInput is the payload for a new application.
type CreateInput struct {
	Company          string                 `json:"company"`
	Position         string                 `json:"position"`
	Location         string                 `json:"location"`
	Status           models.Status          `json:"status"`
	JobLink          string                 `json:"jobLink"`
	Source           string                 `json:"source"`
	DateApplied      models.DateInput       `json:"dateApplied"`
	NextFollowUpDate models.DateInput       `json:"nextFollowUpDate"`
	Priority         models.Priority        `json:"priority"`
	Tags             []string               `json:"tags"`
	Notes            string                 `json:"notes"`
	PrepNotes        string                 `json:"prepNotes"`
	PrepChecklist    []models.ChecklistItem `json:"prepChecklist"`
}

func (in *CreateInput) normalize() {
	in.Company = strings.TrimSpace(in.Company)
	in.Position = strings.TrimSpace(in.Position)
	in.Location = strings.TrimSpace(in.Location)
	in.JobLink = strings.TrimSpace(in.JobLink)
	in.Source = strings.TrimSpace(in.Source)
	in.Notes = strings.TrimSpace(in.Notes)
	in.Tags = trimTags(in.Tags)
	if in.Status == "" {
		in.Status = models.StatusApplied
	}
	if in.Priority == "" {
		in.Priority = models.PriorityMedium
	}
}

// Validate implements validation.Validatable.
func (in CreateInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Company, validation.Required),
		validation.Field(&in.Position, validation.Required),
		validation.Field(&in.Status, validation.In(statusValues()...)),
		validation.Field(&in.Priority, validation.In(priorityValues()...)),
		validation.Field(&in.PrepChecklist),
	)
}

// Patch is a partial update. Only the fields listed here can change; a nil
// pointer leaves the stored value untouched.
type Patch struct {
	Company          *string                 `json:"company"`
	Position         *string                 `json:"position"`
	Location         *string                 `json:"location"`
	Status           *models.Status          `json:"status"`
	JobLink          *string                 `json:"jobLink"`
	Source           *string                 `json:"source"`
	DateApplied      models.DateInput        `json:"dateApplied"`
	NextFollowUpDate models.DateInput        `json:"nextFollowUpDate"`
	Priority         *models.Priority        `json:"priority"`
	Tags             *[]string               `json:"tags"`
	Notes            *string                 `json:"notes"`
	PrepNotes        *string                 `json:"prepNotes"`
	PrepChecklist    *[]models.ChecklistItem `json:"prepChecklist"`
}

func (p *Patch) normalize() {
	for _, s := range []*string{p.Company, p.Position, p.Location, p.JobLink, p.Source, p.Notes} {
		if s != nil {
			*s = strings.TrimSpace(*s)
		}
	}
	if p.Tags != nil {
		t := trimTags(*p.Tags)
		p.Tags = &t
	}
}

// Validate implements validation.Validatable.
func (p Patch) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Company, validation.NilOrNotEmpty),
		validation.Field(&p.Position, validation.NilOrNotEmpty),
		validation.Field(&p.Status, validation.NilOrNotEmpty, validation.In(statusValues()...)),
		validation.Field(&p.Priority, validation.NilOrNotEmpty, validation.In(priorityValues()...)),
		validation.Field(&p.PrepChecklist),
	)
}

func (p *Patch) apply(app *models.Application) {
	setIf(&app.Company, p.Company)
	setIf(&app.Position, p.Position)
	setIf(&app.Location, p.Location)
	setIf(&app.Status, p.Status)
	setIf(&app.JobLink, p.JobLink)
	setIf(&app.Source, p.Source)
	if p.DateApplied.Set {
		app.DateApplied = p.DateApplied.Value()
	}
	if p.NextFollowUpDate.Set {
		app.NextFollowUpDate = p.NextFollowUpDate.Value()
	}
	setIf(&app.Priority, p.Priority)
	setIf(&app.Tags, p.Tags)
	setIf(&app.Notes, p.Notes)
	setIf(&app.PrepNotes, p.PrepNotes)
	setIf(&app.PrepChecklist, p.PrepChecklist)
}

// EventInput is the payload for a new timeline event.
type EventInput struct {
	Date models.DateInput `json:"date"`
	Type models.EventType `json:"type"`
	Note string           `json:"note"`
}

// Validate implements validation.Validatable.
func (in EventInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Date, validation.By(func(any) error {
			if in.Date.Value() == nil {
				return validation.ErrRequired
			}
			return nil
		})),
		validation.Field(&in.Type, validation.Required, validation.In(eventTypeValues()...)),
	)
}

func setIf[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}

func trimTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, strings.TrimSpace(t))
	}
	return out
}

func statusValues() []any {
	out := make([]any, len(models.Statuses))
	for i, s := range models.Statuses {
		out[i] = s
	}
	return out
}

func priorityValues() []any {
	out := make([]any, len(models.Priorities))
	for i, p := range models.Priorities {
		out[i] = p
	}
	return out
}

func eventTypeValues() []any {
	out := make([]any, len(models.EventTypes))
	for i, t := range models.EventTypes {
		out[i] = t
	}
	return out
}
