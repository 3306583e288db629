// Package notify builds follow-up notifications and sends the daily
// reminder digest.
package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jobtrackr/jobtrackr/internal/followup"
	"github.com/jobtrackr/jobtrackr/internal/mailer"
	"github.com/jobtrackr/jobtrackr/internal/models"
)

// Type tags a notification item with its bucket.
type Type string

const (
	TypeOverdue  Type = "followup-overdue"
	TypeToday    Type = "followup-today"
	TypeUpcoming Type = "followup-upcoming"
)

// Item is one follow-up reminder.
type Item struct {
	ApplicationID    string        `json:"applicationId"`
	Company          string        `json:"company"`
	Position         string        `json:"position"`
	Status           models.Status `json:"status"`
	NextFollowUpDate string        `json:"nextFollowUpDate"`
	Type             Type          `json:"type"`
	Message          string        `json:"message"`
}

// Notifications is the on-demand payload.
type Notifications struct {
	Today    []Item `json:"today"`
	Overdue  []Item `json:"overdue"`
	Upcoming []Item `json:"upcoming"`
	Total    int    `json:"total"`
}

// Empty reports whether there is nothing to remind about.
func (n Notifications) Empty() bool { return n.Total == 0 }

// Build classifies apps as of now and converts each bucket to items sorted
// by follow-up date, then company.
func Build(apps []models.Application, now time.Time) Notifications {
	res := followup.Classify(apps, now)
	n := Notifications{
		Overdue:  items(res.Overdue, TypeOverdue),
		Today:    items(res.Today, TypeToday),
		Upcoming: items(res.Upcoming, TypeUpcoming),
	}
	n.Total = len(n.Overdue) + len(n.Today) + len(n.Upcoming)
	return n
}

func items(apps []models.Application, typ Type) []Item {
	out := make([]Item, 0, len(apps))
	for _, a := range apps {
		date := followup.Day(*a.NextFollowUpDate).Format(time.DateOnly)
		it := Item{
			ApplicationID:    a.ID,
			Company:          a.Company,
			Position:         a.Position,
			Status:           a.Status,
			NextFollowUpDate: date,
			Type:             typ,
		}
		switch typ {
		case TypeOverdue:
			it.Message = fmt.Sprintf("Follow up with %s for %s", a.Company, a.Position)
		case TypeToday:
			it.Message = fmt.Sprintf("Follow up today with %s (%s)", a.Company, a.Position)
		case TypeUpcoming:
			it.Message = fmt.Sprintf("Upcoming follow-up with %s on %s", a.Company, date)
		}
		out = append(out, it)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].NextFollowUpDate != out[j].NextFollowUpDate {
			return out[i].NextFollowUpDate < out[j].NextFollowUpDate
		}
		if out[i].Company != out[j].Company {
			return out[i].Company < out[j].Company
		}
		return out[i].ApplicationID < out[j].ApplicationID
	})
	return out
}

// ComposeDigest renders the reminder email for u. Sections appear in the
// order overdue, today, upcoming; empty sections are left out.
func ComposeDigest(u *models.User, n Notifications) mailer.Message {
	name := strings.TrimSpace(u.Name)
	if name == "" {
		name = "there"
	}
	lines := []string{"Hi " + name + ",", "", "Here are your JobTrackr reminders:"}

	var subject []string
	if len(n.Overdue) > 0 {
		subject = append(subject, "overdue follow-ups")
		lines = append(lines, "", "⚠ Overdue follow-ups:")
		for i, it := range n.Overdue {
			lines = append(lines, fmt.Sprintf("%d. %s – %s (status: %s, follow-up was on %s)",
				i+1, it.Company, it.Position, it.Status, it.NextFollowUpDate))
		}
	}
	if len(n.Today) > 0 {
		subject = append(subject, "today's follow-ups")
		lines = append(lines, "", "📅 Due today:")
		for i, it := range n.Today {
			lines = append(lines, fmt.Sprintf("%d. %s – %s (status: %s)",
				i+1, it.Company, it.Position, it.Status))
		}
	}
	if len(n.Upcoming) > 0 {
		subject = append(subject, "upcoming tasks")
		lines = append(lines, "", fmt.Sprintf("⏳ Upcoming (next %d days):", followup.UpcomingDays))
		for i, it := range n.Upcoming {
			lines = append(lines, fmt.Sprintf("%d. %s – %s on %s (status: %s)",
				i+1, it.Company, it.Position, it.NextFollowUpDate, it.Status))
		}
	}
	lines = append(lines, "", "All the best for your job search!", "– JobTrackr")

	return mailer.Message{
		To:      u.Email,
		Subject: "JobTrackr: " + strings.Join(subject, ", "),
		Text:    strings.Join(lines, "\n"),
	}
}
