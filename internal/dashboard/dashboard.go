// Package dashboard aggregates a user's applications into summary figures.
package dashboard

import (
	"sort"
	"time"

	"github.com/jobtrackr/jobtrackr/internal/followup"
	"github.com/jobtrackr/jobtrackr/internal/models"
)

// ListLimit caps the recent and upcoming lists.
const ListLimit = 5

// Summary is the dashboard payload.
type Summary struct {
	Total    int                   `json:"total"`
	ByStatus map[models.Status]int `json:"byStatus"`
	Recent   []models.Application  `json:"recent"`
	Upcoming []models.Application  `json:"upcoming"`
}

// Summarize computes the dashboard for apps as of now. apps is not modified.
func Summarize(apps []models.Application, now time.Time) Summary {
	s := Summary{
		Total:    len(apps),
		ByStatus: make(map[models.Status]int, len(models.Statuses)),
	}
	for _, st := range models.Statuses {
		s.ByStatus[st] = 0
	}
	for _, a := range apps {
		s.ByStatus[a.Status]++
	}

	recent := make([]models.Application, len(apps))
	copy(recent, apps)
	sort.SliceStable(recent, func(i, j int) bool {
		a, b := recent[i], recent[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID < b.ID
	})
	s.Recent = head(recent)

	today := followup.Day(now)
	upcoming := []models.Application{}
	for _, a := range apps {
		if a.NextFollowUpDate == nil || a.NextFollowUpDate.Before(today) {
			continue
		}
		upcoming = append(upcoming, a)
	}
	sort.SliceStable(upcoming, func(i, j int) bool {
		a, b := upcoming[i], upcoming[j]
		if !a.NextFollowUpDate.Equal(*b.NextFollowUpDate) {
			return a.NextFollowUpDate.Before(*b.NextFollowUpDate)
		}
		return a.ID < b.ID
	})
	s.Upcoming = head(upcoming)

	return s
}

func head(apps []models.Application) []models.Application {
	if len(apps) > ListLimit {
		return apps[:ListLimit]
	}
	return apps
}
