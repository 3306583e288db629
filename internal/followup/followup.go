// Package followup classifies applications by their next follow-up date.
//
// All comparisons are made on UTC calendar days: a stored instant belongs to
// the day it falls on in UTC, and "today" is the UTC date of the reference
// instant. Time of day is ignored.
package followup

import (
	"time"

	"github.com/jobtrackr/jobtrackr/internal/models"
)

// UpcomingDays is how far ahead, in calendar days, the upcoming bucket reaches.
const UpcomingDays = 3

// Bucket names one partition of the classifier output.
type Bucket string

const (
	BucketOverdue  Bucket = "overdue"
	BucketToday    Bucket = "today"
	BucketUpcoming Bucket = "upcoming"
)

// Result holds the three disjoint buckets.
type Result struct {
	Overdue  []models.Application
	Today    []models.Application
	Upcoming []models.Application
}

// Len returns the number of classified applications.
func (r Result) Len() int {
	return len(r.Overdue) + len(r.Today) + len(r.Upcoming)
}

// Day truncates t to midnight of its UTC calendar date.
func Day(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// BucketOf reports which bucket a follow-up date falls into relative to now.
// ok is false when the date is unset or beyond the upcoming window.
func BucketOf(date *time.Time, now time.Time) (b Bucket, ok bool) {
	if date == nil {
		return "", false
	}
	d, today := Day(*date), Day(now)
	switch {
	case d.Before(today):
		return BucketOverdue, true
	case d.Equal(today):
		return BucketToday, true
	case !d.After(today.AddDate(0, 0, UpcomingDays)):
		return BucketUpcoming, true
	}
	return "", false
}

// Classify partitions apps into overdue, today and upcoming. Order within a
// bucket follows input order.
func Classify(apps []models.Application, now time.Time) Result {
	res := Result{
		Overdue:  []models.Application{},
		Today:    []models.Application{},
		Upcoming: []models.Application{},
	}
	for _, app := range apps {
		b, ok := BucketOf(app.NextFollowUpDate, now)
		if !ok {
			continue
		}
		switch b {
		case BucketOverdue:
			res.Overdue = append(res.Overdue, app)
		case BucketToday:
			res.Today = append(res.Today, app)
		case BucketUpcoming:
			res.Upcoming = append(res.Upcoming, app)
		}
	}
	return res
}
