package followup

import (
	"testing"
	"time"

	"github.com/jobtrackr/jobtrackr/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestBucketOf(t *testing.T) {
	now := time.Date(2024, 6, 10, 15, 30, 0, 0, time.UTC)

	cases := []struct {
		name   string
		date   *time.Time
		want   Bucket
		wantOK bool
	}{
		{"yesterday", date(2024, 6, 9), BucketOverdue, true},
		{"long ago", date(2023, 1, 1), BucketOverdue, true},
		{"today", date(2024, 6, 10), BucketToday, true},
		{"tomorrow", date(2024, 6, 11), BucketUpcoming, true},
		{"in two days", date(2024, 6, 12), BucketUpcoming, true},
		{"in three days", date(2024, 6, 13), BucketUpcoming, true},
		{"in four days", date(2024, 6, 14), "", false},
		{"unset", nil, "", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, ok := BucketOf(c.date, now)
			if got != c.want || ok != c.wantOK {
				t.Errorf("BucketOf = (%q, %v), want (%q, %v)", got, ok, c.want, c.wantOK)
			}
		})
	}
}

func TestBucketOf_IgnoresTimeOfDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 1, 0, time.UTC)

	late := time.Date(2024, 6, 10, 23, 59, 59, 0, time.UTC)
	if b, _ := BucketOf(&late, now); b != BucketToday {
		t.Errorf("late today = %q, want today", b)
	}
	early := time.Date(2024, 6, 9, 23, 59, 59, 0, time.UTC)
	if b, _ := BucketOf(&early, now); b != BucketOverdue {
		t.Errorf("late yesterday = %q, want overdue", b)
	}
	edge := time.Date(2024, 6, 13, 23, 59, 59, 0, time.UTC)
	if b, ok := BucketOf(&edge, now); b != BucketUpcoming || !ok {
		t.Errorf("end of window = %q, want upcoming", b)
	}
}

func TestBucketOf_UsesUTCCalendarDay(t *testing.T) {
	// 23:30 in New York on June 9th is June 10th in UTC.
	ny := time.FixedZone("EDT", -4*60*60)
	stored := time.Date(2024, 6, 9, 23, 30, 0, 0, ny)
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)
	if b, _ := BucketOf(&stored, now); b != BucketToday {
		t.Errorf("bucket = %q, want today", b)
	}
}

func TestClassify(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	apps := []models.Application{
		{ID: "a", NextFollowUpDate: date(2024, 6, 9)},
		{ID: "b", NextFollowUpDate: date(2024, 6, 10)},
		{ID: "c", NextFollowUpDate: date(2024, 6, 11)},
		{ID: "d", NextFollowUpDate: date(2024, 6, 13)},
		{ID: "e", NextFollowUpDate: date(2024, 6, 14)},
		{ID: "f"},
		{ID: "g", NextFollowUpDate: date(2024, 5, 1)},
	}

	res := Classify(apps, now)
	ids := func(as []models.Application) []string {
		out := []string{}
		for _, a := range as {
			out = append(out, a.ID)
		}
		return out
	}
	if got := ids(res.Overdue); len(got) != 2 || got[0] != "a" || got[1] != "g" {
		t.Errorf("overdue = %v", got)
	}
	if got := ids(res.Today); len(got) != 1 || got[0] != "b" {
		t.Errorf("today = %v", got)
	}
	if got := ids(res.Upcoming); len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Errorf("upcoming = %v", got)
	}
	if res.Len() != 5 {
		t.Errorf("Len = %d, want 5", res.Len())
	}
}

func TestClassify_Disjoint(t *testing.T) {
	now := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	var apps []models.Application
	for offset := -10; offset <= 10; offset++ {
		d := now.AddDate(0, 0, offset).Add(time.Duration(offset*37) * time.Minute)
		apps = append(apps, models.Application{ID: d.String(), NextFollowUpDate: &d})
	}

	res := Classify(apps, now)
	seen := map[string]int{}
	for _, b := range [][]models.Application{res.Overdue, res.Today, res.Upcoming} {
		for _, a := range b {
			seen[a.ID]++
		}
	}
	for id, n := range seen {
		if n != 1 {
			t.Errorf("%s appears in %d buckets", id, n)
		}
	}
	excluded := len(apps) - res.Len()
	if excluded != 7 {
		t.Errorf("excluded = %d, want 7 (days +4..+10)", excluded)
	}
}

func TestClassify_Empty(t *testing.T) {
	res := Classify(nil, time.Now())
	if res.Overdue == nil || res.Today == nil || res.Upcoming == nil {
		t.Error("buckets should be empty, not nil")
	}
	if res.Len() != 0 {
		t.Errorf("Len = %d", res.Len())
	}
}
