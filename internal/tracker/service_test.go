package tracker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/store"
	"github.com/jobtrackr/jobtrackr/internal/testutil"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) PublishApplicationEvent(userID, kind, id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, userID+":"+kind)
}

func setup(t *testing.T) (*tracker.Service, *recorder, string, string) {
	t.Helper()
	db := testutil.TestDB(t)
	alice := testutil.CreateUser(t, db, "Alice", "alice@example.com")
	bob := testutil.CreateUser(t, db, "Bob", "bob@example.com")
	rec := &recorder{}
	clock := testutil.FixedClock(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC))
	svc := tracker.NewService(db, tracker.WithClock(clock), tracker.WithPublisher(rec))
	return svc, rec, alice.ID, bob.ID
}

func ptr[T any](v T) *T { return &v }

func TestCreate_Defaults(t *testing.T) {
	svc, rec, alice, _ := setup(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, alice, tracker.CreateInput{Company: "  Acme ", Position: "Engineer "})
	if err != nil {
		t.Fatal(err)
	}
	if app.Company != "Acme" || app.Position != "Engineer" {
		t.Errorf("not trimmed: %q / %q", app.Company, app.Position)
	}
	if app.Status != models.StatusApplied {
		t.Errorf("Status = %q", app.Status)
	}
	if app.Priority != models.PriorityMedium {
		t.Errorf("Priority = %q", app.Priority)
	}
	if app.UserID != alice {
		t.Errorf("UserID = %q", app.UserID)
	}
	if app.ID == "" || !app.CreatedAt.Equal(time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("ID/CreatedAt not assigned: %+v", app)
	}
	if len(app.Timeline) != 0 || app.Tags == nil || app.PrepChecklist == nil {
		t.Errorf("lists should be empty and non-nil: %+v", app)
	}
	if len(rec.events) != 1 || rec.events[0] != alice+":created" {
		t.Errorf("events = %v", rec.events)
	}

	got, err := svc.Get(ctx, alice, app.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Company != "Acme" {
		t.Errorf("stored Company = %q", got.Company)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc, rec, alice, _ := setup(t)
	ctx := context.Background()

	cases := []struct {
		name string
		in   tracker.CreateInput
	}{
		{"missing company", tracker.CreateInput{Position: "Engineer"}},
		{"blank position", tracker.CreateInput{Company: "Acme", Position: "   "}},
		{"bad status", tracker.CreateInput{Company: "Acme", Position: "Eng", Status: "Ghosted"}},
		{"bad priority", tracker.CreateInput{Company: "Acme", Position: "Eng", Priority: "Urgent"}},
		{"checklist label", tracker.CreateInput{Company: "Acme", Position: "Eng",
			PrepChecklist: []models.ChecklistItem{{Label: ""}}}},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, c.in)
			if !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}

	apps, err := svc.ListAll(ctx, alice)
	if err != nil {
		t.Fatal(err)
	}
	if len(apps) != 0 {
		t.Errorf("invalid creates stored %d records", len(apps))
	}
	if len(rec.events) != 0 {
		t.Errorf("events = %v", rec.events)
	}
}

func TestOwnership(t *testing.T) {
	svc, _, alice, bob := setup(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, alice, tracker.CreateInput{Company: "Acme", Position: "Eng"})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Get(ctx, bob, app.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get foreign: %v", err)
	}
	if _, err := svc.Update(ctx, bob, app.ID, tracker.Patch{Notes: ptr("mine")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update foreign: %v", err)
	}
	if err := svc.Delete(ctx, bob, app.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Delete foreign: %v", err)
	}
	in := tracker.EventInput{Date: models.DateInput{Set: true, Time: ptr(testutil.Day(2024, 6, 1))}, Type: models.EventOther}
	if _, err := svc.AddTimelineEvent(ctx, bob, app.ID, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("AddTimelineEvent foreign: %v", err)
	}
	_, err = svc.RemoveTimelineEvent(ctx, bob, app.ID, "x")
	if !errors.Is(err, apperr.ErrNotFound) || errors.Is(err, apperr.ErrEventNotFound) {
		t.Errorf("RemoveTimelineEvent foreign: %v", err)
	}

	bobs, err := svc.ListAll(ctx, bob)
	if err != nil {
		t.Fatal(err)
	}
	if len(bobs) != 0 {
		t.Errorf("bob sees %d applications", len(bobs))
	}

	got, err := svc.Get(ctx, alice, app.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Notes != "" {
		t.Errorf("foreign update leaked: %q", got.Notes)
	}
}

func TestUpdate_Partial(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	follow := testutil.Day(2024, 6, 12)
	app, err := svc.Create(ctx, alice, tracker.CreateInput{
		Company:          "Acme",
		Position:         "Eng",
		Location:         "Remote",
		Tags:             []string{"go", "go"},
		NextFollowUpDate: models.DateInput{Set: true, Time: &follow},
	})
	if err != nil {
		t.Fatal(err)
	}

	st := models.StatusInterview
	updated, err := svc.Update(ctx, alice, app.ID, tracker.Patch{
		Status:        &st,
		PrepNotes:     ptr("system design"),
		PrepChecklist: &[]models.ChecklistItem{{Label: "Review CV", Done: true}},
	})
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != models.StatusInterview || updated.PrepNotes != "system design" {
		t.Errorf("patch not applied: %+v", updated)
	}
	if updated.Location != "Remote" || updated.Company != "Acme" {
		t.Errorf("untouched fields changed: %+v", updated)
	}
	if len(updated.Tags) != 2 {
		t.Errorf("Tags = %v, duplicates should be kept", updated.Tags)
	}
	if updated.NextFollowUpDate == nil || !updated.NextFollowUpDate.Equal(follow) {
		t.Errorf("NextFollowUpDate = %v", updated.NextFollowUpDate)
	}
	if len(updated.PrepChecklist) != 1 || !updated.PrepChecklist[0].Done {
		t.Errorf("PrepChecklist = %+v", updated.PrepChecklist)
	}

	cleared, err := svc.Update(ctx, alice, app.ID, tracker.Patch{NextFollowUpDate: models.DateInput{Set: true}})
	if err != nil {
		t.Fatal(err)
	}
	if cleared.NextFollowUpDate != nil {
		t.Errorf("NextFollowUpDate not cleared: %v", cleared.NextFollowUpDate)
	}
}

func TestUpdate_Validation(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	app, err := svc.Create(ctx, alice, tracker.CreateInput{Company: "Acme", Position: "Eng"})
	if err != nil {
		t.Fatal(err)
	}
	bad := models.Status("Ghosted")
	for name, p := range map[string]tracker.Patch{
		"blank company": {Company: ptr("  ")},
		"bad status":    {Status: &bad},
	} {
		if _, err := svc.Update(ctx, alice, app.ID, p); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
	got, _ := svc.Get(ctx, alice, app.ID)
	if got.Company != "Acme" || got.Status != models.StatusApplied {
		t.Errorf("rejected update was stored: %+v", got)
	}
}

func TestDelete(t *testing.T) {
	svc, rec, alice, _ := setup(t)
	ctx := context.Background()

	app, _ := svc.Create(ctx, alice, tracker.CreateInput{Company: "Acme", Position: "Eng"})
	if err := svc.Delete(ctx, alice, app.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Get(ctx, alice, app.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Get after delete: %v", err)
	}
	if err := svc.Delete(ctx, alice, app.ID); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("second delete: %v", err)
	}
	if _, err := svc.Update(ctx, alice, app.ID, tracker.Patch{Notes: ptr("late")}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("Update after delete: %v", err)
	}
	day := testutil.Day(2024, 6, 1)
	in := tracker.EventInput{Date: models.DateInput{Set: true, Time: &day}, Type: models.EventOther}
	if _, err := svc.AddTimelineEvent(ctx, alice, app.ID, in); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("AddTimelineEvent after delete: %v", err)
	}
	if _, err := svc.RemoveTimelineEvent(ctx, alice, app.ID, "any"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("RemoveTimelineEvent after delete: %v", err)
	}
	list, err := svc.List(ctx, alice, store.ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	for _, a := range list {
		if a.ID == app.ID {
			t.Errorf("deleted application %s still listed", app.ID)
		}
	}
	if last := rec.events[len(rec.events)-1]; last != alice+":deleted" {
		t.Errorf("last event = %q", last)
	}
}

func TestTimeline(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	app, _ := svc.Create(ctx, alice, tracker.CreateInput{Company: "Acme", Position: "Eng"})

	add := func(day int, typ models.EventType, note string) *models.Application {
		t.Helper()
		d := testutil.Day(2024, 6, day)
		got, err := svc.AddTimelineEvent(ctx, alice, app.ID, tracker.EventInput{
			Date: models.DateInput{Set: true, Time: &d},
			Type: typ,
			Note: note,
		})
		if err != nil {
			t.Fatal(err)
		}
		return got
	}

	add(5, models.EventApplied, "")
	add(1, models.EventHRCall, " call ")
	got := add(8, models.EventInterview, "onsite")

	if len(got.Timeline) != 3 {
		t.Fatalf("timeline len = %d", len(got.Timeline))
	}
	// Append order, not date order.
	if got.Timeline[0].Type != models.EventApplied || got.Timeline[1].Type != models.EventHRCall {
		t.Errorf("order = %+v", got.Timeline)
	}
	if got.Timeline[1].Note != "call" {
		t.Errorf("Note = %q", got.Timeline[1].Note)
	}
	ids := map[string]bool{}
	for _, ev := range got.Timeline {
		if ev.ID == "" || ids[ev.ID] {
			t.Errorf("duplicate or empty id %q", ev.ID)
		}
		ids[ev.ID] = true
		if ev.CreatedAt.IsZero() {
			t.Error("CreatedAt not set")
		}
	}

	removed, err := svc.RemoveTimelineEvent(ctx, alice, app.ID, got.Timeline[1].ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(removed.Timeline) != 2 || removed.Timeline[0].ID != got.Timeline[0].ID || removed.Timeline[1].ID != got.Timeline[2].ID {
		t.Errorf("after remove = %+v", removed.Timeline)
	}

	_, err = svc.RemoveTimelineEvent(ctx, alice, app.ID, got.Timeline[1].ID)
	if !errors.Is(err, apperr.ErrEventNotFound) || !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("remove missing event: %v", err)
	}

	stored, _ := svc.Get(ctx, alice, app.ID)
	if len(stored.Timeline) != 2 {
		t.Errorf("stored timeline len = %d", len(stored.Timeline))
	}
}

func TestTimeline_Validation(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()
	app, _ := svc.Create(ctx, alice, tracker.CreateInput{Company: "Acme", Position: "Eng"})
	d := testutil.Day(2024, 6, 1)

	for name, in := range map[string]tracker.EventInput{
		"no date":   {Type: models.EventOther},
		"null date": {Date: models.DateInput{Set: true}, Type: models.EventOther},
		"no type":   {Date: models.DateInput{Set: true, Time: &d}},
		"bad type":  {Date: models.DateInput{Set: true, Time: &d}, Type: "Party"},
	} {
		if _, err := svc.AddTimelineEvent(ctx, alice, app.ID, in); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: err = %v", name, err)
		}
	}
}

func TestList_FilterAndSearch(t *testing.T) {
	svc, _, alice, _ := setup(t)
	ctx := context.Background()

	for _, in := range []tracker.CreateInput{
		{Company: "Acme", Position: "Backend Engineer"},
		{Company: "Globex", Position: "Data Analyst", Status: models.StatusInterview},
		{Company: "Initech", Position: "backend dev", Status: models.StatusInterview},
	} {
		if _, err := svc.Create(ctx, alice, in); err != nil {
			t.Fatal(err)
		}
	}

	got, err := svc.List(ctx, alice, store.ListFilter{Status: string(models.StatusInterview), Search: "BACKEND"})
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Company != "Initech" {
		t.Errorf("got %+v", got)
	}

	all, _ := svc.List(ctx, alice, store.ListFilter{Status: models.StatusAll})
	if len(all) != 3 {
		t.Errorf("All = %d", len(all))
	}
}
