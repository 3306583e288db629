package mcpserver

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/jobtrackr/jobtrackr/internal/dashboard"
	"github.com/jobtrackr/jobtrackr/internal/mailer"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/notify"
	"github.com/jobtrackr/jobtrackr/internal/testutil"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
)

var testNow = time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)

type nopSender struct{}

func (nopSender) Send(context.Context, mailer.Message) error { return nil }

func testServer(t *testing.T) (*Server, *tracker.Service, string) {
	t.Helper()
	db := testutil.TestDB(t)
	u := testutil.CreateUser(t, db, "Ada", "ada@example.com")
	clock := testutil.FixedClock(testNow)

	tr := tracker.NewService(db, tracker.WithClock(clock))
	nt := notify.NewService(db, db, nopSender{}, notify.WithClock(clock))
	return New(tr, nt, u.ID, clock), tr, u.ID
}

func createApp(t *testing.T, tr *tracker.Service, userID, company string, follow *time.Time) *models.Application {
	t.Helper()
	in := tracker.CreateInput{Company: company, Position: "Engineer"}
	if follow != nil {
		in.NextFollowUpDate = models.DateInput{Set: true, Time: follow}
	}
	app, err := tr.Create(context.Background(), userID, in)
	if err != nil {
		t.Fatalf("Create(%s): %v", company, err)
	}
	return app
}

func callTool(t *testing.T, srv *Server, name string, args map[string]interface{}) *mcp.CallToolResult {
	t.Helper()
	ctx := context.Background()
	req := mcp.CallToolRequest{}
	req.Method = "tools/call"
	req.Params.Name = name
	req.Params.Arguments = args

	var result *mcp.CallToolResult
	var err error

	switch name {
	case "list_applications":
		result, err = srv.listApplications(ctx, req)
	case "get_application":
		result, err = srv.getApplication(ctx, req)
	case "get_notifications":
		result, err = srv.getNotifications(ctx, req)
	case "dashboard_summary":
		result, err = srv.dashboardSummary(ctx, req)
	case "add_timeline_event":
		result, err = srv.addTimelineEvent(ctx, req)
	default:
		t.Fatalf("unknown tool: %s", name)
	}

	if err != nil {
		t.Fatalf("tool %s error: %v", name, err)
	}
	return result
}

func resultText(r *mcp.CallToolResult) string {
	if len(r.Content) > 0 {
		if tc, ok := r.Content[0].(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestListApplications(t *testing.T) {
	srv, tr, userID := testServer(t)
	createApp(t, tr, userID, "Acme", nil)
	createApp(t, tr, userID, "Globex", nil)

	r := callTool(t, srv, "list_applications", map[string]interface{}{"search": "glo"})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var apps []models.Application
	if err := json.Unmarshal([]byte(resultText(r)), &apps); err != nil {
		t.Fatal(err)
	}
	if len(apps) != 1 || apps[0].Company != "Globex" {
		t.Errorf("apps = %+v, want only Globex", apps)
	}
}

func TestGetApplicationScopedToUser(t *testing.T) {
	srv, tr, userID := testServer(t)
	mine := createApp(t, tr, userID, "Acme", nil)

	r := callTool(t, srv, "get_application", map[string]interface{}{"id": mine.ID})
	if r.IsError || !strings.Contains(resultText(r), `"company": "Acme"`) {
		t.Errorf("get own app = %q", resultText(r))
	}

	r = callTool(t, srv, "get_application", map[string]interface{}{"id": "missing"})
	if !r.IsError {
		t.Error("expected error for missing application")
	}

	r = callTool(t, srv, "get_application", map[string]interface{}{})
	if !r.IsError {
		t.Error("expected error when id is absent")
	}
}

func TestGetNotifications(t *testing.T) {
	srv, tr, userID := testServer(t)

	r := callTool(t, srv, "get_notifications", map[string]interface{}{})
	var empty map[string]json.RawMessage
	if err := json.Unmarshal([]byte(resultText(r)), &empty); err != nil {
		t.Fatalf("empty notifications are not JSON: %v (%q)", err, resultText(r))
	}
	for _, key := range []string{"today", "overdue", "upcoming"} {
		if string(empty[key]) != "[]" {
			t.Errorf("%s = %s, want []", key, empty[key])
		}
	}
	if string(empty["total"]) != "0" {
		t.Errorf("total = %s, want 0", empty["total"])
	}

	yesterday := testNow.AddDate(0, 0, -1)
	createApp(t, tr, userID, "Acme", &yesterday)

	r = callTool(t, srv, "get_notifications", map[string]interface{}{})
	var n notify.Notifications
	if err := json.Unmarshal([]byte(resultText(r)), &n); err != nil {
		t.Fatal(err)
	}
	if n.Total != 1 || len(n.Overdue) != 1 {
		t.Errorf("notifications = %+v, want one overdue", n)
	}
}

func TestDashboardSummary(t *testing.T) {
	srv, tr, userID := testServer(t)
	createApp(t, tr, userID, "Acme", nil)

	r := callTool(t, srv, "dashboard_summary", map[string]interface{}{})
	var sum dashboard.Summary
	if err := json.Unmarshal([]byte(resultText(r)), &sum); err != nil {
		t.Fatal(err)
	}
	if sum.Total != 1 || sum.ByStatus[models.StatusApplied] != 1 {
		t.Errorf("summary = %+v", sum)
	}
}

func TestAddTimelineEvent(t *testing.T) {
	srv, tr, userID := testServer(t)
	app := createApp(t, tr, userID, "Acme", nil)

	r := callTool(t, srv, "add_timeline_event", map[string]interface{}{
		"id":   app.ID,
		"date": "2024-06-12",
		"type": "Interview",
		"note": "onsite",
	})
	if r.IsError {
		t.Fatalf("unexpected error: %s", resultText(r))
	}
	var got models.Application
	if err := json.Unmarshal([]byte(resultText(r)), &got); err != nil {
		t.Fatal(err)
	}
	if len(got.Timeline) != 1 || got.Timeline[0].Note != "onsite" {
		t.Errorf("timeline = %+v", got.Timeline)
	}

	r = callTool(t, srv, "add_timeline_event", map[string]interface{}{
		"id":   app.ID,
		"date": "next tuesday",
		"type": "Interview",
	})
	if !r.IsError {
		t.Error("expected error for unparseable date")
	}

	r = callTool(t, srv, "add_timeline_event", map[string]interface{}{
		"id":   app.ID,
		"date": "2024-06-12",
		"type": "Coffee",
	})
	if !r.IsError {
		t.Error("expected error for unknown event type")
	}
}

func TestFieldReference(t *testing.T) {
	for _, want := range []string{"`Online Test`", "`HR Call`", "`High`", "next 3 days"} {
		if !strings.Contains(FieldReference, want) {
			t.Errorf("field reference missing %q", want)
		}
	}
}
