// Package mcpserver provides an MCP (Model Context Protocol) server that
// exposes one user's job applications to an LLM via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/dashboard"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/notify"
	"github.com/jobtrackr/jobtrackr/internal/store"
	"github.com/jobtrackr/jobtrackr/internal/tracker"
)

const fieldReferenceURI = "jobtrackr://field-reference"

// Server wraps the MCP server with JobTrackr tools bound to a single user.
type Server struct {
	mcp     *server.MCPServer
	tracker *tracker.Service
	notify  *notify.Service
	userID  string
	now     func() time.Time
}

// New creates a new MCP server acting on behalf of userID.
func New(tr *tracker.Service, nt *notify.Service, userID string, now func() time.Time) *Server {
	if now == nil {
		now = time.Now
	}
	s := &Server{tracker: tr, notify: nt, userID: userID, now: now}

	statusEnum := []string{models.StatusAll}
	for _, st := range models.Statuses {
		statusEnum = append(statusEnum, string(st))
	}
	eventEnum := make([]string, 0, len(models.EventTypes))
	for _, et := range models.EventTypes {
		eventEnum = append(eventEnum, string(et))
	}

	s.mcp = server.NewMCPServer(
		"JobTrackr",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_applications",
		mcp.WithDescription("List job applications, newest first."),
		mcp.WithString("status", mcp.Description("Optional status filter"), mcp.Enum(statusEnum...)),
		mcp.WithString("search", mcp.Description("Optional case-insensitive match on company or position")),
	), s.listApplications)

	s.mcp.AddTool(mcp.NewTool("get_application",
		mcp.WithDescription("Get one application including its timeline and prep checklist."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Application id")),
	), s.getApplication)

	s.mcp.AddTool(mcp.NewTool("get_notifications",
		mcp.WithDescription("Follow-ups that are overdue, due today, or due in the next few days."),
	), s.getNotifications)

	s.mcp.AddTool(mcp.NewTool("dashboard_summary",
		mcp.WithDescription("Application counts per status plus recent applications and next follow-ups."),
	), s.dashboardSummary)

	s.mcp.AddTool(mcp.NewTool("add_timeline_event",
		mcp.WithDescription("Append an event (interview, call, offer...) to an application's timeline. "+
			"Read "+fieldReferenceURI+" for accepted values."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Application id")),
		mcp.WithString("date", mcp.Required(), mcp.Description("YYYY-MM-DD or RFC 3339")),
		mcp.WithString("type", mcp.Required(), mcp.Enum(eventEnum...)),
		mcp.WithString("note", mcp.Description("Optional free text")),
	), s.addTimelineEvent)

	s.mcp.AddResource(
		mcp.NewResource(fieldReferenceURI, "Field Reference",
			mcp.WithResourceDescription("Accepted statuses, priorities, event types and date formats."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readFieldReference,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func (s *Server) listApplications(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apps, err := s.tracker.List(ctx, s.userID, store.ListFilter{
		Status: req.GetString("status", ""),
		Search: req.GetString("search", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(apps), nil
}

func (s *Server) getApplication(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	app, err := s.tracker.Get(ctx, s.userID, id)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(app), nil
}

func (s *Server) getNotifications(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	n, err := s.notify.ForUser(ctx, s.userID)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(n), nil
}

func (s *Server) dashboardSummary(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	apps, err := s.tracker.ListAll(ctx, s.userID)
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(dashboard.Summarize(apps, s.now())), nil
}

func (s *Server) addTimelineEvent(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rawDate, err := req.RequireString("date")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	typ, err := req.RequireString("type")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	date, err := models.ParseDate(rawDate)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	app, err := s.tracker.AddTimelineEvent(ctx, s.userID, id, tracker.EventInput{
		Date: models.DateInput{Set: true, Time: &date},
		Type: models.EventType(typ),
		Note: req.GetString("note", ""),
	})
	if err != nil {
		return toolError(err), nil
	}
	return jsonResult(app), nil
}

func (s *Server) readFieldReference(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      fieldReferenceURI,
			MIMEType: "text/markdown",
			Text:     FieldReference,
		},
	}, nil
}

func toolError(err error) *mcp.CallToolResult {
	switch {
	case errors.Is(err, apperr.ErrEventNotFound):
		return mcp.NewToolResultError("timeline entry not found")
	case errors.Is(err, apperr.ErrNotFound):
		return mcp.NewToolResultError("application not found")
	default:
		return mcp.NewToolResultError(err.Error())
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}
