package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/models"
)

const applicationColumns = `id, user_id, company, position, location, status, job_link, source,
	date_applied, next_follow_up_date, priority, tags, notes, prep_notes, prep_checklist,
	timeline, created_at, updated_at`

// CreateApplication inserts a new application row.
func (db *DB) CreateApplication(ctx context.Context, app *models.Application) error {
	enc, err := encodeLists(app)
	if err != nil {
		return err
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO applications (`+applicationColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		app.ID, app.UserID, app.Company, app.Position, app.Location, string(app.Status),
		app.JobLink, app.Source, formatNullTime(app.DateApplied), formatNullTime(app.NextFollowUpDate),
		string(app.Priority), enc.tags, app.Notes, app.PrepNotes, enc.checklist, enc.timeline,
		formatTime(app.CreatedAt), formatTime(app.UpdatedAt))
	if err != nil {
		return fmt.Errorf("store: insert application: %w", err)
	}
	return nil
}

// GetApplication returns the application if it exists and belongs to userID.
func (db *DB) GetApplication(ctx context.Context, userID, id string) (*models.Application, error) {
	row := db.conn.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	return scanApplication(row)
}

// ListApplications returns the user's applications, newest first.
func (db *DB) ListApplications(ctx context.Context, userID string, f ListFilter) ([]models.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM applications WHERE user_id = ?`
	args := []any{userID}
	if f.Status != "" && f.Status != models.StatusAll {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("store: list applications: %w", err)
	}
	defer rows.Close()

	// SQLite LIKE only folds ASCII, so the search filter runs here.
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	out := []models.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, err
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(app.Company), needle) &&
			!strings.Contains(strings.ToLower(app.Position), needle) {
			continue
		}
		out = append(out, *app)
	}
	return out, rows.Err()
}

// MutateApplication loads the application inside a write transaction, applies
// fn, and stores the result. Ownership columns (id, user_id, created_at) are
// never rewritten. If fn returns an error nothing is written.
func (db *DB) MutateApplication(ctx context.Context, userID, id string, fn func(*models.Application) error) (*models.Application, error) {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("store: begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // best-effort on failure path

	row := tx.QueryRowContext(ctx,
		`SELECT `+applicationColumns+` FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	app, err := scanApplication(row)
	if err != nil {
		return nil, err
	}
	if err := fn(app); err != nil {
		return nil, err
	}

	enc, err := encodeLists(app)
	if err != nil {
		return nil, err
	}
	_, err = tx.ExecContext(ctx, `
		UPDATE applications SET
			company = ?, position = ?, location = ?, status = ?, job_link = ?, source = ?,
			date_applied = ?, next_follow_up_date = ?, priority = ?, tags = ?, notes = ?,
			prep_notes = ?, prep_checklist = ?, timeline = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		app.Company, app.Position, app.Location, string(app.Status), app.JobLink, app.Source,
		formatNullTime(app.DateApplied), formatNullTime(app.NextFollowUpDate), string(app.Priority),
		enc.tags, app.Notes, app.PrepNotes, enc.checklist, enc.timeline, formatTime(app.UpdatedAt),
		id, userID)
	if err != nil {
		return nil, fmt.Errorf("store: update application: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("store: commit: %w", err)
	}
	return app, nil
}

// DeleteApplication removes the application and, with it, its timeline.
func (db *DB) DeleteApplication(ctx context.Context, userID, id string) error {
	res, err := db.conn.ExecContext(ctx, `DELETE FROM applications WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("store: delete application: %w", err)
	}
	return expectOneRow(res)
}

type encodedLists struct {
	tags, checklist, timeline string
}

func encodeLists(app *models.Application) (encodedLists, error) {
	var out encodedLists
	b, err := json.Marshal(nonNil(app.Tags))
	if err != nil {
		return out, fmt.Errorf("store: encode tags: %w", err)
	}
	out.tags = string(b)
	if b, err = json.Marshal(nonNil(app.PrepChecklist)); err != nil {
		return out, fmt.Errorf("store: encode checklist: %w", err)
	}
	out.checklist = string(b)
	if b, err = json.Marshal(nonNil(app.Timeline)); err != nil {
		return out, fmt.Errorf("store: encode timeline: %w", err)
	}
	out.timeline = string(b)
	return out, nil
}

func scanApplication(s scanner) (*models.Application, error) {
	var (
		app                       models.Application
		status, priority          string
		dateApplied, nextFollowUp sql.NullString
		tags, checklist, timeline string
		createdAt, updatedAt      string
	)
	err := s.Scan(&app.ID, &app.UserID, &app.Company, &app.Position, &app.Location, &status,
		&app.JobLink, &app.Source, &dateApplied, &nextFollowUp, &priority, &tags, &app.Notes,
		&app.PrepNotes, &checklist, &timeline, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan application: %w", err)
	}
	app.Status = models.Status(status)
	app.Priority = models.Priority(priority)

	if app.DateApplied, err = parseNullTime(dateApplied); err != nil {
		return nil, err
	}
	if app.NextFollowUpDate, err = parseNullTime(nextFollowUp); err != nil {
		return nil, err
	}
	if app.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if app.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &app.Tags); err != nil {
		return nil, fmt.Errorf("store: decode tags: %w", err)
	}
	if err := json.Unmarshal([]byte(checklist), &app.PrepChecklist); err != nil {
		return nil, fmt.Errorf("store: decode checklist: %w", err)
	}
	if err := json.Unmarshal([]byte(timeline), &app.Timeline); err != nil {
		return nil, fmt.Errorf("store: decode timeline: %w", err)
	}
	app.Tags = nonNil(app.Tags)
	app.PrepChecklist = nonNil(app.PrepChecklist)
	app.Timeline = nonNil(app.Timeline)
	return &app, nil
}
