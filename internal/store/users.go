package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mattn/go-sqlite3"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/models"
)

const userColumns = `id, email, name, password_hash, headline, education, graduation_year,
	location, skills, linkedin, github, portfolio, email_notifications, created_at, updated_at`

// CreateUser inserts a new user. A duplicate email yields apperr.ErrAlreadyExists.
func (db *DB) CreateUser(ctx context.Context, u *models.User) error {
	skills, err := json.Marshal(nonNil(u.Skills))
	if err != nil {
		return fmt.Errorf("store: encode skills: %w", err)
	}
	_, err = db.conn.ExecContext(ctx, `INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Email, u.Name, u.PasswordHash, u.Headline, u.Education, u.GraduationYear,
		u.Location, string(skills), u.LinkedIn, u.GitHub, u.Portfolio, u.EmailNotifications,
		formatTime(u.CreatedAt), formatTime(u.UpdatedAt))
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && se.ExtendedCode == sqlite3.ErrConstraintUnique {
			return apperr.ErrAlreadyExists
		}
		return fmt.Errorf("store: insert user: %w", err)
	}
	return nil
}

// GetUser returns the user with the given id.
func (db *DB) GetUser(ctx context.Context, id string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	return scanUser(row)
}

// GetUserByEmail returns the user with the given (already normalised) email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	row := db.conn.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	return scanUser(row)
}

// UpdateUser replaces the profile columns of an existing user.
func (db *DB) UpdateUser(ctx context.Context, u *models.User) error {
	skills, err := json.Marshal(nonNil(u.Skills))
	if err != nil {
		return fmt.Errorf("store: encode skills: %w", err)
	}
	res, err := db.conn.ExecContext(ctx, `
		UPDATE users SET
			name = ?, headline = ?, education = ?, graduation_year = ?, location = ?,
			skills = ?, linkedin = ?, github = ?, portfolio = ?, email_notifications = ?,
			updated_at = ?
		WHERE id = ?`,
		u.Name, u.Headline, u.Education, u.GraduationYear, u.Location,
		string(skills), u.LinkedIn, u.GitHub, u.Portfolio, u.EmailNotifications,
		formatTime(u.UpdatedAt), u.ID)
	if err != nil {
		return fmt.Errorf("store: update user: %w", err)
	}
	return expectOneRow(res)
}

// ListUsers returns every user ordered by creation time.
func (db *DB) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := db.conn.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("store: list users: %w", err)
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *u)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(s scanner) (*models.User, error) {
	var (
		u                    models.User
		skills               string
		createdAt, updatedAt string
	)
	err := s.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash, &u.Headline, &u.Education,
		&u.GraduationYear, &u.Location, &skills, &u.LinkedIn, &u.GitHub, &u.Portfolio,
		&u.EmailNotifications, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: scan user: %w", err)
	}
	if err := json.Unmarshal([]byte(skills), &u.Skills); err != nil {
		return nil, fmt.Errorf("store: decode skills: %w", err)
	}
	if u.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if u.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	u.Skills = nonNil(u.Skills)
	return &u, nil
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("store: rows affected: %w", err)
	}
	if n == 0 {
		return apperr.ErrNotFound
	}
	return nil
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
