package models

import "time"

// User is an account holder. PasswordHash never leaves the server.
type User struct {
	ID                 string    `json:"_id"`
	Name               string    `json:"name"`
	Email              string    `json:"email"`
	PasswordHash       string    `json:"-"`
	Headline           string    `json:"headline"`
	Education          string    `json:"education"`
	GraduationYear     string    `json:"graduationYear"`
	Location           string    `json:"location"`
	Skills             []string  `json:"skills"`
	LinkedIn           string    `json:"linkedin"`
	GitHub             string    `json:"github"`
	Portfolio          string    `json:"portfolio"`
	EmailNotifications bool      `json:"emailNotifications"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// UserSummary is the short form returned by signup and login.
type UserSummary struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Summary returns the short form of u.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Name: u.Name, Email: u.Email}
}
