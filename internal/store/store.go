package store

import (
	"context"

	"github.com/jobtrackr/jobtrackr/internal/models"
)

// ListFilter narrows an application listing.
type ListFilter struct {
	// Status filters by exact status; empty or "All" means no filter.
	Status string
	// Search is a case-insensitive substring matched against company or position.
	Search string
}

// ApplicationStore persists applications. Every method except
// CreateApplication and ListApplications is scoped to the owning user and
// returns apperr.ErrNotFound when the record is absent or owned by someone else.
type ApplicationStore interface {
	CreateApplication(ctx context.Context, app *models.Application) error
	GetApplication(ctx context.Context, userID, id string) (*models.Application, error)
	ListApplications(ctx context.Context, userID string, f ListFilter) ([]models.Application, error)
	MutateApplication(ctx context.Context, userID, id string, fn func(*models.Application) error) (*models.Application, error)
	DeleteApplication(ctx context.Context, userID, id string) error
}

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUser(ctx context.Context, id string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	ListUsers(ctx context.Context) ([]models.User, error)
}

// Verify *DB satisfies both interfaces at compile time.
var (
	_ ApplicationStore = (*DB)(nil)
	_ UserStore        = (*DB)(nil)
)
