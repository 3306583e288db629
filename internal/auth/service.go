// Package auth handles accounts: signup, login, bearer tokens and profiles.
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jobtrackr/jobtrackr/internal/apperr"
	"github.com/jobtrackr/jobtrackr/internal/models"
	"github.com/jobtrackr/jobtrackr/internal/store"
)

// DefaultTokenTTL matches the lifetime of tokens issued by the web client's backend.
const DefaultTokenTTL = 7 * 24 * time.Hour

var (
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrInvalidToken covers malformed, forged and expired tokens.
	ErrInvalidToken = fmt.Errorf("invalid token: %w", apperr.ErrUnauthorized)
	// ErrUnknownUser is returned when a valid token names a user that no longer exists.
	ErrUnknownUser = fmt.Errorf("user not found: %w", apperr.ErrUnauthorized)
)

// Session is what signup and login hand back to the client.
type Session struct {
	User  models.UserSummary `json:"user"`
	Token string             `json:"token"`
}

// SignupInput is the signup payload.
type SignupInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (in SignupInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Email, validation.Required, is.EmailFormat),
		validation.Field(&in.Password, validation.Required, validation.Length(6, 72)),
	)
}

// LoginInput is the login payload.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate implements validation.Validatable.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// Service implements account operations.
type Service struct {
	users      store.UserStore
	tokens     *Tokens
	bcryptCost int
	now        func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the time source used for timestamps and token expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithBcryptCost sets the password hashing cost.
func WithBcryptCost(cost int) Option {
	return func(s *Service) { s.bcryptCost = cost }
}

// NewService creates an account service signing tokens with secret.
func NewService(users store.UserStore, secret string, ttl time.Duration, opts ...Option) *Service {
	s := &Service{
		users:      users,
		bcryptCost: bcrypt.DefaultCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	s.tokens = NewTokens(secret, ttl, s.now)
	return s
}

// Signup creates an account and returns a session for it.
func (s *Service) Signup(ctx context.Context, in SignupInput) (*Session, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("auth: hash password: %w", err)
	}
	now := s.now().UTC()
	u := &models.User{
		ID:                 uuid.NewString(),
		Name:               in.Name,
		Email:              in.Email,
		PasswordHash:       string(hash),
		Skills:             []string{},
		EmailNotifications: true,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if err := s.users.CreateUser(ctx, u); err != nil {
		return nil, err
	}
	return s.session(u)
}

// Login checks credentials and returns a fresh session.
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	u, err := s.users.GetUserByEmail(ctx, in.Email)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(in.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.session(u)
}

// Authenticate resolves a bearer token to the id of an existing user.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	userID, err := s.tokens.Verify(token)
	if err != nil {
		return "", err
	}
	if _, err := s.users.GetUser(ctx, userID); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return "", ErrUnknownUser
		}
		return "", err
	}
	return userID, nil
}

// Profile returns the user's full profile.
func (s *Service) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.users.GetUser(ctx, userID)
}

// UserByEmail looks a user up by email.
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetUserByEmail(ctx, normalizeEmail(email))
}

// UpdateProfile applies p to the user's profile and settings.
func (s *Service) UpdateProfile(ctx context.Context, userID string, p ProfilePatch) (*models.User, error) {
	p.normalize()
	if err := p.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %w", apperr.ErrValidation, err)
	}
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	p.apply(u)
	u.UpdatedAt = s.now().UTC()
	if err := s.users.UpdateUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) session(u *models.User) (*Session, error) {
	token, err := s.tokens.Issue(u.ID)
	if err != nil {
		return nil, err
	}
	return &Session{User: u.Summary(), Token: token}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
