// Package auth implements the credential boundary: registration, sign-in
// with typed failures, JWT session tokens, and request middleware.
package auth

import (
	"context"
	"errors"
	"regexp"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"timeclock/internal/users"
)

// Typed sign-in / sign-up failures. Handlers map these to a fixed set of
// user-facing messages.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrWrongPassword   = errors.New("wrong password")
	ErrInvalidEmail    = errors.New("invalid email")
	ErrTooManyRequests = errors.New("too many failed attempts")
	ErrEmailInUse      = errors.New("email already in use")
	ErrWeakPassword    = errors.New("weak password")
	ErrNameRequired    = errors.New("name required")
)

// MinPasswordLen mirrors the provider's weak-password threshold.
const MinPasswordLen = 6

var emailRx = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

// UserStore is the slice of the users repository the service needs.
type UserStore interface {
	Create(ctx context.Context, u users.User) (users.User, error)
	GetByEmail(ctx context.Context, email string) (users.User, error)
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
}

// Throttle limits repeated sign-in failures per email.
type Throttle interface {
	TooManyFailures(ctx context.Context, email string) (bool, error)
	RecordFailure(ctx context.Context, email string) error
	ClearFailures(ctx context.Context, email string) error
}

// Service checks credentials against the user store.
type Service struct {
	store    UserStore
	throttle Throttle
	log      *zap.Logger
}

// NewService creates the auth service.
func NewService(store UserStore, throttle Throttle, log *zap.Logger) *Service {
	return &Service{store: store, throttle: throttle, log: log}
}

// SignUp registers a new account with the user role.
func (s *Service) SignUp(ctx context.Context, name, email, password string) (users.User, error) {
	if name == "" {
		return users.User{}, ErrNameRequired
	}
	if !emailRx.MatchString(email) {
		return users.User{}, ErrInvalidEmail
	}
	if len(password) < MinPasswordLen {
		return users.User{}, ErrWeakPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return users.User{}, err
	}
	u, err := s.store.Create(ctx, users.User{
		Email:        email,
		Name:         name,
		Role:         users.RoleUser,
		PasswordHash: string(hash),
	})
	if errors.Is(err, users.ErrDuplicateEmail) {
		return users.User{}, ErrEmailInUse
	}
	if err != nil {
		return users.User{}, err
	}
	s.log.Info("user registered", zap.String("email", email), zap.String("id", u.ID.String()))
	return u, nil
}

// SignIn verifies credentials and stamps last_login. Failures are counted
// per email; past the threshold every attempt fails with ErrTooManyRequests
// until the window expires.
func (s *Service) SignIn(ctx context.Context, email, password string) (users.User, error) {
	if !emailRx.MatchString(email) {
		return users.User{}, ErrInvalidEmail
	}
	if locked, err := s.throttle.TooManyFailures(ctx, email); err != nil {
		s.log.Warn("throttle check failed", zap.Error(err))
	} else if locked {
		return users.User{}, ErrTooManyRequests
	}

	u, err := s.store.GetByEmail(ctx, email)
	if errors.Is(err, users.ErrNotFound) {
		_ = s.throttle.RecordFailure(ctx, email)
		return users.User{}, ErrUserNotFound
	}
	if err != nil {
		return users.User{}, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		_ = s.throttle.RecordFailure(ctx, email)
		return users.User{}, ErrWrongPassword
	}

	_ = s.throttle.ClearFailures(ctx, email)
	now := time.Now()
	if err := s.store.TouchLastLogin(ctx, u.ID, now); err != nil {
		s.log.Warn("last_login update failed", zap.Error(err))
	} else {
		u.LastLogin = &now
	}
	return u, nil
}
