package auth

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"timeclock/internal/users"
)

type memUsers struct {
	byEmail map[string]users.User
}

func (m *memUsers) Create(_ context.Context, u users.User) (users.User, error) {
	if _, ok := m.byEmail[u.Email]; ok {
		return users.User{}, users.ErrDuplicateEmail
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.byEmail[u.Email] = u
	return u, nil
}

func (m *memUsers) GetByEmail(_ context.Context, email string) (users.User, error) {
	u, ok := m.byEmail[email]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}

func (m *memUsers) TouchLastLogin(_ context.Context, _ uuid.UUID, _ time.Time) error {
	return nil
}

type memThrottle struct {
	failures map[string]int
	limit    int
}

func (m *memThrottle) TooManyFailures(_ context.Context, email string) (bool, error) {
	return m.failures[email] >= m.limit, nil
}

func (m *memThrottle) RecordFailure(_ context.Context, email string) error {
	m.failures[email]++
	return nil
}

func (m *memThrottle) ClearFailures(_ context.Context, email string) error {
	delete(m.failures, email)
	return nil
}

func newTestAuth() (*Service, *memUsers, *memThrottle) {
	store := &memUsers{byEmail: map[string]users.User{}}
	throttle := &memThrottle{failures: map[string]int{}, limit: 5}
	return NewService(store, throttle, zap.NewNop()), store, throttle
}

func TestSignUpValidation(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "", "a@b.co", "secret1")
	assert.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.SignUp(ctx, "Alice", "not-an-email", "secret1")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignUp(ctx, "Alice", "a@b.co", "short")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestSignUpAndSignIn(t *testing.T) {
	svc, _, _ := newTestAuth()
	ctx := context.Background()

	u, err := svc.SignUp(ctx, "Alice", "alice@example.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, users.RoleUser, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("secret1")))

	_, err = svc.SignUp(ctx, "Alice Again", "alice@example.com", "secret2")
	assert.ErrorIs(t, err, ErrEmailInUse)

	got, err := svc.SignIn(ctx, "alice@example.com", "secret1")
	assert.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)
}

func TestSignInFailures(t *testing.T) {
	svc, _, throttle := newTestAuth()
	ctx := context.Background()

	_, err := svc.SignIn(ctx, "bad email", "whatever")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = svc.SignIn(ctx, "ghost@example.com", "whatever")
	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.Equal(t, 1, throttle.failures["ghost@example.com"])

	_, err = svc.SignUp(ctx, "Bob", "bob@example.com", "secret1")
	assert.NoError(t, err)
	_, err = svc.SignIn(ctx, "bob@example.com", "wrong-pass")
	assert.ErrorIs(t, err, ErrWrongPassword)
}

func TestSignInThrottled(t *testing.T) {
	svc, _, throttle := newTestAuth()
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "Carol", "carol@example.com", "secret1")
	assert.NoError(t, err)

	throttle.failures["carol@example.com"] = 5
	_, err = svc.SignIn(ctx, "carol@example.com", "secret1")
	assert.ErrorIs(t, err, ErrTooManyRequests)

	// A successful sign-in clears the counter.
	throttle.failures["carol@example.com"] = 2
	_, err = svc.SignIn(ctx, "carol@example.com", "secret1")
	assert.NoError(t, err)
	assert.Zero(t, throttle.failures["carol@example.com"])
}
