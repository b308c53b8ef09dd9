package auth

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docket-th/docket/internal/shared"
)

type mockRepository struct {
	nextID int64
	users  map[int64]*User
}

func newMockRepository() *mockRepository {
	return &mockRepository{users: make(map[int64]*User)}
}

func (m *mockRepository) FindByEmail(_ context.Context, email string) (*User, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (m *mockRepository) FindByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, shared.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *mockRepository) Create(_ context.Context, user User) (int64, error) {
	for _, u := range m.users {
		if strings.EqualFold(u.Email, user.Email) {
			return 0, shared.ErrConflict
		}
	}
	m.nextID++
	user.ID = m.nextID
	user.IsActive = true
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	m.users[user.ID] = &user
	return user.ID, nil
}

func newTestService() (*Service, *mockRepository) {
	repo := newMockRepository()
	return NewService(repo, "test-secret", time.Hour), repo
}

func TestRegisterAndAuthenticate(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{
		Email: "owner@docket.test", FullName: "Shop Owner", Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.True(t, user.IsActive)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "s3cret-pass", user.PasswordHash)

	resp, err := svc.Authenticate(ctx, LoginRequest{Email: "owner@docket.test", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)
	assert.True(t, resp.ExpiresAt.After(time.Now()))

	identity, err := svc.VerifyToken(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, identity.UserID)
	assert.Equal(t, user.Email, identity.Email)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@docket.test", FullName: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterRequest{Email: "A@docket.test", FullName: "A2", Password: "password2"})
	assert.ErrorIs(t, err, shared.ErrConflict)
}

func TestAuthenticateRejectsBadCredentials(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterRequest{Email: "a@docket.test", FullName: "A", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.Authenticate(ctx, LoginRequest{Email: "a@docket.test", Password: "wrong"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	_, err = svc.Authenticate(ctx, LoginRequest{Email: "nobody@docket.test", Password: "password1"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials)

	repo.users[user.ID].IsActive = false
	_, err = svc.Authenticate(ctx, LoginRequest{Email: "a@docket.test", Password: "password1"})
	assert.ErrorIs(t, err, shared.ErrInvalidCredentials, "deactivated account must not sign in")
}

func TestVerifyTokenRejectsTampering(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@docket.test", FullName: "A", Password: "password1"})
	require.NoError(t, err)
	resp, err := svc.Authenticate(ctx, LoginRequest{Email: "a@docket.test", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(resp.Token + "x")
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)

	other := NewService(newMockRepository(), "another-secret", time.Hour)
	_, err = other.VerifyToken(resp.Token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated, "token signed with a different secret")
}

func TestExpiredTokenIsRejected(t *testing.T) {
	repo := newMockRepository()
	svc := NewService(repo, "test-secret", -time.Minute)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterRequest{Email: "a@docket.test", FullName: "A", Password: "password1"})
	require.NoError(t, err)
	resp, err := svc.Authenticate(ctx, LoginRequest{Email: "a@docket.test", Password: "password1"})
	require.NoError(t, err)

	_, err = svc.VerifyToken(resp.Token)
	assert.ErrorIs(t, err, shared.ErrUnauthenticated)
}
