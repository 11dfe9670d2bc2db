package services

import (
	"testing"
	"time"

	"labquote/models"
	"labquote/storage"
	"labquote/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuth(t *testing.T, fx *fixture, allowMultiple bool) *AuthService {
	t.Helper()
	tokens := utils.NewTokens("0123456789abcdef0123456789abcdef", 15*time.Minute, 360*time.Hour)
	return NewAuthService(fx.db, fx.users, storage.NewSessions(fx.db), tokens, allowMultiple)
}

func TestAuthLoginRefreshLogout(t *testing.T) {
	fx := newFixture(t)
	auth := newAuth(t, fx, true)

	_, err := auth.Login(fx.ctx, "minji@example.com", "wrong-password", "127.0.0.1", "test")
	require.ErrorIs(t, err, ErrUnauthorized)
	_, err = auth.Login(fx.ctx, "nobody@example.com", "password123", "127.0.0.1", "test")
	require.ErrorIs(t, err, ErrUnauthorized)

	res, err := auth.Login(fx.ctx, " MINJI@example.com", "password123", "127.0.0.1", "test")
	require.NoError(t, err)
	assert.Equal(t, "MK", res.User.UserCode)
	assert.NotEmpty(t, res.SessionID)

	user, claims, err := auth.Authenticate(fx.ctx, res.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, fx.sales.UserID, user.ID)
	assert.Equal(t, res.SessionID, claims.SessionID)

	_, _, err = auth.Authenticate(fx.ctx, res.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized, "refresh tokens are not access tokens")

	refreshed, err := auth.Refresh(fx.ctx, res.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, res.SessionID, refreshed.SessionID)

	sessions, err := auth.Sessions(fx.ctx, user.ID)
	require.NoError(t, err)
	assert.Len(t, sessions, 1)

	require.NoError(t, auth.Logout(fx.ctx, res.SessionID, user.ID))
	_, _, err = auth.Authenticate(fx.ctx, refreshed.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized, "logout ends the session immediately")
	_, err = auth.Refresh(fx.ctx, refreshed.RefreshToken)
	require.ErrorIs(t, err, ErrUnauthorized)
	require.NoError(t, auth.Logout(fx.ctx, res.SessionID, user.ID), "logout is idempotent")
}

func TestAuthSingleSession(t *testing.T) {
	fx := newFixture(t)
	auth := newAuth(t, fx, false)

	first, err := auth.Login(fx.ctx, "minji@example.com", "password123", "", "")
	require.NoError(t, err)
	second, err := auth.Login(fx.ctx, "minji@example.com", "password123", "", "")
	require.NoError(t, err)

	_, err = auth.ValidateSession(fx.ctx, first.SessionID)
	require.ErrorIs(t, err, ErrUnauthorized)
	u, err := auth.ValidateSession(fx.ctx, second.SessionID)
	require.NoError(t, err)
	assert.Equal(t, fx.sales.UserID, u.ID)
}

func TestAuthSuspended(t *testing.T) {
	fx := newFixture(t)
	auth := newAuth(t, fx, true)

	res, err := auth.Login(fx.ctx, "minji@example.com", "password123", "", "")
	require.NoError(t, err)

	require.ErrorIs(t, fx.users.SetSuspended(fx.ctx, fx.admin, fx.admin.UserID, true), ErrValidation)
	require.NoError(t, fx.users.SetSuspended(fx.ctx, fx.admin, fx.sales.UserID, true))

	_, _, err = auth.Authenticate(fx.ctx, res.AccessToken)
	require.ErrorIs(t, err, ErrUnauthorized, "suspension deletes sessions")
	_, err = auth.Login(fx.ctx, "minji@example.com", "password123", "", "")
	require.ErrorIs(t, err, ErrForbidden)

	require.NoError(t, fx.users.SetSuspended(fx.ctx, fx.admin, fx.sales.UserID, false))
	_, err = auth.Login(fx.ctx, "minji@example.com", "password123", "", "")
	require.NoError(t, err)
}

func TestUserService(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.users.Create(fx.ctx, fx.admin, models.UserRequest{Email: "dup@example.com", Password: "password123", Name: "Dup", UserCode: "mk"})
	require.ErrorIs(t, err, ErrConflict, "user codes are unique")

	tests := []struct {
		name string
		req  models.UserRequest
	}{
		{"bad email", models.UserRequest{Email: "nope", Password: "password123", Name: "N", UserCode: "NN"}},
		{"short password", models.UserRequest{Email: "n@example.com", Password: "short", Name: "N", UserCode: "NN"}},
		{"bad code", models.UserRequest{Email: "n@example.com", Password: "password123", Name: "N", UserCode: "N1"}},
		{"bad role", models.UserRequest{Email: "n@example.com", Password: "password123", Name: "N", UserCode: "NN", Role: "owner"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := fx.users.Create(fx.ctx, fx.admin, tt.req)
			require.ErrorIs(t, err, ErrValidation)
		})
	}

	fx.createQuotation(t, fx.sales)
	_, err = fx.users.Update(fx.ctx, fx.admin, fx.sales.UserID, models.UserRequest{
		Email: "minji@example.com", Name: "Kim Minji", UserCode: "KM", Role: models.RoleSales,
	})
	require.ErrorIs(t, err, ErrValidation, "user code is frozen once quotations exist")

	u, err := fx.users.Update(fx.ctx, fx.admin, fx.sales.UserID, models.UserRequest{
		Email: "minji@example.com", Name: "Kim Minji", UserCode: "MK", Role: models.RoleSales, Phone: "010-1234-5678",
	})
	require.NoError(t, err)
	assert.Equal(t, "Kim Minji", u.Name)

	users, total, err := fx.users.List(fx.ctx, "minji", 1, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Len(t, users, 1)

	_, created, err := fx.users.EnsureAdmin(fx.ctx, models.UserRequest{Email: "root@example.com", Password: "password123", Name: "Root", UserCode: "RT"})
	require.NoError(t, err)
	assert.False(t, created, "users already exist")
}

func TestEnsureAdmin(t *testing.T) {
	db := newTestDB(t)
	users := NewUserService(db)
	req := models.UserRequest{Email: "root@example.com", Password: "password123", Name: "Root", UserCode: "RT"}

	u, created, err := users.EnsureAdmin(t.Context(), req)
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, models.RoleAdmin, u.Role)

	_, created, err = users.EnsureAdmin(t.Context(), req)
	require.NoError(t, err)
	assert.False(t, created)
}
