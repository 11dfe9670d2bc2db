package utils

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestTokens_roundTrip(t *testing.T) {
	tok := NewTokens("0123456789abcdef", 15*time.Minute, 360*time.Hour)

	access, err := tok.GenerateJWT(7, "a@example.com", "sales", "sess-1")
	require.NoError(t, err)
	claims, err := tok.ValidateJWT(access, TokenTypeAccess)
	require.NoError(t, err)
	require.Equal(t, uint(7), claims.UserID)
	require.Equal(t, "sales", claims.Role)
	require.Equal(t, "sess-1", claims.SessionID)

	_, err = tok.ValidateJWT(access, TokenTypeRefresh)
	require.ErrorIs(t, err, ErrWrongTokenType)

	refresh, expires, err := tok.GenerateRefreshToken(7, "a@example.com", "sess-1")
	require.NoError(t, err)
	require.WithinDuration(t, time.Now().Add(360*time.Hour), expires, time.Minute)
	claims, err = tok.ValidateJWT(refresh, TokenTypeRefresh)
	require.NoError(t, err)
	require.Equal(t, "sess-1", claims.SessionID)
}

func TestTokens_uniqueWithinOneInstant(t *testing.T) {
	tok := NewTokens("0123456789abcdef", 15*time.Minute, 360*time.Hour)
	fixed := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tok.now = func() time.Time { return fixed }

	a, _, err := tok.GenerateRefreshToken(7, "a@example.com", "sess-1")
	require.NoError(t, err)
	b, _, err := tok.GenerateRefreshToken(7, "a@example.com", "sess-1")
	require.NoError(t, err)
	require.NotEqual(t, a, b, "rotation must invalidate the previous refresh token")
}

func TestTokens_rejects(t *testing.T) {
	tok := NewTokens("0123456789abcdef", 15*time.Minute, time.Hour)
	access, err := tok.GenerateJWT(1, "a@example.com", "admin", "sess-2")
	require.NoError(t, err)

	other := NewTokens("fedcba9876543210", 15*time.Minute, time.Hour)
	_, err = other.ValidateJWT(access, TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	tok.now = func() time.Time { return time.Now().Add(time.Hour) }
	_, err = tok.ValidateJWT(access, TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	none := jwt.NewWithClaims(jwt.SigningMethodNone, Claims{Type: TokenTypeAccess})
	unsigned, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = NewTokens("0123456789abcdef", time.Minute, time.Hour).ValidateJWT(unsigned, TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)

	_, err = tok.ValidateJWT("garbage", TokenTypeAccess)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestPasswords(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	hash, err := HashPassword("s3cret!")
	require.NoError(t, err)
	require.True(t, ValidatePassword(hash, "s3cret!"))
	require.False(t, ValidatePassword(hash, "wrong"))
}

func TestGetPagination(t *testing.T) {
	gin.SetMode(gin.TestMode)
	tests := []struct {
		query string
		want  Pagination
	}{
		{query: "", want: Pagination{Page: 1, PageSize: DefaultPageSize}},
		{query: "page=3&page_size=50", want: Pagination{Page: 3, PageSize: 50}},
		{query: "page=-2&page_size=100000", want: Pagination{Page: 1, PageSize: MaxPageSize}},
		{query: "page=abc", want: Pagination{Page: 1, PageSize: DefaultPageSize}},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
			require.Equal(t, tt.want, GetPagination(c))
		})
	}
	require.Equal(t, 40, Pagination{Page: 3, PageSize: 20}.Offset())
}

func TestGetQueryContext(t *testing.T) {
	ctx, cancel := GetFastQueryContext(context.Background())
	defer cancel()
	deadline, ok := ctx.Deadline()
	require.True(t, ok)
	require.WithinDuration(t, time.Now().Add(FastQueryTimeout), deadline, time.Second)
}
