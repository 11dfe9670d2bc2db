// Package middleware holds the gin middleware shared by every /api route.
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// Context keys set by Auth.
const (
	KeyUser      = "user"
	KeyUserID    = "user_id"
	KeySessionID = "session_id"
	KeyActor     = "actor"
)

// AccessTokenCookie is the cookie checked when no Authorization header is sent.
const AccessTokenCookie = "access_token"

// BearerToken returns the access token from the Authorization header or the
// access_token cookie.
func BearerToken(c *gin.Context) string {
	if h := strings.TrimSpace(c.GetHeader("Authorization")); h != "" {
		return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
	}
	if v, err := c.Cookie(AccessTokenCookie); err == nil {
		return strings.TrimSpace(v)
	}
	return ""
}

// Auth resolves the access token to a user and stores the acting user in
// the context. Missing or stale tokens get 401, suspended users 403.
func Auth(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := BearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, "Missing access token", http.StatusUnauthorized)
			return
		}

		user, claims, err := auth.Authenticate(c.Request.Context(), token)
		switch {
		case errors.Is(err, services.ErrForbidden):
			utils.ErrorResponse(c, "Account is suspended", http.StatusForbidden)
			return
		case errors.Is(err, services.ErrUnauthorized):
			utils.ErrorResponse(c, "Invalid or expired token", http.StatusUnauthorized)
			return
		case err != nil:
			_ = c.Error(err)
			utils.ErrorResponse(c, "Failed to validate session", http.StatusInternalServerError)
			return
		}

		c.Set(KeyUser, user)
		c.Set(KeyUserID, user.ID)
		c.Set(KeySessionID, claims.SessionID)
		c.Set(KeyActor, services.Actor{
			UserID:    user.ID,
			Name:      user.Name,
			Role:      user.Role,
			IPAddress: c.ClientIP(),
		})
		c.Next()
	}
}

// ActorFrom returns the acting user set by Auth.
func ActorFrom(c *gin.Context) services.Actor {
	if v, ok := c.Get(KeyActor); ok {
		if a, ok := v.(services.Actor); ok {
			return a
		}
	}
	return services.Actor{IPAddress: c.ClientIP()}
}

// UserFrom returns the authenticated user, or nil outside Auth.
func UserFrom(c *gin.Context) *models.User {
	if v, ok := c.Get(KeyUser); ok {
		if u, ok := v.(*models.User); ok {
			return u
		}
	}
	return nil
}

// SessionFrom returns the session id carried in the access token.
func SessionFrom(c *gin.Context) string {
	return c.GetString(KeySessionID)
}

// RequireRole lets through only the listed roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := ActorFrom(c)
		for _, r := range roles {
			if actor.Role == r {
				c.Next()
				return
			}
		}
		utils.ErrorResponse(c, "Insufficient permissions", http.StatusForbidden)
	}
}

// ReadOnlyViewers rejects mutating requests from viewers.
func ReadOnlyViewers() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		if ActorFrom(c).Role == models.RoleViewer {
			utils.ErrorResponse(c, "Viewers have read-only access", http.StatusForbidden)
			return
		}
		c.Next()
	}
}
