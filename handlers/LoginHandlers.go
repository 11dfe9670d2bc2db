package handlers

import (
	"net/http"
	"time"

	"labquote/config"
	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

const refreshTokenCookie = "refresh_token"

func setAuthCookies(c *gin.Context, cfg config.Auth, res *models.LoginResponse) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(middleware.AccessTokenCookie, res.AccessToken, int(cfg.AccessTTL/time.Second), "/", "", cfg.SecureCookies, true)
	c.SetCookie(refreshTokenCookie, res.RefreshToken, int(cfg.RefreshTTL/time.Second), "/api", "", cfg.SecureCookies, true)
}

func clearAuthCookies(c *gin.Context, cfg config.Auth) {
	c.SetCookie(middleware.AccessTokenCookie, "", -1, "/", "", cfg.SecureCookies, true)
	c.SetCookie(refreshTokenCookie, "", -1, "/api", "", cfg.SecureCookies, true)
}

// LoginHandler handles user authentication
// @Summary Login user
// @Description Authenticate with email and password. Returns an access token and a refresh token bound to a new session; both are also set as cookies.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/login [post]
func LoginHandler(auth *services.AuthService, cfg config.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		res, err := auth.Login(ctx, req.Email, req.Password, c.ClientIP(), c.Request.UserAgent())
		switch statusFor(err) {
		case http.StatusUnauthorized:
			utils.ErrorResponse(c, "Invalid credentials", http.StatusUnauthorized)
			return
		case http.StatusForbidden:
			utils.ErrorResponse(c, "Account is suspended", http.StatusForbidden)
			return
		}
		if err != nil {
			respondError(c, err)
			return
		}
		setAuthCookies(c, cfg, res)
		c.JSON(http.StatusOK, res)
	}
}

// RefreshTokenHandler issues a new access token
// @Summary Refresh access token
// @Description Exchange a refresh token (body or refresh_token cookie) for a new access token. The refresh token is rotated.
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RefreshTokenRequest false "Refresh token"
// @Success 200 {object} models.LoginResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/refresh-token [post]
func RefreshTokenHandler(auth *services.AuthService, cfg config.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.RefreshTokenRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			req.RefreshToken, _ = c.Cookie(refreshTokenCookie)
		}
		if req.RefreshToken == "" {
			utils.ErrorResponse(c, "refresh_token is required", http.StatusBadRequest)
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		res, err := auth.Refresh(ctx, req.RefreshToken)
		if err != nil {
			respondError(c, err)
			return
		}
		setAuthCookies(c, cfg, res)
		c.JSON(http.StatusOK, res)
	}
}

// LogoutHandler ends the current session
// @Summary Logout
// @Description Delete the session behind the access token and clear auth cookies.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MessageResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/logout [post]
func LogoutHandler(auth *services.AuthService, cfg config.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		if err := auth.Logout(ctx, middleware.SessionFrom(c), middleware.ActorFrom(c).UserID); err != nil {
			respondError(c, err)
			return
		}
		clearAuthCookies(c, cfg)
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Logged out successfully"})
	}
}

// MeHandler returns the signed-in user
// @Summary Current user
// @Description Return the authenticated user and their open sessions.
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.MeResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /api/me [get]
func MeHandler(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := middleware.UserFrom(c)
		if user == nil {
			utils.ErrorResponse(c, "Not signed in", http.StatusUnauthorized)
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		sessions, err := auth.Sessions(ctx, user.ID)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MeResponse{User: *user, Sessions: sessions})
	}
}
