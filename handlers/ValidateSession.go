package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ValidateSession validates user session
// @Summary Validate session
// @Description Check that the access token is valid, its session is open and the user is not suspended.
// @Tags Authentication
// @Produce json
// @Param Authorization header string true "Bearer token"
// @Success 200 {object} models.ValidateSessionResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/validate-session [post]
func ValidateSession(auth *services.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := middleware.BearerToken(c)
		if token == "" {
			utils.ErrorResponse(c, "Missing Authorization header", http.StatusBadRequest)
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		user, claims, err := auth.Authenticate(ctx, token)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.ValidateSessionResponse{
			Valid:     true,
			SessionID: claims.SessionID,
			User:      *user,
		})
	}
}
