package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict), errors.Is(err, services.ErrInvalidTransition):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err as {"error": ...}. Internal errors are logged by
// the request logger and not echoed to the client.
func respondError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
		utils.ErrorResponse(c, "Internal server error", status)
		return
	}
	utils.ErrorResponse(c, err.Error(), status)
}

// bindJSON decodes the body into dest or answers 400.
func bindJSON(c *gin.Context, dest interface{}) bool {
	if err := c.ShouldBindJSON(dest); err != nil {
		utils.ErrorResponse(c, "Invalid input: "+err.Error(), http.StatusBadRequest)
		return false
	}
	return true
}

// idParam reads the :id path parameter or answers 400.
func idParam(c *gin.Context, name string) (uint, bool) {
	id, ok := utils.ParseUintParam(c, name)
	if !ok {
		utils.ErrorResponse(c, "Invalid "+name, http.StatusBadRequest)
	}
	return id, ok
}

func respondPage(c *gin.Context, data interface{}, total int64, p utils.Pagination) {
	c.JSON(http.StatusOK, models.PageResponse{
		Data:     data,
		Total:    total,
		Page:     p.Page,
		PageSize: p.PageSize,
	})
}

func deleted(c *gin.Context, what string) {
	c.JSON(http.StatusOK, models.MessageResponse{Message: what + " deleted successfully"})
}

// queryBool parses an optional true/false query parameter.
func queryBool(c *gin.Context, name string) *bool {
	v, err := strconv.ParseBool(c.Query(name))
	if err != nil {
		return nil
	}
	return &v
}

// queryDate parses an optional YYYY-MM-DD query parameter.
func queryDate(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		utils.ErrorResponse(c, "Invalid "+name+", expected YYYY-MM-DD", http.StatusBadRequest)
		return nil, false
	}
	return &t, true
}

func attachment(c *gin.Context, filename, contentType string) {
	c.Header("Content-Type", contentType)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
}
