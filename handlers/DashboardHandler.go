package handlers

import (
	"net/http"
	"strconv"

	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// GetDashboard returns the landing-page overview
// @Summary Dashboard summary
// @Description Quotation counts by status, won amount this year, win rate (won / (won + lost)), active contracts, open leads, urgent items and active announcements.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.DashboardSummary
// @Failure 500 {object} models.ErrorResponse
// @Router /api/dashboard [get]
func GetDashboard(dashboard *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		summary, err := dashboard.Summary(ctx)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, summary)
	}
}

// GetUrgentItems lists quotations and follow-ups due soon
// @Summary Urgent items
// @Description Submitted quotations whose validity ends within the horizon and open consultation follow-ups, overdue first.
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum items (0 uses the configured limit)"
// @Success 200 {array} models.UrgentItem
// @Router /api/dashboard/urgent [get]
func GetUrgentItems(dashboard *services.DashboardService) gin.HandlerFunc {
	return func(c *gin.Context) {
		limit, err := strconv.Atoi(c.DefaultQuery("limit", "0"))
		if err != nil || limit < 0 {
			utils.ErrorResponse(c, "Invalid limit", http.StatusBadRequest)
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		items, err := dashboard.Urgent(ctx, limit)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, items)
	}
}
