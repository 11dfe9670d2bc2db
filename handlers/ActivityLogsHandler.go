package handlers

import (
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// GetActivityLogs lists the audit trail
// @Summary Get activity logs
// @Description Admin only. Newest first; from/to bound created_at (to is exclusive).
// @Tags Activity Logs
// @Produce json
// @Security BearerAuth
// @Param user_id query int false "User ID"
// @Param entity_type query string false "Entity type" Enums(user, customer, requester, lead, consultation, catalog, quotation, contract, announcement)
// @Param entity_id query int false "Entity ID"
// @Param q query string false "Search detail or user name"
// @Param from query string false "From date (YYYY-MM-DD)"
// @Param to query string false "To date (YYYY-MM-DD)"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.ActivityLog}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/activity-logs [get]
func GetActivityLogs(activity *services.ActivityService) gin.HandlerFunc {
	return func(c *gin.Context) {
		from, ok := queryDate(c, "from")
		if !ok {
			return
		}
		to, ok := queryDate(c, "to")
		if !ok {
			return
		}
		p := utils.GetPagination(c)
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		logs, total, err := activity.List(ctx, services.ActivityFilter{
			UserID:     utils.ParseUintQuery(c, "user_id"),
			EntityType: c.Query("entity_type"),
			EntityID:   utils.ParseUintQuery(c, "entity_id"),
			Query:      c.Query("q"),
			From:       from,
			To:         to,
			Page:       p.Page,
			PageSize:   p.PageSize,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, logs, total, p)
	}
}
