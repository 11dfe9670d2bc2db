package handlers

import (
	"net/http"
	"strconv"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ListAnnouncements lists announcements
// @Summary List announcements
// @Description With active=true, only published and unexpired notices, pinned first.
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param active query bool false "Only active notices"
// @Param limit query int false "Maximum active notices" default(20)
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Announcement}
// @Router /api/announcements [get]
func ListAnnouncements(announcements *services.AnnouncementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if active := queryBool(c, "active"); active != nil && *active {
			limit, _ := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(utils.DefaultPageSize)))
			list, err := announcements.Active(ctx, limit)
			if err != nil {
				respondError(c, err)
				return
			}
			c.JSON(http.StatusOK, models.PageResponse{Data: list, Total: int64(len(list)), Page: 1, PageSize: len(list)})
			return
		}

		p := utils.GetPagination(c)
		list, total, err := announcements.List(ctx, p.Page, p.PageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateAnnouncement posts a notice
// @Summary Create announcement
// @Description Admin only. published_at defaults to now.
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Announcement true "Announcement"
// @Success 201 {object} models.Announcement
// @Failure 400 {object} models.ErrorResponse
// @Router /api/announcements [post]
func CreateAnnouncement(announcements *services.AnnouncementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.Announcement
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		a, err := announcements.Create(ctx, middleware.ActorFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, a)
	}
}

// GetAnnouncement returns one notice
// @Summary Get announcement
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} models.Announcement
// @Failure 404 {object} models.ErrorResponse
// @Router /api/announcements/{id} [get]
func GetAnnouncement(announcements *services.AnnouncementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		a, err := announcements.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// UpdateAnnouncement edits a notice
// @Summary Update announcement
// @Description Admin only.
// @Tags Announcements
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Param request body models.Announcement true "Announcement"
// @Success 200 {object} models.Announcement
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/announcements/{id} [put]
func UpdateAnnouncement(announcements *services.AnnouncementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.Announcement
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		a, err := announcements.Update(ctx, middleware.ActorFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, a)
	}
}

// DeleteAnnouncement removes a notice
// @Summary Delete announcement
// @Description Admin only.
// @Tags Announcements
// @Produce json
// @Security BearerAuth
// @Param id path int true "Announcement ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/announcements/{id} [delete]
func DeleteAnnouncement(announcements *services.AnnouncementService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := announcements.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Announcement")
	}
}
