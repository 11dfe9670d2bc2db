package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ListConsultations lists consultation records
// @Summary List consultations
// @Tags Consultations
// @Produce json
// @Security BearerAuth
// @Param customer_id query int false "Customer ID"
// @Param lead_id query int false "Lead ID"
// @Param user_id query int false "Recorded by"
// @Param pending query bool false "Only records with an open follow-up"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Consultation}
// @Router /api/consultations [get]
func ListConsultations(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPagination(c)
		f := services.ConsultationFilter{
			CustomerID: utils.ParseUintQuery(c, "customer_id"),
			LeadID:     utils.ParseUintQuery(c, "lead_id"),
			UserID:     utils.ParseUintQuery(c, "user_id"),
			Page:       p.Page,
			PageSize:   p.PageSize,
		}
		if pending := queryBool(c, "pending"); pending != nil {
			f.PendingOnly = *pending
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := consultations.List(ctx, f)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateConsultation records a conversation
// @Summary Create consultation
// @Description Either customer_id or lead_id is required.
// @Tags Consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Consultation true "Consultation"
// @Success 201 {object} models.Consultation
// @Failure 400 {object} models.ErrorResponse
// @Router /api/consultations [post]
func CreateConsultation(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.Consultation
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rec, err := consultations.Create(ctx, middleware.ActorFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rec)
	}
}

// GetConsultation returns one record
// @Summary Get consultation
// @Tags Consultations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Success 200 {object} models.Consultation
// @Failure 404 {object} models.ErrorResponse
// @Router /api/consultations/{id} [get]
func GetConsultation(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		rec, err := consultations.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// UpdateConsultation edits a record
// @Summary Update consultation
// @Tags Consultations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Param request body models.Consultation true "Consultation"
// @Success 200 {object} models.Consultation
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/consultations/{id} [put]
func UpdateConsultation(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.Consultation
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rec, err := consultations.Update(ctx, middleware.ActorFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// CompleteFollowUp marks the follow-up of a record done
// @Summary Complete follow-up
// @Tags Consultations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Success 200 {object} models.Consultation
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/consultations/{id}/follow-up-done [post]
func CompleteFollowUp(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		rec, err := consultations.CompleteFollowUp(ctx, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, rec)
	}
}

// DeleteConsultation removes a record
// @Summary Delete consultation
// @Tags Consultations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Consultation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/consultations/{id} [delete]
func DeleteConsultation(consultations *services.ConsultationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := consultations.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Consultation")
	}
}
