package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ListLeads lists sales leads
// @Summary List leads
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param stage query string false "Stage"
// @Param source query string false "Source"
// @Param assigned_to query int false "Assigned user ID"
// @Param open query bool false "Only leads that are neither converted nor lost"
// @Param q query string false "Search text"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Lead}
// @Router /api/leads [get]
func ListLeads(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPagination(c)
		f := services.LeadFilter{
			Stage:      c.Query("stage"),
			Source:     c.Query("source"),
			AssignedTo: utils.ParseUintQuery(c, "assigned_to"),
			Query:      c.Query("q"),
			Page:       p.Page,
			PageSize:   p.PageSize,
		}
		if open := queryBool(c, "open"); open != nil {
			f.Open = *open
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := leads.List(ctx, f)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateLead records a new prospect
// @Summary Create lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Lead true "Lead"
// @Success 201 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Router /api/leads [post]
func CreateLead(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.Lead
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		lead, err := leads.Create(ctx, middleware.ActorFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, lead)
	}
}

// GetLead returns one lead
// @Summary Get lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} models.Lead
// @Failure 404 {object} models.ErrorResponse
// @Router /api/leads/{id} [get]
func GetLead(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		lead, err := leads.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lead)
	}
}

// UpdateLead edits a lead
// @Summary Update lead
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body models.Lead true "Lead"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/leads/{id} [put]
func UpdateLead(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.Lead
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		lead, err := leads.Update(ctx, middleware.ActorFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lead)
	}
}

// ChangeLeadStage moves a lead through the pipeline
// @Summary Change lead stage
// @Tags Leads
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Param request body models.StageRequest true "Stage"
// @Success 200 {object} models.Lead
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/leads/{id}/stage [put]
func ChangeLeadStage(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.StageRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		lead, err := leads.ChangeStage(ctx, middleware.ActorFrom(c), id, req.Stage)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, lead)
	}
}

// ConvertLead turns a lead into a customer
// @Summary Convert lead
// @Description Creates a customer (and a requester from the lead contact) and marks the lead converted.
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 201 {object} models.Customer
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/leads/{id}/convert [post]
func ConvertLead(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		customer, err := leads.Convert(ctx, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

// DeleteLead removes a lead
// @Summary Delete lead
// @Tags Leads
// @Produce json
// @Security BearerAuth
// @Param id path int true "Lead ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/leads/{id} [delete]
func DeleteLead(leads *services.LeadService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := leads.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Lead")
	}
}
