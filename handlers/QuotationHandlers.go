package handlers

import (
	"context"
	"net/http"
	"strconv"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// quotationFilter reads the listing filters shared by the list and XLSX export.
func quotationFilter(c *gin.Context) (models.QuotationFilter, bool) {
	p := utils.GetPagination(c)
	f := models.QuotationFilter{
		Status:        c.Query("status"),
		QuotationType: c.Query("quotation_type"),
		CustomerID:    utils.ParseUintQuery(c, "customer_id"),
		CreatedBy:     utils.ParseUintQuery(c, "created_by"),
		Query:         c.Query("q"),
		Page:          p.Page,
		PageSize:      p.PageSize,
	}
	if raw := c.Query("year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil || year < 0 {
			utils.ErrorResponse(c, "Invalid year", http.StatusBadRequest)
			return f, false
		}
		if year < 100 {
			year += 2000
		}
		f.Year = year
	}
	if c.Query("mine") == "true" {
		f.CreatedBy = middleware.ActorFrom(c).UserID
	}
	return f, true
}

// ListQuotations lists quotations
// @Summary List quotations
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(draft, submitted, won, lost, expired)
// @Param quotation_type query string false "Type" Enums(toxicity, efficacy, clinical_pathology)
// @Param customer_id query int false "Customer ID"
// @Param created_by query int false "Issuing user ID"
// @Param mine query bool false "Only my quotations"
// @Param year query int false "Issue year (2025 or 25)"
// @Param q query string false "Search number, title or customer"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Quotation}
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotations [get]
func ListQuotations(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := quotationFilter(c)
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := quotations.List(ctx, f)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, utils.Pagination{Page: f.Page, PageSize: f.PageSize})
	}
}

// CreateQuotation creates a draft
// @Summary Create quotation
// @Description Prices the items against the catalog and allocates the next number YY-UC-TT-NNNN for the signed-in user.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuotationRequest true "Quotation"
// @Success 201 {object} models.Quotation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations [post]
func CreateQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QuotationRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.Create(ctx, middleware.ActorFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

// CalculateQuotation prices items without saving
// @Summary Calculate quotation
// @Description Preview of item amounts, analysis cost, discount, VAT and grand total.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.QuotationRequest true "Quotation"
// @Success 200 {object} pricing.Result
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotations/calculate [post]
func CalculateQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.QuotationRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		res, err := quotations.Calculate(ctx, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

// GetQuotation returns a quotation with items, customer and requester
// @Summary Get quotation
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id} [get]
func GetQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// UpdateQuotation replaces a draft's header and items
// @Summary Update quotation
// @Description Only drafts can be edited; the quotation type is fixed by the number.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Param request body models.QuotationRequest true "Quotation"
// @Success 200 {object} models.Quotation
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id} [put]
func UpdateQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.QuotationRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.Update(ctx, middleware.ActorFrom(c), id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// DeleteQuotation removes a draft
// @Summary Delete quotation
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.MessageResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id} [delete]
func DeleteQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := quotations.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Quotation")
	}
}

// transition wraps a status change that takes no body.
func transition(do func(context.Context, services.Actor, uint) (*models.Quotation, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := do(ctx, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// SubmitQuotation sends a draft to the customer
// @Summary Submit quotation
// @Description draft -> submitted. Requires at least one item and a validity date not in the past.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id}/submit [post]
func SubmitQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return transition(quotations.Submit)
}

// ReviseQuotation reopens a submitted quotation
// @Summary Revise quotation
// @Description submitted -> draft.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id}/revise [post]
func ReviseQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return transition(quotations.Revise)
}

// WinQuotation records an order
// @Summary Mark quotation won
// @Description submitted -> won.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {object} models.Quotation
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id}/win [post]
func WinQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return transition(quotations.Win)
}

// DuplicateQuotation copies a quotation into a new draft
// @Summary Duplicate quotation
// @Description The copy gets a new number under the signed-in user's code.
// @Tags Quotations
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 201 {object} models.Quotation
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/duplicate [post]
func DuplicateQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.Duplicate(ctx, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, q)
	}
}

// LoseQuotation records a lost deal
// @Summary Mark quotation lost
// @Description submitted -> lost. A non-empty reason is required.
// @Tags Quotations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Param request body models.LoseRequest true "Reason"
// @Failure 400 {object} models.ErrorResponse
// @Success 200 {object} models.Quotation
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id}/lose [post]
func LoseQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.LoseRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.Lose(ctx, middleware.ActorFrom(c), id, req.Reason)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, q)
	}
}

// VerifyQuotation is the public page behind the QR code
// @Summary Verify quotation
// @Description Public. Confirms that a printed quotation number was issued and shows its status and total.
// @Tags Quotations
// @Produce json
// @Param number path string true "Quotation number"
// @Success 200 {object} models.QuotationVerification
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /quotations/verify/{number} [get]
func VerifyQuotation(quotations *services.QuotationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		q, err := quotations.GetByNumber(ctx, c.Param("number"))
		if err != nil {
			respondError(c, err)
			return
		}
		v := models.QuotationVerification{
			QuotationNumber: q.QuotationNumber,
			Status:          q.Status,
			IssueDate:       q.IssueDate,
			ValidUntil:      q.ValidUntil,
			GrandTotal:      q.GrandTotal,
		}
		if q.Customer != nil {
			v.CustomerName = q.Customer.CompanyName
		}
		c.JSON(http.StatusOK, v)
	}
}
