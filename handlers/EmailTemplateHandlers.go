package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// SendQuotationEmail mails a quotation summary
// @Summary Send quotation email
// @Description Sends the quotation number, total and validity to the requester or to the given address. Drafts cannot be sent.
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Param request body models.SendQuotationEmailRequest false "Recipient override and note"
// @Success 200 {object} models.MessageResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/quotations/{id}/email [post]
func SendQuotationEmail(quotations *services.QuotationService, email *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.SendQuotationEmailRequest
		if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
			return
		}
		q, ok := loadQuotation(c, quotations)
		if !ok {
			return
		}
		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		if err := email.SendQuotation(ctx, middleware.ActorFrom(c), q, req); err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: "Email sent successfully"})
	}
}

// GetEmailTemplateVariables lists template placeholders
// @Summary Email template variables
// @Tags Email
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.EmailTemplateVariable
// @Router /api/email-templates/variables [get]
func GetEmailTemplateVariables(email *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, email.GetAvailableVariables())
	}
}

// GetDefaultEmailTemplate returns the built-in quotation template
// @Summary Default quotation email template
// @Tags Email
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.EmailTemplate
// @Router /api/email-templates/quotation [get]
func GetDefaultEmailTemplate() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, services.DefaultQuotationTemplate)
	}
}

// PreviewEmailTemplate renders a template as plain text
// @Summary Preview email template
// @Description Renders against a quotation when quotation_id is set, otherwise against the supplied data. Unknown variables are rejected.
// @Tags Email
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.EmailPreviewRequest true "Template and data"
// @Success 200 {object} models.EmailPreviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/email-templates/preview [post]
func PreviewEmailTemplate(quotations *services.QuotationService, email *services.EmailService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.EmailPreviewRequest
		if !bindJSON(c, &req) {
			return
		}
		data := req.Data
		if req.QuotationID != 0 {
			ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
			defer cancel()

			q, err := quotations.Get(ctx, req.QuotationID)
			if err != nil {
				respondError(c, err)
				return
			}
			data = email.QuotationEmailData(q, middleware.UserFrom(c), req.Data.Email, req.Data.Message)
		}
		subject, body, err := email.PreviewEmailAsText(req.Template, data)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, models.EmailPreviewResponse{Subject: subject, Body: body})
	}
}
