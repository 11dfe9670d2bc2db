package handlers

import (
	"net/http"

	"labquote/documents"
	"labquote/services"

	"github.com/gin-gonic/gin"
)

// QuotationQRCode returns the verification QR code of a quotation
// @Summary Quotation QR code
// @Description PNG encoding the quotation number and its public verification URL.
// @Tags Quotations
// @Produce image/png
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/qr [get]
func QuotationQRCode(quotations *services.QuotationService, renderer *documents.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := loadQuotation(c, quotations)
		if !ok {
			return
		}
		png, err := renderer.QuotationQR(q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.Data(http.StatusOK, "image/png", png)
	}
}
