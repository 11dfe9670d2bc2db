package handlers

import (
	"bytes"
	"io"
	"net/http"
	"time"

	"labquote/documents"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

const (
	contentTypePDF  = "application/pdf"
	contentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	contentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// render buffers a document so a failure can still become a JSON error.
func render(c *gin.Context, filename, contentType string, write func(io.Writer) error) {
	var buf bytes.Buffer
	if err := write(&buf); err != nil {
		respondError(c, err)
		return
	}
	attachment(c, filename, contentType)
	c.Data(http.StatusOK, contentType, buf.Bytes())
}

func loadQuotation(c *gin.Context, quotations *services.QuotationService) (*models.Quotation, bool) {
	id, ok := idParam(c, "id")
	if !ok {
		return nil, false
	}
	ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
	defer cancel()

	q, err := quotations.Get(ctx, id)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return q, true
}

// ExportQuotationPDF downloads a quotation as PDF
// @Summary Export quotation PDF
// @Description A4 quotation with item table, totals and a QR code linking to the verification page.
// @Tags Exports
// @Produce application/pdf
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/export/pdf [get]
func ExportQuotationPDF(quotations *services.QuotationService, renderer *documents.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := loadQuotation(c, quotations)
		if !ok {
			return
		}
		render(c, q.QuotationNumber+".pdf", contentTypePDF, func(w io.Writer) error {
			return renderer.QuotationPDF(w, q)
		})
	}
}

// ExportQuotationDOCX downloads a quotation as a Word document
// @Summary Export quotation DOCX
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param id path int true "Quotation ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/quotations/{id}/export/docx [get]
func ExportQuotationDOCX(quotations *services.QuotationService, renderer *documents.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		q, ok := loadQuotation(c, quotations)
		if !ok {
			return
		}
		render(c, q.QuotationNumber+".docx", contentTypeDOCX, func(w io.Writer) error {
			return renderer.QuotationDOCX(w, q)
		})
	}
}

// ExportContractDOCX downloads a contract summary
// @Summary Export contract DOCX
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.wordprocessingml.document
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {file} file
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contracts/{id}/export/docx [get]
func ExportContractDOCX(contracts *services.ContractService, renderer *documents.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		contract, err := contracts.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		render(c, contract.ContractNumber+".docx", contentTypeDOCX, func(w io.Writer) error {
			return renderer.ContractDOCX(w, contract)
		})
	}
}

// ExportQuotationsXLSX downloads the filtered quotation list
// @Summary Export quotations XLSX
// @Description Same filters as the list endpoint, without paging. Adds a summary sheet by status.
// @Tags Exports
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Security BearerAuth
// @Param status query string false "Status"
// @Param quotation_type query string false "Type"
// @Param customer_id query int false "Customer ID"
// @Param year query int false "Issue year"
// @Param q query string false "Search text"
// @Success 200 {file} file
// @Failure 400 {object} models.ErrorResponse
// @Router /api/quotations/export/xlsx [get]
func ExportQuotationsXLSX(quotations *services.QuotationService, renderer *documents.Renderer) gin.HandlerFunc {
	return func(c *gin.Context) {
		f, ok := quotationFilter(c)
		if !ok {
			return
		}
		ctx, cancel := utils.GetSlowQueryContext(c.Request.Context())
		defer cancel()

		list, err := quotations.ListAll(ctx, f)
		if err != nil {
			respondError(c, err)
			return
		}
		filename := "quotations_" + time.Now().Format("20060102") + ".xlsx"
		render(c, filename, contentTypeXLSX, func(w io.Writer) error {
			return renderer.QuotationsXLSX(w, list)
		})
	}
}
