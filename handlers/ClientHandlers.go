package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ==================== CUSTOMER CRUD OPERATIONS ====================

// ListCustomers lists client companies
// @Summary List customers
// @Description Search by company name or business number.
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Customer}
// @Router /api/customers [get]
func ListCustomers(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPagination(c)
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := customers.List(ctx, c.Query("q"), p.Page, p.PageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateCustomer creates a new customer
// @Summary Create customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.Customer true "Customer"
// @Success 201 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/customers [post]
func CreateCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in models.Customer
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		customer, err := customers.Create(ctx, middleware.ActorFrom(c), in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, customer)
	}
}

// GetCustomer returns a customer with its requesters
// @Summary Get customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} models.Customer
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [get]
func GetCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		customer, err := customers.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// UpdateCustomer edits a customer
// @Summary Update customer
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param request body models.Customer true "Customer"
// @Success 200 {object} models.Customer
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id} [put]
func UpdateCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.Customer
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		customer, err := customers.Update(ctx, middleware.ActorFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, customer)
	}
}

// DeleteCustomer removes a customer without quotations
// @Summary Delete customer
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/customers/{id} [delete]
func DeleteCustomer(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := customers.Delete(ctx, middleware.ActorFrom(c), id); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Customer")
	}
}

// ==================== REQUESTERS ====================

// ListRequesters lists contact persons of a customer
// @Summary List requesters
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Success 200 {array} models.Requester
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id}/requesters [get]
func ListRequesters(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		list, err := customers.ListRequesters(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateRequester adds a contact person
// @Summary Add requester
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param request body models.Requester true "Requester"
// @Success 201 {object} models.Requester
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id}/requesters [post]
func CreateRequester(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var in models.Requester
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		r, err := customers.AddRequester(ctx, middleware.ActorFrom(c), id, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, r)
	}
}

// UpdateRequester edits a contact person
// @Summary Update requester
// @Tags Customers
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param requester_id path int true "Requester ID"
// @Param request body models.Requester true "Requester"
// @Success 200 {object} models.Requester
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id}/requesters/{requester_id} [put]
func UpdateRequester(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		rid, ok := idParam(c, "requester_id")
		if !ok {
			return
		}
		var in models.Requester
		if !bindJSON(c, &in) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		r, err := customers.UpdateRequester(ctx, middleware.ActorFrom(c), id, rid, in)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, r)
	}
}

// DeleteRequester removes a contact person
// @Summary Delete requester
// @Tags Customers
// @Produce json
// @Security BearerAuth
// @Param id path int true "Customer ID"
// @Param requester_id path int true "Requester ID"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/customers/{id}/requesters/{requester_id} [delete]
func DeleteRequester(customers *services.CustomerService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		rid, ok := idParam(c, "requester_id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := customers.DeleteRequester(ctx, middleware.ActorFrom(c), id, rid); err != nil {
			respondError(c, err)
			return
		}
		deleted(c, "Requester")
	}
}
