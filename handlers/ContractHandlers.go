package handlers

import (
	"context"
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ListContracts lists contracts
// @Summary List contracts
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param status query string false "Status" Enums(active, completed, terminated)
// @Param customer_id query int false "Customer ID"
// @Param q query string false "Search number or title"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.Contract}
// @Router /api/contracts [get]
func ListContracts(contracts *services.ContractService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPagination(c)
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := contracts.List(ctx, services.ContractFilter{
			Status:     c.Query("status"),
			CustomerID: utils.ParseUintQuery(c, "customer_id"),
			Query:      c.Query("q"),
			Page:       p.Page,
			PageSize:   p.PageSize,
		})
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateContract signs a contract for a won quotation
// @Summary Create contract
// @Description Copies customer, title and grand total from the quotation. One contract per quotation.
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ContractRequest true "Contract"
// @Success 201 {object} models.Contract
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/contracts [post]
func CreateContract(contracts *services.ContractService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.ContractRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		contract, err := contracts.Create(ctx, middleware.ActorFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, contract)
	}
}

// GetContract returns a contract with its quotation
// @Summary Get contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 404 {object} models.ErrorResponse
// @Router /api/contracts/{id} [get]
func GetContract(contracts *services.ContractService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		contract, err := contracts.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

// UpdateContract edits an active contract
// @Summary Update contract
// @Tags Contracts
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Param request body models.ContractUpdateRequest true "Changes"
// @Success 200 {object} models.Contract
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/contracts/{id} [put]
func UpdateContract(contracts *services.ContractService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.ContractUpdateRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		contract, err := contracts.Update(ctx, middleware.ActorFrom(c), id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

func contractStatus(do func(context.Context, services.Actor, uint) (*models.Contract, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		contract, err := do(ctx, middleware.ActorFrom(c), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, contract)
	}
}

// CompleteContract closes a finished contract
// @Summary Complete contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 409 {object} models.ErrorResponse
// @Router /api/contracts/{id}/complete [post]
func CompleteContract(contracts *services.ContractService) gin.HandlerFunc {
	return contractStatus(contracts.Complete)
}

// TerminateContract cancels an active contract
// @Summary Terminate contract
// @Tags Contracts
// @Produce json
// @Security BearerAuth
// @Param id path int true "Contract ID"
// @Success 200 {object} models.Contract
// @Failure 409 {object} models.ErrorResponse
// @Router /api/contracts/{id}/terminate [post]
func TerminateContract(contracts *services.ContractService) gin.HandlerFunc {
	return contractStatus(contracts.Terminate)
}
