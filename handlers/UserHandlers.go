package handlers

import (
	"net/http"

	"labquote/middleware"
	"labquote/models"
	"labquote/services"
	"labquote/utils"

	"github.com/gin-gonic/gin"
)

// ListUsers lists employee accounts
// @Summary List users
// @Description Admin only. Search by name, email or user code.
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param q query string false "Search text"
// @Param page query int false "Page" default(1)
// @Param page_size query int false "Page size" default(20)
// @Success 200 {object} models.PageResponse{data=[]models.User}
// @Failure 401 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /api/users [get]
func ListUsers(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := utils.GetPagination(c)
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		list, total, err := users.List(ctx, c.Query("q"), p.Page, p.PageSize)
		if err != nil {
			respondError(c, err)
			return
		}
		respondPage(c, list, total, p)
	}
}

// CreateUser adds an employee account
// @Summary Create user
// @Description Admin only. The user code is two uppercase letters and must be unique.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.UserRequest true "User"
// @Success 201 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users [post]
func CreateUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req models.UserRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		user, err := users.Create(ctx, middleware.ActorFrom(c), req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusCreated, user)
	}
}

// GetUser returns one account
// @Summary Get user
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.User
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id} [get]
func GetUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		ctx, cancel := utils.GetFastQueryContext(c.Request.Context())
		defer cancel()

		user, err := users.Get(ctx, id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// UpdateUser edits an account
// @Summary Update user
// @Description Admin only. An empty password keeps the current one.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.UserRequest true "User"
// @Success 200 {object} models.User
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /api/users/{id} [put]
func UpdateUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.UserRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		user, err := users.Update(ctx, middleware.ActorFrom(c), id, req)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, user)
	}
}

// SuspendUser suspends or reinstates an account
// @Summary Suspend user
// @Description Admin only. Suspended users cannot sign in and their tokens stop working.
// @Tags Users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Param request body models.SuspendRequest true "Suspension flag"
// @Success 200 {object} models.MessageResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /api/users/{id}/suspend [put]
func SuspendUser(users *services.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req models.SuspendRequest
		if !bindJSON(c, &req) {
			return
		}
		ctx, cancel := utils.GetDefaultQueryContext(c.Request.Context())
		defer cancel()

		if err := users.SetSuspended(ctx, middleware.ActorFrom(c), id, req.Suspended); err != nil {
			respondError(c, err)
			return
		}
		msg := "User reinstated"
		if req.Suspended {
			msg = "User suspended"
		}
		c.JSON(http.StatusOK, models.MessageResponse{Message: msg})
	}
}
