package request

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/request"
)

type Handler struct {
	svc *request.Service
}

func NewHandler(svc *request.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	grp := r.Group("/requests")
	{
		grp.POST("", auth.RequireRole(model.UserRoleCustomer), h.Create)
		grp.GET("/me", h.ListMine)
		grp.GET("/:id", h.Get)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateRequestRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, request.ErrListingNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("listing not found"))
		case errors.Is(err, request.ErrOwnListing):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("cannot request your own service"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create request"))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request id"))
		return
	}

	got, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, request.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("request not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to get request"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(got))
}

func (h *Handler) ListMine(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	requests, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list requests"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(requests))
}
