package listing

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/listing"
)

type Handler struct {
	svc *listing.Service
}

func NewHandler(svc *listing.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	grp := r.Group("/listings")
	{
		grp.GET("", h.List)
		grp.GET("/:id", h.Get)
		grp.POST("", auth.RequireRole(model.UserRoleProvider), h.Create)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create listing"))
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid listing id"))
		return
	}

	got, err := h.svc.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, listing.ErrNotFound) {
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("listing not found"))
			return
		}
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to get listing"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(got))
}

func (h *Handler) List(c *gin.Context) {
	listings, err := h.svc.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list listings"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(listings))
}
