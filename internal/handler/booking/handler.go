package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/booking"
)

type Handler struct {
	svc *booking.Service
}

func NewHandler(svc *booking.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	grp := r.Group("/bookings")
	{
		grp.POST("", auth.RequireRole(model.UserRoleCustomer), h.Create)
		grp.GET("", h.ListMine)
		grp.GET("/:id", h.Get)
		grp.PATCH("/:id", h.UpdateStatus)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, booking.ErrQuoteNotAccepted):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("quote not found or not accepted"))
		case errors.Is(err, booking.ErrNotQuoteOwner):
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("cannot book this quote"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create booking"))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) Get(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking id"))
		return
	}

	got, err := h.svc.Get(c.Request.Context(), userID, id)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("booking not found"))
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

	bookings, err := h.svc.ListForUser(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list bookings"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(bookings))
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid booking id"))
		return
	}

	var req struct {
		Status model.BookingStatus `json:"status" binding:"required,oneof=scheduled in_progress completed cancelled"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	updated, err := h.svc.UpdateStatus(c.Request.Context(), userID, id, req.Status)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("booking not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(updated))
}
