package review

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/review"
)

type Handler struct {
	svc *review.Service
}

func NewHandler(svc *review.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/reviews", h.Create)
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, review.ErrBookingNotCompleted):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("booking not found or not completed"))
		case errors.Is(err, review.ErrNotParticipant):
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("not authorized to review this booking"))
		case errors.Is(err, review.ErrAlreadyReviewed):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("booking already reviewed"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create review"))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}
