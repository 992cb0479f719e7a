package notification

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/notification"
)

type Handler struct {
	svc *notification.Service
}

func NewHandler(svc *notification.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	grp := r.Group("/notifications")
	{
		grp.GET("", h.List)
		grp.GET("/count", h.UnreadCount)
		grp.PATCH("/:id/read", h.MarkRead)
		grp.PATCH("/read-all", h.MarkAllRead)
	}
}

func (h *Handler) List(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	unreadOnly := c.Query("unread_only") == "true"
	notifications, err := h.svc.List(c.Request.Context(), userID, unreadOnly)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list notifications"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notifications))
}

func (h *Handler) UnreadCount(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	count, err := h.svc.UnreadCount(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to count notifications"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(model.UnreadCountResponse{UnreadCount: count}))
}

func (h *Handler) MarkRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid notification id"))
		return
	}

	var req model.MarkReadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	notification, err := h.svc.MarkRead(c.Request.Context(), id, userID, *req.IsRead)
	if err != nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("notification not found"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(notification))
}

func (h *Handler) MarkAllRead(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	updated, err := h.svc.MarkAllRead(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to mark notifications read"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(gin.H{"updated": updated}))
}
