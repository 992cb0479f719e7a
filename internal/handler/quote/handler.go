package quote

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/servease/marketplace-api/internal/handler"
	"github.com/servease/marketplace-api/internal/middleware"
	"github.com/servease/marketplace-api/internal/model"
	"github.com/servease/marketplace-api/internal/service/quote"
)

type Handler struct {
	svc *quote.Service
}

func NewHandler(svc *quote.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, auth *middleware.AuthMiddleware) {
	grp := r.Group("/quotes")
	{
		grp.POST("", auth.RequireRole(model.UserRoleProvider), h.Create)
		grp.GET("/request/:id", h.ListForRequest)
		grp.PATCH("/:id/status", auth.RequireRole(model.UserRoleCustomer), h.Decide)
	}
}

func (h *Handler) Create(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	var req model.CreateQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrRequestNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("request not found"))
		case errors.Is(err, quote.ErrListingNotOwned):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("listing not found or not owned by user"))
		case errors.Is(err, quote.ErrRequestClosed):
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("request is no longer open"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to create quote"))
		}
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(created))
}

func (h *Handler) ListForRequest(c *gin.Context) {
	requestID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid request id"))
		return
	}

	quotes, err := h.svc.ListForRequest(c.Request.Context(), requestID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to list quotes"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(quotes))
}

func (h *Handler) Decide(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("not authenticated"))
		return
	}

	quoteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid quote id"))
		return
	}

	var req struct {
		Status model.QuoteStatus `json:"status" binding:"required,oneof=accepted rejected"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	decided, err := h.svc.Decide(c.Request.Context(), userID, quoteID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, quote.ErrNotFound):
			c.JSON(http.StatusNotFound, handler.NewErrorResponse("quote not found"))
		case errors.Is(err, quote.ErrNotRequestOwner):
			c.JSON(http.StatusForbidden, handler.NewErrorResponse("only the request owner can decide on a quote"))
		default:
			c.JSON(http.StatusInternalServerError, handler.NewErrorResponse("failed to update quote"))
		}
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(decided))
}
