package handlers

import (
	"errors"
	"net/http"

	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/request"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RequestHandler struct {
	RequestService request.RequestService
}

func NewRequestHandler(requestService request.RequestService) *RequestHandler {
	return &RequestHandler{RequestService: requestService}
}

// CreateServiceRequest handles POST /api/services.
func (h *RequestHandler) CreateServiceRequest(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	var payload models.ServiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	payload.CustomerID = userID

	created, err := h.RequestService.CreateRequest(c.Request.Context(), &payload)
	if err != nil {
		if request.IsInvalid(err) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		utils.GetLogger().Error("create service request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create service request"})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// GetServiceRequest handles GET /api/services/:id.
func (h *RequestHandler) GetServiceRequest(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	svc, err := h.RequestService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil || svc.CustomerID != userID {
		// Not yours means not found, as far as the caller can tell.
		c.JSON(http.StatusNotFound, gin.H{"error": "service request not found"})
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListMyServiceRequests handles GET /api/services/mine.
func (h *RequestHandler) ListMyServiceRequests(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	items, err := h.RequestService.ListByCustomer(c.Request.Context(), userID)
	if err != nil {
		utils.GetLogger().Error("list service requests failed",
			zap.String("customerID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list service requests"})
		return
	}
	c.JSON(http.StatusOK, items)
}

// UpdateServiceRequest handles PATCH /api/services/:id.
func (h *RequestHandler) UpdateServiceRequest(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	var payload models.ServiceRequest
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	payload.ID = c.Param("id")

	updated, err := h.RequestService.UpdateDetails(c.Request.Context(), userID, payload)
	if err != nil {
		h.respondRequestError(c, err, "update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

// DeleteServiceRequest handles DELETE /api/services/:id.
func (h *RequestHandler) DeleteServiceRequest(c *gin.Context) {
	userID, ok := requireActorID(c, "userID")
	if !ok {
		return
	}

	if err := h.RequestService.DeleteRequest(c.Request.Context(), userID, c.Param("id")); err != nil {
		h.respondRequestError(c, err, "delete")
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Service request deleted"})
}

func (h *RequestHandler) respondRequestError(c *gin.Context, err error, op string) {
	switch {
	case request.IsInvalid(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, request.ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": "service request belongs to another customer"})
	case errors.Is(err, serviceRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "service request not found"})
	case errors.Is(err, serviceRepo.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "service request is no longer open"})
	default:
		utils.GetLogger().Error("service request "+op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op + " service request"})
	}
}
