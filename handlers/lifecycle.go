package handlers

import (
	"errors"
	"io"
	"net/http"

	serviceRepo "helpr/database/repository/service"
	"helpr/models"
	"helpr/services/lifecycle"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AdvanceServiceStatus handles POST /api/services/:id/advance. The body may
// carry the status the provider believes the job is in; the store refuses
// the step if that guess is stale.
func (h *RequestHandler) AdvanceServiceStatus(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	// An empty body is fine: the freshly read status guards the write.
	var body struct {
		ExpectedStatus string `json:"expectedStatus"`
	}
	if err := c.ShouldBindJSON(&body); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	svc, err := h.RequestService.AdvanceStatus(c.Request.Context(), c.Param("id"),
		providerID, models.ServiceStatus(body.ExpectedStatus))
	if err != nil {
		respondLifecycleError(c, err, "advance")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// CancelServiceAssignment handles POST /api/services/:id/cancel-assignment.
func (h *RequestHandler) CancelServiceAssignment(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	svc, err := h.RequestService.CancelAssignment(c.Request.Context(), c.Param("id"), providerID)
	if err != nil {
		respondLifecycleError(c, err, "cancel")
		return
	}
	c.JSON(http.StatusOK, svc)
}

// ListAssignedServices handles GET /api/services/assigned. An optional
// ?status= filter narrows the list, e.g. status=completed for job history.
func (h *RequestHandler) ListAssignedServices(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	items, err := h.RequestService.ListAssigned(c.Request.Context(), providerID)
	if err != nil {
		utils.GetLogger().Error("list assigned services failed",
			zap.String("providerID", providerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list assigned services"})
		return
	}

	if raw := c.Query("status"); raw != "" {
		want := models.NormalizeStatus(models.ServiceStatus(raw))
		filtered := make([]models.ServiceRequest, 0, len(items))
		for _, it := range items {
			if models.NormalizeStatus(it.Status) == want {
				filtered = append(filtered, it)
			}
		}
		items = filtered
	}
	c.JSON(http.StatusOK, items)
}

func respondLifecycleError(c *gin.Context, err error, op string) {
	switch {
	case lifecycle.IsNotAssignedProvider(err):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case lifecycle.IsTerminalState(err), lifecycle.IsInvalidCancellation(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, serviceRepo.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "service request not found"})
	case errors.Is(err, serviceRepo.ErrStatusConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "service request changed, refresh and retry"})
	default:
		utils.GetLogger().Error("service "+op+" failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to " + op + " service request"})
	}
}
