package handlers

import (
	"net/http"

	"helpr/models"
	"helpr/services/intelligence"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type IntelligenceHandler struct {
	Service intelligence.IntelligenceService
}

func NewIntelligenceHandler(service intelligence.IntelligenceService) *IntelligenceHandler {
	return &IntelligenceHandler{Service: service}
}

// EstimatePrice handles POST /api/ai/estimate. The returned amount is a
// suggestion only; the customer still chooses the price on the request.
func (h *IntelligenceHandler) EstimatePrice(c *gin.Context) {
	var req models.PriceEstimateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	est, err := h.Service.EstimatePrice(c.Request.Context(), req)
	if err != nil {
		utils.GetLogger().Warn("price estimation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "could not produce an estimate, try again"})
		return
	}
	c.JSON(http.StatusOK, est)
}
