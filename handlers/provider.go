package handlers

import (
	"net/http"

	"helpr/models"
	"helpr/services/provider"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ProviderHandler struct {
	ProviderService provider.ProviderService
}

func NewProviderHandler(providerService provider.ProviderService) *ProviderHandler {
	return &ProviderHandler{ProviderService: providerService}
}

// GetMe handles GET /api/providers/me.
func (h *ProviderHandler) GetMe(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	prov, err := h.ProviderService.GetProviderByID(providerID)
	if err != nil {
		utils.GetLogger().Error("Provider not found", zap.String("id", providerID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		return
	}
	c.JSON(http.StatusOK, prov)
}

// GetProviderProfile handles GET /api/providers/:id, the public profile a
// customer sees when weighing an offer.
func (h *ProviderHandler) GetProviderProfile(c *gin.Context) {
	prov, err := h.ProviderService.GetProviderByID(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "provider not found"})
		return
	}
	c.JSON(http.StatusOK, models.ProviderDTO{
		ID:            prov.ID,
		Name:          prov.Name,
		ServiceTypes:  prov.ServiceTypes,
		Rating:        prov.Rating,
		CompletedJobs: prov.CompletedJobs,
	})
}

// CreateProvider handles POST /api/providers.
func (h *ProviderHandler) CreateProvider(c *gin.Context) {
	var payload models.Provider
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}

	created, err := h.ProviderService.CreateProvider(&payload)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, created)
}

// UpdateMe handles PATCH /api/providers/me.
func (h *ProviderHandler) UpdateMe(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	var payload models.Provider
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
		return
	}
	payload.ID = providerID

	updated, err := h.ProviderService.UpdateProvider(payload)
	if err != nil {
		utils.GetLogger().Error("Update error", zap.String("id", providerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to update profile"})
		return
	}
	c.JSON(http.StatusOK, updated)
}

// JobHistory handles GET /api/providers/me/history.
func (h *ProviderHandler) JobHistory(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	jobs, err := h.ProviderService.JobHistory(c.Request.Context(), providerID)
	if err != nil {
		utils.GetLogger().Error("job history failed", zap.String("id", providerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load job history"})
		return
	}
	c.JSON(http.StatusOK, jobs)
}

// DeleteMe handles DELETE /api/providers/me.
func (h *ProviderHandler) DeleteMe(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	if err := h.ProviderService.DeleteProvider(providerID); err != nil {
		utils.GetLogger().Error("Delete error", zap.String("id", providerID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete profile"})
		return
	}
	if utils.AuthCacheClient != nil {
		_ = utils.DeleteActorSession(utils.AuthCacheClient, utils.RoleProvider, providerID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Provider deleted"})
}
