package handlers

import (
	"net/http"

	"helpr/models"
	"helpr/services/legal"

	"github.com/gin-gonic/gin"
)

type LegalHandler struct {
	LegalService legal.LegalService
}

func NewLegalHandler(legalService legal.LegalService) *LegalHandler {
	return &LegalHandler{LegalService: legalService}
}

// LegalDocumentation handles GET /api/legal. The optional audience query
// narrows the documents to one side of the marketplace.
func (h *LegalHandler) LegalDocumentation(c *gin.Context) {
	var sections []models.LegalSection
	switch audience := c.Query("audience"); audience {
	case models.AudienceUser, models.AudienceProvider:
		sections = h.LegalService.GetLegalSectionsFor(audience)
	default:
		sections = h.LegalService.GetLegalSections()
	}

	c.JSON(http.StatusOK, gin.H{
		"status":  "success",
		"version": "v1.0",
		"data":    sections,
	})
}
