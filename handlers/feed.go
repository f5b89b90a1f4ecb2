package handlers

import (
	"net/http"

	"helpr/services/feed"

	"github.com/gin-gonic/gin"
)

type FeedHandler struct {
	FeedService feed.FeedService
}

func NewFeedHandler(feedService feed.FeedService) *FeedHandler {
	return &FeedHandler{FeedService: feedService}
}

// OpenJobs handles GET /api/feed/open for providers.
func (h *FeedHandler) OpenJobs(c *gin.Context) {
	providerID, ok := requireActorID(c, "providerID")
	if !ok {
		return
	}

	items, err := h.FeedService.OpenJobs(c.Request.Context(), providerID)
	if err != nil {
		if feed.IsTransient(err) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "feed temporarily unavailable, try again"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load feed"})
		return
	}
	c.JSON(http.StatusOK, items)
}
