package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// requireActorID pulls the authenticated actor's ID out of the gin context.
// The auth middleware guarantees it; a miss means the route is wired wrong.
func requireActorID(c *gin.Context, key string) (string, bool) {
	raw, exists := c.Get(key)
	if !exists || raw == nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Actor not found in context"})
		return "", false
	}
	id, ok := raw.(string)
	if !ok || id == "" {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid actor ID in context"})
		return "", false
	}
	return id, true
}
