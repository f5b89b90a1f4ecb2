// middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"helpr/utils"

	"github.com/gin-gonic/gin"
)

// actorFromRequest pulls and validates the bearer token, returning the
// actor's ID and role.
func actorFromRequest(c *gin.Context) (string, string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing or invalid Authorization header"})
		return "", "", false
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	id, role, err := utils.ExtractActorFromToken(tokenString)
	if err != nil || id == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
		return "", "", false
	}
	return id, role, true
}

// touchSession refreshes the actor's device session. Failures never block
// the request.
func touchSession(role, id, ip string) {
	if utils.AuthCacheClient == nil {
		return
	}
	_ = utils.TouchActorSession(utils.AuthCacheClient, role, id, ip)
}

// UserAuth authenticates a customer token and stores userID in the context.
func UserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, role, ok := actorFromRequest(c)
		if !ok {
			return
		}
		if role != utils.RoleUser {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "User access required"})
			return
		}
		touchSession(role, id, getClientIP(c))
		c.Set("userID", id)
		c.Next()
	}
}

// ProviderAuth authenticates a provider token and stores providerID in the
// context.
func ProviderAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, role, ok := actorFromRequest(c)
		if !ok {
			return
		}
		if role != utils.RoleProvider {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Provider access required"})
			return
		}
		touchSession(role, id, getClientIP(c))
		c.Set("providerID", id)
		c.Next()
	}
}
