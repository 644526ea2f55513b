package mw

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"housing-allocation-backend/internal/pkg/token"
)

// Context keys set by Auth.
const (
	ActorIDKey = "actorID"
	RoleKey    = "role"
)

// Auth verifies the bearer token issued by the auth service and stores the actor on the context.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}

		claims, err := token.Validate(strings.TrimPrefix(header, "Bearer "), secret)
		if err != nil {
			msg := "invalid access token"
			if errors.Is(err, token.ErrTokenExpired) {
				msg = "access token expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": msg})
			return
		}
		actorID, err := claims.ActorID()
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid access token"})
			return
		}

		c.Set(ActorIDKey, actorID)
		c.Set(RoleKey, claims.Role)
		c.Next()
	}
}

// RequireRole allows only actors with one of the given roles.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(RoleKey)
		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "you don't have permission to access this resource"})
	}
}

// StudentOnly allows only student tokens.
func StudentOnly() gin.HandlerFunc { return RequireRole(token.RoleStudent) }

// AdminOnly allows only admin tokens.
func AdminOnly() gin.HandlerFunc { return RequireRole(token.RoleAdmin) }

// Actor returns the authenticated actor id and role.
func Actor(c *gin.Context) (int64, string) {
	return c.GetInt64(ActorIDKey), c.GetString(RoleKey)
}
