package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/01moynul/inkframe-golang/internal/models"
	"github.com/01moynul/inkframe-golang/internal/store"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

const userRoleKey = "userRole"

// RoleLookup reads a user's current role from the database.
type RoleLookup interface {
	UserRole(ctx context.Context, id int64) (models.Role, error)
}

// RequireUser rejects anonymous callers with 401.
func RequireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireAdmin must run after RequireUser. The role is re-read from the
// database so a demoted admin loses access before the session expires.
func RequireAdmin(roles RoleLookup) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 1. Get userID from the session
		userID, ok := UserID(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		// 2. Query DB for user's role
		role, err := roles.UserRole(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
				return
			}
			log.Error().Err(err).Int64("user_id", userID).Msg("failed to check role")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			return
		}

		// 3. Check permission
		if role != models.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			return
		}

		c.Set(userRoleKey, role)
		c.Next()
	}
}
