package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"safebite/internal/domain"
	"safebite/internal/service"
)

const (
	ContextKeyOwnerID = "owner_id"
	ContextKeyClaims  = "claims"
)

// AuthMiddleware returns Gin middleware that validates bearer tokens and
// injects the owner whose allergens the request operates on.
func AuthMiddleware(authService service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		claims, err := authService.ValidateToken(token)
		if err != nil {
			LoggerFrom(c).Debug("token rejected")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyOwnerID, claims.OwnerID)
		c.Set(ContextKeyClaims, claims)
		c.Next()
	}
}

// GetOwnerID extracts the owner ID from the Gin context.
func GetOwnerID(c *gin.Context) (uuid.UUID, error) {
	val, exists := c.Get(ContextKeyOwnerID)
	if !exists {
		return uuid.Nil, domain.ErrUnauthorized
	}
	id, ok := val.(uuid.UUID)
	if !ok || id == uuid.Nil {
		return uuid.Nil, domain.ErrUnauthorized
	}
	return id, nil
}
