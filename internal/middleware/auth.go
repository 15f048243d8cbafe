package middleware

import (
	"net/http"
	"slices"
	"strings"

	"github.com/dmehra2102/prod-golang-projects/spabook/internal/domain"
	"github.com/dmehra2102/prod-golang-projects/spabook/pkg/auth"
	"github.com/gin-gonic/gin"
)

const claimsKey = "claims"

// Auth validates the bearer access token and stores its claims on the context.
func Auth(jwt *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || token == "" {
			abort(c, http.StatusUnauthorized, "authorization header must be 'Bearer <token>'")
			return
		}

		claims, err := jwt.ValidateAccessToken(token)
		if err != nil {
			abort(c, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...domain.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		if !ok {
			abort(c, http.StatusUnauthorized, "authentication required")
			return
		}
		if !slices.Contains(roles, claims.Role) {
			abort(c, http.StatusForbidden, "access denied")
			return
		}
		c.Next()
	}
}

func ClaimsFrom(c *gin.Context) (*domain.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*domain.Claims)
	return claims, ok
}

func abort(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
