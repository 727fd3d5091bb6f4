package auth

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"timeclock/internal/users"
)

// ContextClaimsKey is where RequireAuth stores the parsed claims.
const ContextClaimsKey = "claims"

// RequireAuth enforces bearer JWT tokens signed with HS256.
func RequireAuth(signingKey, issuer string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" || !strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenStr := strings.TrimSpace(authz[len("bearer "):])
		claims, err := Parse(tokenStr, signingKey, issuer)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		c.Set(ContextClaimsKey, claims)
		c.Next()
	}
}

// RequireAdmin re-checks the admin role against the stored user row rather
// than trusting the token alone. A missing row is treated as access denied.
func RequireAdmin(repo *users.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := ClaimsFrom(c)
		if claims.Role != users.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		id, err := uuid.Parse(claims.UserID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		u, err := repo.GetByID(c.Request.Context(), id)
		if errors.Is(err, users.ErrNotFound) || (err == nil && u.Role != users.RoleAdmin) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin access required"})
			return
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "admin check failed"})
			return
		}
		c.Next()
	}
}

// ClaimsFrom returns the claims set by RequireAuth.
func ClaimsFrom(c *gin.Context) Claims {
	v, _ := c.Get(ContextClaimsKey)
	claims, _ := v.(Claims)
	return claims
}

// SubjectID returns the authenticated user's id.
func SubjectID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ClaimsFrom(c).UserID)
	return id, err == nil
}
