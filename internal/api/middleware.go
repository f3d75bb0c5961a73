package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"modvault/internal/auth"
	"modvault/internal/store"
)

type ctxKey string

const (
	CtxClaims   ctxKey = "claims"
	CtxRawToken ctxKey = "raw_token"
)

// AuthMiddleware parses an optional bearer token and rejects revoked
// ones. Requests without a token pass through unauthenticated.
func AuthMiddleware(st *store.Store, signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		authz := c.GetHeader("Authorization")
		if authz == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authz, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header"})
			return
		}
		tokenRaw := parts[1]
		claims, err := auth.ParseToken(signingKey, tokenRaw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		revoked, err := st.IsTokenRevoked(tokenRaw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}
		c.Set(string(CtxClaims), claims)
		c.Set(string(CtxRawToken), tokenRaw)
		c.Next()
	}
}

// RequireScope aborts unless the request carries a token granting scope.
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		if !claims.HasScope(scope) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient scope"})
			return
		}
		c.Next()
	}
}

func claimsFrom(c *gin.Context) *auth.Claims {
	ci, exists := c.Get(string(CtxClaims))
	if !exists {
		return nil
	}
	claims, _ := ci.(*auth.Claims)
	return claims
}
