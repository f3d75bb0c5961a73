package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"modvault/internal/auth"
	"modvault/internal/store"
)

// RefreshHandler rotates the refresh token: the presented token is
// revoked and a new pair is issued.
func RefreshHandler(st *store.Store, signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			RefreshToken string `json:"refresh_token" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		claims, err := auth.ParseToken(signingKey, req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		if !claims.HasScope(auth.ScopeRefresh) {
			c.JSON(http.StatusForbidden, gin.H{"error": "not a refresh token"})
			return
		}
		revoked, err := st.IsTokenRevoked(req.RefreshToken)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if revoked {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token revoked"})
			return
		}
		if _, err := st.TokenOwner(req.RefreshToken); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "refresh token not found"})
			return
		}
		accessTok, err := auth.NewToken(signingKey, claims.UserID, []string{auth.ScopeRead, auth.ScopeMaintain}, accessTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create access token"})
			return
		}
		newRefresh, err := auth.NewToken(signingKey, claims.UserID, []string{auth.ScopeRefresh}, refreshTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
			return
		}
		_ = st.RevokeToken(req.RefreshToken)
		if err := st.SaveToken(claims.UserID, newRefresh, []string{auth.ScopeRefresh}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":         accessTok,
			"refresh_token": newRefresh,
			"expires_at":    time.Now().Add(accessTokenTTL).UTC(),
		})
	}
}
