package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"modvault/internal/auth"
	"modvault/internal/models"
	"modvault/internal/store"
)

// Service tokens are long lived and meant for CI publishing.
const serviceTokenTTL = time.Hour * 24 * 365 * 10

func CreateTokenHandler(st *store.Store, signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		var req struct {
			Scopes []string `json:"scopes" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		for _, s := range req.Scopes {
			if s != auth.ScopeRead && s != auth.ScopeMaintain {
				c.JSON(http.StatusBadRequest, gin.H{"error": "unknown scope: " + s})
				return
			}
		}
		tokenStr, err := auth.NewToken(signingKey, claims.UserID, req.Scopes, serviceTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}
		if err := st.SaveToken(claims.UserID, tokenStr, req.Scopes); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"token": tokenStr})
	}
}

func RevokeTokenHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		var req struct {
			Token string `json:"token" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		ownerID, err := st.TokenOwner(req.Token)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "token not found"})
			return
		}
		if ownerID != claims.UserID {
			caller, err := st.GetUserByID(claims.UserID)
			if err != nil || caller.Role != models.RoleAdmin {
				c.JSON(http.StatusForbidden, gin.H{"error": "not allowed to revoke this token"})
				return
			}
		}
		if err := st.RevokeToken(req.Token); err != nil && err != store.ErrNotFound {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "revoked"})
	}
}
