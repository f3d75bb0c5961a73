package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/store"
)

func MeHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		if claims == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		user, err := st.GetUserByID(claims.UserID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": user.ID, "username": user.Username, "role": user.Role})
	}
}
