package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"modvault/internal/auth"
	"modvault/internal/models"
	"modvault/internal/store"
)

const (
	accessTokenTTL  = time.Minute * 30
	refreshTokenTTL = time.Hour * 24 * 30
)

func RegisterHandler(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Email    string `json:"email" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pw, _ := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		u := models.User{Username: req.Username, Email: req.Email, Role: models.RoleMaintainer}
		id, err := st.CreateUser(&u, string(pw))
		if err != nil {
			if err == store.ErrConflict {
				c.JSON(http.StatusConflict, gin.H{"error": "username or email already taken"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": id})
	}
}

func LoginHandler(st *store.Store, signingKey []byte) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		user, err := st.GetUserByUsername(req.Username)
		if err != nil {
			if err == store.ErrNotFound {
				c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)) != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		accessTok, err := auth.NewToken(signingKey, user.ID, []string{auth.ScopeRead, auth.ScopeMaintain}, accessTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create token"})
			return
		}
		refreshTok, err := auth.NewToken(signingKey, user.ID, []string{auth.ScopeRefresh}, refreshTokenTTL)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create refresh token"})
			return
		}
		if err := st.SaveToken(user.ID, refreshTok, []string{auth.ScopeRefresh}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"token":         accessTok,
			"refresh_token": refreshTok,
			"username":      user.Username,
			"expires_at":    time.Now().Add(accessTokenTTL).UTC(),
		})
	}
}
