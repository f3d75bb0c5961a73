package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/models"
	"modvault/internal/registry"
	"modvault/internal/store"
)

// MyIdentityHandler returns the caller's publishing identity, creating
// it on first use.
func MyIdentityHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		user, err := svc.Store().GetUserByID(claims.UserID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		ident, err := svc.GetOrCreateIdentityForUser(user)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		members, err := svc.Store().ListMembers(ident.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": ident.ID, "name": ident.Name, "slug": ident.Slug, "members": members})
	}
}

func AddIdentityMemberHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Username string `json:"username" binding:"required"`
			Role     string `json:"role"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Role == "" {
			req.Role = string(models.IdentityRoleMember)
		}
		st := svc.Store()
		ident, err := st.GetIdentityBySlug(c.Param("slug"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		user, err := st.GetUserByUsername(req.Username)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		err = svc.AddIdentityMember(claims.UserID, ident.ID, user.ID, models.IdentityRole(req.Role))
		if err != nil {
			if err == store.ErrConflict {
				c.JSON(http.StatusConflict, gin.H{"error": "already a member"})
				return
			}
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"status": "added"})
	}
}

func RemoveIdentityMemberHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		st := svc.Store()
		ident, err := st.GetIdentityBySlug(c.Param("slug"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		user, err := st.GetUserByUsername(c.Param("username"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := svc.RemoveIdentityMember(claims.UserID, ident.ID, user.ID); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "removed"})
	}
}
