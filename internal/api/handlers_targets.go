package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/models"
	"modvault/internal/registry"
)

func ListTargetsHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		targets, err := svc.ListTargets()
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"results": targets, "count": len(targets)})
	}
}

func TargetDetailHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		target, versions, err := svc.GetTarget(c.Param("slug"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		latest, err := svc.LatestTargetVersion(target.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"name":           target.Name,
			"display_name":   target.DisplayName(),
			"slug":           target.Slug,
			"description":    target.Description,
			"website_url":    target.WebsiteURL,
			"icon":           target.Icon,
			"is_pinned":      target.IsPinned,
			"is_deprecated":  target.IsDeprecated,
			"version_number": latest.VersionNumber,
			"date_created":   target.DateCreated,
			"date_updated":   target.DateUpdated,
			"uuid4":          target.UUID4,
			"versions":       versions,
		})
	}
}

func CreateTargetHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Name        string `json:"name" binding:"required"`
			Slug        string `json:"slug"`
			Description string `json:"description"`
			WebsiteURL  string `json:"website_url"`
			Icon        string `json:"icon"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if req.Slug == "" {
			req.Slug = registry.Slugify(req.Name)
		}
		t := models.Target{
			Name:        req.Name,
			Slug:        req.Slug,
			Description: req.Description,
			WebsiteURL:  req.WebsiteURL,
			Icon:        req.Icon,
		}
		if err := svc.CreateTarget(claims.UserID, &t); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": t.ID, "slug": t.Slug})
	}
}

func CreateTargetVersionHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			VersionNumber string `json:"version_number" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		// Admin lookup bypasses visibility: a fresh target has no
		// active versions yet.
		target, err := svc.Store().GetTargetBySlug(c.Param("slug"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		ver, err := svc.CreateTargetVersion(claims.UserID, target.ID, req.VersionNumber)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{"id": ver.ID, "version_number": ver.VersionNumber})
	}
}

func DeactivateTargetVersionHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		id, ok := versionIDParam(c)
		if !ok {
			return
		}
		if err := svc.DeactivateTargetVersion(claims.UserID, id); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
