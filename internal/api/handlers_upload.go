package api

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/registry"
)

// PublishHandler accepts a version submission: the manifest document
// plus references to the already-stored archive and media.
func PublishHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Owner    string          `json:"owner"`
			Manifest json.RawMessage `json:"manifest" binding:"required"`
			File     string          `json:"file" binding:"required"`
			Icon     string          `json:"icon"`
			Readme   string          `json:"readme"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		res, err := svc.PublishVersion(registry.PublishInput{
			UserID:        claims.UserID,
			OwnerIdentity: req.Owner,
			Manifest:      req.Manifest,
			File:          req.File,
			Icon:          req.Icon,
			Readme:        req.Readme,
		})
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gin.H{
			"full_name":      res.Version.FullVersionName(res.Package),
			"owner":          res.Package.OwnerName,
			"name":           res.Package.Name,
			"version_number": res.Version.VersionNumber,
			"download_url":   svc.DownloadURL(res.Package, res.Version),
			"install_url":    svc.InstallURL(res.Package, res.Version),
			"uuid4":          res.Version.UUID4,
		})
	}
}
