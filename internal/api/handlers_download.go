package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/registry"
)

// DownloadHandler counts the download and redirects to the stored
// archive.
func DownloadHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		url, err := svc.ResolveDownload(c.Param("owner"), c.Param("name"), c.Param("version"), c.ClientIP())
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.Redirect(http.StatusFound, url)
	}
}
