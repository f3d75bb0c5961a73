package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"modvault/internal/registry"
)

func listResponse(c *gin.Context, summaries []registry.PackageSummary) {
	page := pageParam(c)
	c.JSON(http.StatusOK, gin.H{
		"results":    pageOf(summaries, page),
		"count":      len(summaries),
		"page":       page,
		"page_count": pageCount(len(summaries)),
	})
}

func ListPackagesHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ordering := registry.NormalizeOrdering(c.Query("ordering"))
		summaries, err := svc.ListPackages(registry.ScopeAll(), c.Query("q"), ordering)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		listResponse(c, summaries)
	}
}

func OwnerPackagesHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		ordering := registry.NormalizeOrdering(c.Query("ordering"))
		scope := registry.ScopeOwner(c.Param("owner"))
		summaries, err := svc.ListPackages(scope, c.Query("q"), ordering)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		listResponse(c, summaries)
	}
}

func PackageDetailHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.GetPackageDetail(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, detail)
	}
}

func DependantsHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		detail, err := svc.GetPackageDetail(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		ordering := registry.NormalizeOrdering(c.Query("ordering"))
		scope := registry.ScopeDependants(detail.Summary.PackageID)
		summaries, err := svc.ListPackages(scope, c.Query("q"), ordering)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		listResponse(c, summaries)
	}
}

func VersionDetailHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		st := svc.Store()
		pkg, err := st.GetPackage(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		visible, err := svc.IsEffectivelyVisible(pkg.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if !visible {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		ver, err := st.GetVersion(pkg.ID, c.Param("version"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		deps, err := svc.SortedDependencies(ver.ID)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"full_name":      ver.FullVersionName(pkg),
			"version_number": ver.VersionNumber,
			"description":    ver.Description,
			"website_url":    ver.WebsiteURL,
			"downloads":      ver.Downloads,
			"is_active":      ver.IsActive,
			"download_url":   svc.DownloadURL(pkg, ver),
			"install_url":    svc.InstallURL(pkg, ver),
			"date_created":   ver.DateCreated,
			"uuid4":          ver.UUID4,
			"dependencies":   deps,
		})
	}
}

func DeprecatePackageHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Deprecated *bool `json:"is_deprecated" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pkg, err := svc.Store().GetPackage(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := svc.SetPackageDeprecated(claims.UserID, pkg.ID, *req.Deprecated); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func PinPackageHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Pinned *bool `json:"is_pinned" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pkg, err := svc.Store().GetPackage(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := svc.SetPackagePinned(claims.UserID, pkg.ID, *req.Pinned); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func SetPackageActiveHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		var req struct {
			Active *bool `json:"is_active" binding:"required"`
		}
		if err := c.BindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		pkg, err := svc.Store().GetPackage(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := svc.SetPackageActive(claims.UserID, pkg.ID, *req.Active); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

func DeactivateVersionHandler(svc *registry.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := claimsFrom(c)
		st := svc.Store()
		pkg, err := st.GetPackage(c.Param("owner"), c.Param("name"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		ver, err := st.GetVersion(pkg.ID, c.Param("version"))
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if err := svc.DeactivatePackageVersion(claims.UserID, ver.ID); err != nil {
			writeServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}

// versionIDParam is kept for admin tooling that addresses versions by
// row id rather than by the owner/name/version triple.
func versionIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return 0, false
	}
	return id, true
}
