package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"modvault/internal/auth"
	"modvault/internal/registry"
)

// SetupRouter wires the HTTP surface over the registry service.
func SetupRouter(svc *registry.Service, signingKey []byte) *gin.Engine {
	r := gin.Default()
	st := svc.Store()

	r.Use(AuthMiddleware(st, signingKey))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.POST("/register", RegisterHandler(st))
	r.POST("/login", LoginHandler(st, signingKey))
	r.POST("/refresh", RefreshHandler(st, signingKey))
	r.GET("/me", RequireScope(auth.ScopeRead), MeHandler(st))

	tokens := r.Group("/tokens", RequireScope(auth.ScopeRead))
	{
		tokens.POST("", CreateTokenHandler(st, signingKey))
		tokens.POST("/revoke", RevokeTokenHandler(st))
	}

	v1 := r.Group("/api/v1")
	{
		v1.GET("/packages", ListPackagesHandler(svc))
		v1.POST("/packages", RequireScope(auth.ScopeMaintain), PublishHandler(svc))
		v1.GET("/packages/:owner", OwnerPackagesHandler(svc))

		pkg := v1.Group("/packages/:owner/:name")
		{
			pkg.GET("", PackageDetailHandler(svc))
			pkg.GET("/dependants", DependantsHandler(svc))
			pkg.POST("/deprecate", RequireScope(auth.ScopeMaintain), DeprecatePackageHandler(svc))
			pkg.POST("/pin", RequireScope(auth.ScopeMaintain), PinPackageHandler(svc))
			pkg.POST("/active", RequireScope(auth.ScopeMaintain), SetPackageActiveHandler(svc))
			pkg.GET("/versions/:version", VersionDetailHandler(svc))
			pkg.GET("/versions/:version/download", DownloadHandler(svc))
			pkg.POST("/versions/:version/deactivate", RequireScope(auth.ScopeMaintain), DeactivateVersionHandler(svc))
		}

		v1.GET("/targets", ListTargetsHandler(svc))
		v1.POST("/targets", RequireScope(auth.ScopeMaintain), CreateTargetHandler(svc))
		v1.GET("/targets/:slug", TargetDetailHandler(svc))
		v1.POST("/targets/:slug/versions", RequireScope(auth.ScopeMaintain), CreateTargetVersionHandler(svc))
		v1.POST("/target-versions/:id/deactivate", RequireScope(auth.ScopeMaintain), DeactivateTargetVersionHandler(svc))

		v1.GET("/identity", RequireScope(auth.ScopeRead), MyIdentityHandler(svc))
		v1.POST("/identities/:slug/members", RequireScope(auth.ScopeMaintain), AddIdentityMemberHandler(svc))
		v1.DELETE("/identities/:slug/members/:username", RequireScope(auth.ScopeMaintain), RemoveIdentityMemberHandler(svc))
	}

	return r
}
