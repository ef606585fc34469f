package capacity

import (
	"venuecap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupCapacityRoutes(router *gin.RouterGroup, controller Controller) {
	// Public reads
	publicResources := router.Group("/resources")
	{
		publicResources.GET("/:id/availability", controller.CheckAvailability) // GET /api/v1/resources/:id/availability?party_size=
		publicResources.GET("/:id/capacity", controller.GetCapacityStats)      // GET /api/v1/resources/:id/capacity?skip_cache=
	}

	adminResources := router.Group("/admin/resources")
	adminResources.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminResources.PATCH("/:id/settings", controller.UpdateSettings)
		adminResources.POST("/:id/block", controller.BlockCapacity)
		adminResources.POST("/:id/unblock", controller.UnblockCapacity)
		adminResources.PUT("/:id/blocked", controller.SetBlockedCapacity)
		adminResources.POST("/:id/release", controller.ReleaseReservedCapacity)
	}

	adminCapacity := router.Group("/admin/capacity")
	adminCapacity.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminCapacity.GET("/audit", controller.AuditInvariant) // GET /api/v1/admin/capacity/audit
	}
}
