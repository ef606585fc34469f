package resources

import (
	"venuecap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupResourceRoutes(router *gin.RouterGroup, controller Controller) {
	// Public routes - anyone can browse scheduled resources
	publicResources := router.Group("/resources")
	{
		publicResources.GET("", controller.ListResources)   // GET /api/v1/resources
		publicResources.GET("/:id", controller.GetResource) // GET /api/v1/resources/:id
	}

	adminResources := router.Group("/admin/resources")
	adminResources.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminResources.POST("", controller.CreateResource) // POST /api/v1/admin/resources
	}
}
