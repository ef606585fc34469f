package holds

import (
	"venuecap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

func SetupHoldRoutes(router *gin.RouterGroup, controller Controller) {
	holds := router.Group("/holds")
	holds.Use(middleware.JWTAuth())
	{
		holds.POST("", controller.CreateHold)              // POST /api/v1/holds
		holds.GET("/me", controller.GetUserHolds)          // GET /api/v1/holds/me
		holds.GET("/:id", controller.GetHold)              // GET /api/v1/holds/:id
		holds.POST("/:id/confirm", controller.ConfirmHold) // POST /api/v1/holds/:id/confirm
		holds.DELETE("/:id", controller.CancelHold)        // DELETE /api/v1/holds/:id
	}
}
