package waitlist

import (
	"venuecap/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupWaitlistRoutes configures all waitlist-related routes
func SetupWaitlistRoutes(rg *gin.RouterGroup, controller Controller) {
	waitlist := rg.Group("/waitlist")
	waitlist.Use(middleware.JWTAuth())
	{
		waitlist.POST("", controller.JoinWaitlist)            // JOIN waitlist
		waitlist.GET("/:id/position", controller.GetPosition) // GET position
		waitlist.DELETE("/:id", controller.LeaveWaitlist)     // LEAVE waitlist
	}

	adminWaitlist := rg.Group("/admin/waitlist")
	adminWaitlist.Use(middleware.JWTAuth(), middleware.RequireAdmin())
	{
		adminWaitlist.GET("/resources/:id", controller.GetQueue)
		adminWaitlist.GET("/resources/:id/next", controller.GetNextInQueue)
		adminWaitlist.GET("/resources/:id/party-size", controller.GetTotalWaitingPartySize)
		adminWaitlist.GET("/resources/:id/stats", controller.GetWaitlistStats)
		adminWaitlist.POST("/:id/notify", controller.NotifyUser) // Manual notify
		adminWaitlist.POST("/:id/convert", controller.ConvertToReservation)
		adminWaitlist.POST("/:id/expire", controller.ExpireNotification)
		adminWaitlist.POST("/cleanup", controller.CleanupExpiredNotifications)
	}
}
