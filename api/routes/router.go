// api/routes/router.go
package routes

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"venuecap/internal/auth"
	"venuecap/internal/capacity"
	"venuecap/internal/holds"
	"venuecap/internal/notifications"
	"venuecap/internal/resources"
	"venuecap/internal/shared/config"
	"venuecap/internal/shared/database"
	"venuecap/internal/shared/dbtx"
	"venuecap/internal/waitlist"
	"venuecap/pkg/cache"
	"venuecap/pkg/clock"
	"venuecap/pkg/logger"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	log       *logger.Logger
	clock     clock.Clock
	publisher notifications.Publisher

	cacheService    cache.Service
	capacityService capacity.Service
	holdService     holds.Service
	waitlistService waitlist.Service

	sweeper    *holds.Sweeper
	cleanupJob *waitlist.CleanupJob
}

// NewRouter wires the services. A nil publisher disables event publishing.
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher, log *logger.Logger) *Router {
	if publisher == nil {
		publisher = notifications.NoopPublisher{}
	}
	r := &Router{
		config:    cfg,
		db:        db,
		log:       log,
		clock:     clock.NewSystem(),
		publisher: publisher,
	}
	if rdb := db.GetRedisClient(); rdb != nil {
		r.cacheService = cache.NewService(rdb, log)
	}
	r.initServices()
	return r
}

func (r *Router) initServices() {
	pg := r.db.GetPostgreSQL()

	r.capacityService = capacity.NewService(capacity.NewRepository(pg), r.config, r.log)
	if r.cacheService != nil {
		r.capacityService.SetCacheService(r.cacheService)
	}

	r.holdService = holds.NewService(holds.NewRepository(pg), r.capacityService, dbtx.NewManager(pg), r.clock, r.config, r.log)
	r.holdService.SetPublisher(r.publisher)
	if rdb := r.db.GetRedisClient(); rdb != nil && r.config.Capacity.HoldGuard {
		guard := holds.NewGuard(rdb)
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		if err := guard.PreloadScripts(ctx); err != nil {
			r.log.Warn("failed to preload hold guard script", slog.String("error", err.Error()))
		}
		cancel()
		r.holdService.SetGuard(guard)
	}

	r.waitlistService = waitlist.NewService(waitlist.NewRepository(pg), r.capacityService, r.clock, r.config, r.log)
	r.waitlistService.SetPublisher(r.publisher)

	r.sweeper = holds.NewSweeper(r.holdService, r.config.Capacity, r.log)
	r.cleanupJob = waitlist.NewCleanupJob(r.waitlistService, r.config.Waitlist, r.log)
}

// StartBackgroundJobs starts the hold sweeper and the waitlist cleanup job
func (r *Router) StartBackgroundJobs(ctx context.Context) {
	r.sweeper.Start(ctx)
	r.cleanupJob.Start(ctx)
}

// StopBackgroundJobs stops both jobs and waits for running passes
func (r *Router) StopBackgroundJobs() {
	r.sweeper.Stop()
	r.cleanupJob.Stop()
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		r.setupAuthRoutes(api)
		r.setupResourceRoutes(api)
		capacity.SetupCapacityRoutes(api, capacity.NewController(r.capacityService))
		holds.SetupHoldRoutes(api, holds.NewController(r.holdService, r.clock))
		waitlist.SetupWaitlistRoutes(api, waitlist.NewController(r.waitlistService))
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "venuecap",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "venuecap",
			"redis":     r.db.GetRedisClient() != nil,
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
			"jobs": gin.H{
				"hold_sweeper":     r.sweeper.Stats(),
				"waitlist_cleanup": r.cleanupJob.GetJobStatus(),
			},
		})
	})
}

// setupAuthRoutes configures authentication routes
func (r *Router) setupAuthRoutes(rg *gin.RouterGroup) {
	authRepo := auth.NewRepository(r.db.GetPostgreSQL())
	authService := auth.NewService(authRepo, auth.NewTokenIssuer(r.config.JWT), r.log)
	authController := auth.NewController(authService, r.log)

	auth.SetupAuthRoutes(rg, authController, r.config)
}

// setupResourceRoutes configures resource scheduling routes
func (r *Router) setupResourceRoutes(rg *gin.RouterGroup) {
	resourceService := resources.NewService(resources.NewRepository(r.db.GetPostgreSQL()), r.capacityService, r.clock, r.log)
	if r.cacheService != nil {
		resourceService.SetCacheService(r.cacheService)
	}

	resources.SetupResourceRoutes(rg, resources.NewController(resourceService))
}
