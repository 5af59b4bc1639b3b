package main

import (
	"github.com/crewdeck/backend/internal/middleware"
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/pkg/logger"
	"github.com/gin-gonic/gin"
)

// registerRoutes sets up all HTTP routes on the given Gin engine.
func registerRoutes(r *gin.Engine, svc *appServices) {
	// Middleware
	r.Use(logger.GinLogger(), logger.GinRecovery())
	r.RedirectTrailingSlash = false
	r.RedirectFixedPath = false
	r.Use(middleware.CORS())

	db := models.GetDB()

	// Rate limiter for the bulk import routes
	importLimiter := middleware.NewRateLimiter(1, 2)

	// Health check
	r.GET("/health", svc.healthHandler.CheckHealth)

	// API routes
	api := r.Group("/api")
	{
		// Auth routes (public)
		auth := api.Group("/auth")
		{
			auth.POST("/signup", svc.authHandler.Signup)
			auth.POST("/login", svc.authHandler.Login)
		}

		// Protected routes
		protected := api.Group("")
		protected.Use(middleware.AuthRequired())
		{
			// Auth
			protected.GET("/auth/me", svc.authHandler.GetCurrentUser)
			protected.POST("/auth/logout", svc.authHandler.Logout)
			protected.POST("/auth/change-password", svc.authHandler.ChangePassword)

			// Projects (read needs the calendar capability)
			viewer := protected.Group("", middleware.PermissionRequired(db, models.PermViewCalendar))
			{
				viewer.GET("/projects/:region", svc.projectHandler.List)
				viewer.GET("/projects/:region/export", svc.projectHandler.Export)
				viewer.GET("/projects/:region/:id", svc.projectHandler.Get)

				// Customer directory
				viewer.GET("/customers", svc.customerHandler.List)
				viewer.GET("/customers/search", svc.customerHandler.Search)
				viewer.GET("/customers/:id", svc.customerHandler.Get)
			}

			// Project writes, each behind its own capability bit
			protected.POST("/projects/:region",
				middleware.PermissionRequired(db, models.PermCreateProject),
				svc.projectHandler.Create)
			protected.PUT("/projects/:region/:id",
				middleware.PermissionRequired(db, models.PermEditProject),
				svc.projectHandler.Update)
			protected.DELETE("/projects/:region/:id",
				middleware.PermissionRequired(db, models.PermDeleteProject),
				svc.projectHandler.Delete)

			// Customer imports (rate limited, write capability)
			imports := protected.Group("",
				importLimiter.Middleware(),
				middleware.PermissionRequired(db, models.PermCreateProject))
			{
				imports.POST("/customers/import", svc.customerHandler.ImportUpload)
				imports.POST("/customers/import-file", svc.customerHandler.ImportFromServer)
			}

			// User management
			manage := protected.Group("/user-management",
				middleware.PermissionRequired(db, models.PermManageUsers))
			{
				manage.GET("/users", svc.userHandler.List)
				manage.GET("/roles", svc.userHandler.ListRoles)
				manage.PUT("/users/:id/role", svc.userHandler.UpdateRole)
				manage.PUT("/users/:id/status", svc.userHandler.UpdateStatus)
			}

			// Audit log (admin only)
			admin := protected.Group("", middleware.AdminRequired())
			{
				admin.GET("/system-logs", svc.systemLogHandler.List)
			}
		}
	}
}
