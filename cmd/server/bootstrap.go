package main

import (
	"github.com/crewdeck/backend/internal/config"
	"github.com/crewdeck/backend/internal/handlers"
	"github.com/crewdeck/backend/internal/models"
	"github.com/crewdeck/backend/internal/services"
	"github.com/crewdeck/backend/internal/utils"
	"github.com/crewdeck/backend/pkg/logger"
)

// appServices holds all initialized services and handlers needed by the application.
type appServices struct {
	cfg *config.Config

	authHandler      *handlers.AuthHandler
	projectHandler   *handlers.ProjectHandler
	customerHandler  *handlers.CustomerHandler
	userHandler      *handlers.UserHandler
	systemLogHandler *handlers.SystemLogHandler
	healthHandler    *handlers.HealthHandler
}

// bootstrap initializes all application dependencies: database, services, schedulers.
func bootstrap(cfg *config.Config) *appServices {
	utils.SetJWTSecret(cfg.JWT.Secret)

	if err := models.InitDB(&cfg.Database); err != nil {
		logger.Fatalf("Failed to connect to database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		logger.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.SeedDefaultData(); err != nil {
		logger.Warn().Err(err).Msg("Failed to seed default data")
	}

	services.InitSystemLogger(models.GetDB())
	services.StartLogCleanupScheduler(models.GetDB())

	db := models.GetDB()

	smsService := services.NewSMSService(cfg.SMS)
	emailService := services.NewEmailService(db)
	notificationService := services.NewNotificationService(smsService, emailService)

	exportService := services.NewExportService(db, cfg.Export.Dir)
	projectService := services.NewProjectService(db, notificationService, exportService)
	customerService := services.NewCustomerService(db)
	authService := services.NewAuthService(db)
	userService := services.NewUserService(db)
	systemLogService := services.NewSystemLogService(db)

	authHandler := handlers.NewAuthHandler(authService)
	if err := authHandler.CreateAdminIfNotExists(cfg.Admin); err != nil {
		logger.Warn().Err(err).Msg("Failed to create admin user")
	}

	return &appServices{
		cfg:              cfg,
		authHandler:      authHandler,
		projectHandler:   handlers.NewProjectHandler(projectService, exportService),
		customerHandler:  handlers.NewCustomerHandler(customerService, cfg.Import.CustomerCSV),
		userHandler:      handlers.NewUserHandler(userService),
		systemLogHandler: handlers.NewSystemLogHandler(systemLogService),
		healthHandler:    handlers.NewHealthHandler(),
	}
}

// shutdown gracefully stops all background services.
func (s *appServices) shutdown() {
	services.StopLogCleanupScheduler()
	logger.Info().Msg("All schedulers stopped")
}
