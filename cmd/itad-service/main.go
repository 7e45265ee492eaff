package main

import (
	"fmt"
	"os"

	"itad-service/internal/auth"
	"itad-service/internal/client"
	"itad-service/internal/config"
	"itad-service/internal/db"
	httphandler "itad-service/internal/http"
	"itad-service/internal/http/middleware"
	"itad-service/internal/logger"
	"itad-service/internal/repository"
	"itad-service/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	bookingRepo := repository.NewBookingRepository(database)
	jobRepo := repository.NewJobRepository(database)
	historyRepo := repository.NewStatusHistoryRepository(database)
	evidenceRepo := repository.NewEvidenceRepository(database)
	clientRepo := repository.NewClientRepository(database)
	userRepo := repository.NewUserRepository(database)
	notificationRepo := repository.NewNotificationRepository(database)

	notificationService := service.NewNotificationService(notificationRepo)
	scope := service.NewScopeResolver(clientRepo)

	var erp service.ErpRegistrar
	erpClient := client.NewERPClient(cfg)
	if erpClient.Configured() {
		erp = erpClient
	} else {
		appLogger.Info().Msg("ERP service not configured, job references will be generated locally")
	}

	bookingService := service.NewBookingService(bookingRepo, historyRepo, scope, notificationService, appLogger)
	jobService := service.NewJobService(jobRepo, bookingRepo, historyRepo, scope, notificationService, erp, appLogger)
	evidenceService := service.NewEvidenceService(evidenceRepo, jobRepo)
	clientService := service.NewClientService(clientRepo)
	userService := service.NewUserService(userRepo, evidenceRepo)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(
		bookingService,
		jobService,
		evidenceService,
		clientService,
		userService,
		notificationService,
		appLogger,
	)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting itad service")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
