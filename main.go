// File: tavolo/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tavolo/config"
	"tavolo/cron"
	"tavolo/database"
	scheduleRepo "tavolo/database/repository/schedule"
	"tavolo/handlers"
	"tavolo/middleware"
	"tavolo/routes"
	schedule "tavolo/services/schedule"
	"tavolo/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitStatusCache()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	schedRepo := scheduleRepo.NewMongoScheduleRepo()
	schedColl := database.MongoClient.Database("tavolo").Collection("schedules")
	if err := scheduleRepo.EnsureScheduleIndexes(context.Background(), schedColl); err != nil {
		logger.Sugar().Fatalf("main: failed to ensure schedule indexes: %v", err)
	}

	// services.
	refreshEnqueuer := cron.NewStatusRefreshEnqueuer()
	managerService := &schedule.DefaultScheduleManager{
		Repo:      schedRepo,
		Refresher: refreshEnqueuer,
	}
	queryService := &schedule.DefaultScheduleQueryService{
		Repo:  schedRepo,
		Cache: utils.GetStatusCacheClient(),
	}

	// Background status refresh worker keeps the cached answers warm across
	// open/close transitions.
	cron.InitStatusRefreshWorker(queryService, refreshEnqueuer)
	go cron.WarmStatusCache(context.Background(), schedRepo, refreshEnqueuer)

	// Health monitor feeding /health.
	utils.StartHealthMonitor([]*redis.Client{utils.GetStatusCacheClient()}, database.MongoClient)

	scheduleHandler := handlers.NewScheduleHandler(managerService, queryService)

	// Register routes.
	routes.RegisterRoutes(router, scheduleHandler)

	// Start the HTTP server.
	port := config.AppConfig.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Sugar().Fatalf("main: server forced to shutdown: %v", err)
	}

	logger.Sugar().Info("main: server stopped gracefully")
}
