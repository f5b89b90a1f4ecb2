// File: helpr/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"helpr/config"
	"helpr/cron"
	"helpr/database"
	fillRequestRepo "helpr/database/repository/fillrequest"
	providerRepo "helpr/database/repository/provider"
	serviceRepo "helpr/database/repository/service"
	userRepoPkg "helpr/database/repository/user"
	"helpr/handlers"
	"helpr/middleware"
	"helpr/models"
	"helpr/routes"
	"helpr/services/bid"
	"helpr/services/feed"
	ai "helpr/services/intelligence"
	"helpr/services/legal"
	"helpr/services/notification"
	"helpr/services/provider"
	"helpr/services/request"
	"helpr/services/user"
	"helpr/utils"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitCache()
	utils.InitAuthCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	svcRepo := serviceRepo.NewMongoServiceRepo()
	fillRepo := fillRequestRepo.NewMongoFillRequestRepo()
	provRepo := providerRepo.NewMongoProviderRepo()
	userRepo := userRepoPkg.NewMongoUserRepo()

	// services.
	userService := &user.DefaultUserService{
		Repo: userRepo,
	}
	providerService := &provider.DefaultProviderService{
		Repo:        provRepo,
		ServiceRepo: svcRepo,
	}

	notificationService, err := notification.NewDefaultNotificationService(userService, providerService)
	if err != nil {
		logger.Sugar().Fatalf("main: failed to initialize notification service: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisReminderQueueDB,
	})
	defer asynqClient.Close()

	requestService := &request.DefaultRequestService{
		Repo:         svcRepo,
		FillRepo:     fillRepo,
		ProviderRepo: provRepo,
		Notifier:     notificationService,
		Geocoder:     request.GoogleGeocoder{},
	}
	bidService := &bid.DefaultBidService{
		ServiceRepo: svcRepo,
		FillRepo:    fillRepo,
		Notifier:    notificationService,
		AsynqClient: asynqClient,
	}
	feedService := &feed.DefaultFeedService{
		Repo:     svcRepo,
		FillRepo: fillRepo,
		Cache:    feed.NewRedisSnapshotCache(utils.GetCacheClient()),
	}

	aiSvc := &ai.DefaultIntelligenceService{
		Gemini: ai.NewGeminiClient(config.AppConfig.GeminiAPIKey),
		Cache:  ai.NewRedisEstimateCache(utils.GetCacheClient(), 30*time.Minute),
	}

	// Background machinery: the feed watcher keeps the open-jobs snapshot
	// warm, the dispatcher fans store changes out to it and to the apps,
	// the reminder worker drains the scheduled-job queue.
	rootCtx, stopBackground := context.WithCancel(context.Background())
	defer stopBackground()

	feedWatcher := feedService.StartWatcher(time.Duration(config.AppConfig.FeedPollSeconds) * time.Second)

	dispatcher := &notification.Dispatcher{
		ServiceRepo: svcRepo,
		FillRepo:    fillRepo,
		Notifier:    notificationService,
		Hooks:       []func(models.ChangeEvent){feedWatcher.Notify},
	}
	if err := dispatcher.Run(rootCtx); err != nil {
		// Without change streams the watcher still polls; pushes degrade.
		logger.Sugar().Warnf("main: change-stream dispatcher unavailable: %v", err)
	}

	cron.InitReminderWorker(notificationService, svcRepo)
	utils.StartHealthMonitor([]*redis.Client{utils.GetCacheClient(), utils.GetAuthCacheClient()}, database.MongoClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		Requests:     handlers.NewRequestHandler(requestService),
		Bids:         handlers.NewBidHandler(bidService),
		Feed:         handlers.NewFeedHandler(feedService),
		Users:        handlers.NewUserHandler(userService),
		Providers:    handlers.NewProviderHandler(providerService),
		Devices:      handlers.NewDeviceHandler(userService, providerService),
		Intelligence: handlers.NewIntelligenceHandler(aiSvc),
		Legal:        handlers.NewLegalHandler(&legal.DefaultLegalService{}),
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle)

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

	feedWatcher.Stop()
	stopBackground()
	database.CloseDB()
	utils.CloseCaches()

	logger.Sugar().Info("main: server stopped gracefully")
}
