// File: charterhub/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"

	"charterhub/config"
	"charterhub/cron"
	"charterhub/database"
	operatorRepo "charterhub/database/repository/operator"
	quoteRepo "charterhub/database/repository/quote"
	requestRepo "charterhub/database/repository/request"
	"charterhub/handlers"
	"charterhub/middleware"
	"charterhub/routes"
	"charterhub/services/dialogue"
	"charterhub/services/lifecycle"
	"charterhub/services/notification"
	"charterhub/services/quotes"
	"charterhub/utils"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()

	database.InitDB()
	utils.InitSessionCache()
	utils.FirebaseInit()

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware())

	// repositories.
	reqRepo := requestRepo.NewMongoCharterRequestRepo()
	qtRepo := quoteRepo.NewMongoQuoteRepo()
	opRepo := operatorRepo.NewMongoOperatorRepo()

	// notification queue.
	asynqClient := cron.NewAsynqClient()
	defer asynqClient.Close()
	dispatcher := notification.NewQueueDispatcher(asynqClient, logger)

	// services.
	lifecycleService := &lifecycle.DefaultLifecycleService{
		Repo:          reqRepo,
		Quotes:        qtRepo,
		Operators:     opRepo,
		Dispatcher:    dispatcher,
		Scheduler:     &cron.AsynqDeadlineScheduler{Client: asynqClient},
		QuoteLinkBase: config.AppConfig.QuoteLinkBase,
		DeadlineHours: config.AppConfig.QuoteDeadlineHours,
		Logger:        logger,
	}

	sessionStore := dialogue.NewRedisSessionStore(utils.GetSessionCacheClient())
	conversationService := dialogue.NewConversationService(
		sessionStore,
		lifecycleService,
		dialogue.FlowByName(config.AppConfig.DialogueFlow),
		time.Duration(config.AppConfig.SessionTTLHours)*time.Hour,
		logger,
	)

	intakeService := &quotes.DefaultIntakeService{
		Requests:   reqRepo,
		Quotes:     qtRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	}

	// background worker for notification delivery and deadline checks.
	cron.InitNotificationWorker(lifecycleService, logger)

	// handlers.
	dialogueHandler := handlers.NewDialogueHandler(conversationService, logger)
	requestHandler := handlers.NewRequestHandler(lifecycleService, logger)
	quoteHandler := handlers.NewQuoteHandler(intakeService, logger)

	handlerBundle := &handlers.HandlerBundle{
		StartConversation: dialogueHandler.StartConversation,
		SendMessage:       dialogueHandler.SendMessage,

		GetRequest:      requestHandler.GetRequest,
		ListRequests:    requestHandler.ListRequests,
		BeginReview:     requestHandler.BeginReview,
		PublishRequest:  requestHandler.PublishRequest,
		WithdrawRequest: requestHandler.WithdrawRequest,
		AcceptRequest:   requestHandler.AcceptRequest,
		CompleteRequest: requestHandler.CompleteRequest,

		SubmitQuote: quoteHandler.SubmitQuote,
		ListQuotes:  quoteHandler.ListQuotes,
	}

	routes.RegisterRoutes(router, handlerBundle)

	utils.StartHealthMonitor([]*redis.Client{utils.GetSessionCacheClient()}, database.MongoClient)

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
