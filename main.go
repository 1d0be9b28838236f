package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/LovationAdmin/anggaran-api/config"
	"github.com/LovationAdmin/anggaran-api/events"
	"github.com/LovationAdmin/anggaran-api/handlers"
	"github.com/LovationAdmin/anggaran-api/middleware"
	"github.com/LovationAdmin/anggaran-api/routes"
	"github.com/LovationAdmin/anggaran-api/scheduler"
	"github.com/LovationAdmin/anggaran-api/services"
	"github.com/LovationAdmin/anggaran-api/utils"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	if err := utils.InitLogger(cfg.Environment, cfg.LogLevel); err != nil {
		log.Fatal("Failed to initialize logger:", err)
	}
	defer utils.Log.Sync()

	db, err := config.InitDB(cfg.DatabaseURL)
	if err != nil {
		utils.Log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()
	utils.Log.Info("Database connected")

	if err := config.RunMigrations(cfg.DatabaseURL); err != nil {
		utils.Log.Fatal("Failed to run migrations", zap.Error(err))
	}

	var publisher services.EventPublisher = events.NopPublisher{}
	if cfg.AMQPURL != "" {
		amqpPublisher, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			utils.Log.Fatal("Failed to connect to AMQP", zap.Error(err))
		}
		defer amqpPublisher.Close()
		publisher = amqpPublisher
		utils.Log.Info("Publishing imprest events", zap.String("exchange", cfg.AMQPExchange))
	}

	imprestService := services.NewImprestService(db, publisher)

	sched := scheduler.New(utils.Log)
	purgeJob := scheduler.NewDraftPurgeJob(imprestService, cfg.DraftRetention, utils.Log)
	if err := sched.AddJob(cfg.DraftPurgeSchedule, purgeJob); err != nil {
		utils.Log.Fatal("Failed to schedule draft purge", zap.Error(err))
	}
	// drafts abandoned while the service was down
	if err := sched.RunNow(purgeJob); err != nil {
		utils.Log.Warn("Startup draft purge failed", zap.Error(err))
	}
	sched.Start()
	defer sched.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateLimitWindow)
	go limiter.Run(ctx)

	wsHandler := handlers.NewWSHandler(imprestService, cfg.AutosaveDelay)
	defer wsHandler.Close()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.FrontendURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.RequestLogger())
	router.Use(limiter.Middleware())

	v1 := router.Group("/api/v1")
	{
		routes.SetupReferenceRoutes(v1, db)
		routes.SetupBudgetRoutes(v1, db, wsHandler)
		routes.SetupCalculatorRoutes(v1)
		routes.SetupImprestRoutes(v1, imprestService)
		routes.SetupWSRoutes(v1, wsHandler)
	}

	router.GET("/health", handlers.NewHealthHandler(db).Health)

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		utils.Log.Info("Server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			utils.Log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	utils.Log.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		utils.Log.Error("Server shutdown failed", zap.Error(err))
	}
}
