package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/eduflex-api/internal/config"
	"github.com/noah-isme/eduflex-api/internal/database"
	"github.com/noah-isme/eduflex-api/internal/handler"
	"github.com/noah-isme/eduflex-api/internal/middleware"
	"github.com/noah-isme/eduflex-api/internal/models"
	"github.com/noah-isme/eduflex-api/internal/repository"
	"github.com/noah-isme/eduflex-api/internal/router"
	"github.com/noah-isme/eduflex-api/internal/scheduler"
	"github.com/noah-isme/eduflex-api/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Assignment{},
		&models.AssignmentSubmission{},
		&models.Quiz{},
		&models.QuizSubmission{},
		&models.Insight{},
		&models.Suggestion{},
		&models.Notification{},
	); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			log.Fatalf("failed to connect to redis: %v", err)
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis url not set, insight caching disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not set, event publishing disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	courseRepo := repository.NewCourseRepository(db)
	assignmentRepo := repository.NewAssignmentRepository(db)
	quizRepo := repository.NewQuizRepository(db)
	insightRepo := repository.NewInsightRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	notifier := service.NewNotificationService(notificationRepo, natsConn, cfg.NotificationChannel, logger)
	engine := service.NewInsightEngine(courseRepo, assignmentRepo, quizRepo, insightRepo, redisClient, notifier, cfg.InsightWorkers, logger)
	insightService := service.NewInsightService(insightRepo, notifier, redisClient, cfg.InsightCacheTTL, validate, logger)

	insightHandler := handler.NewInsightHandler(engine, insightService, logger)
	notificationHandler := handler.NewNotificationHandler(notifier, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		InsightHandler:      insightHandler,
		NotificationHandler: notificationHandler,
		JWTMiddleware:       middleware.JWTProtected(cfg.JWTSecret),
	})

	schedCtx, stopScheduler := context.WithCancel(context.Background())
	weekly := scheduler.New(engine, scheduler.Options{
		PollInterval: cfg.InsightPollInterval,
		RunOnStart:   cfg.RunInsightsOnStart,
	}, logger)
	go weekly.Start(schedCtx)

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app, stopScheduler, weekly)
}

func waitForShutdown(app *fiber.App, stopScheduler context.CancelFunc, weekly *scheduler.Scheduler) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	stopScheduler()
	<-weekly.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
