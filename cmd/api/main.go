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

	"github.com/noah-isme/campus-admin-api/internal/config"
	"github.com/noah-isme/campus-admin-api/internal/database"
	"github.com/noah-isme/campus-admin-api/internal/handler"
	"github.com/noah-isme/campus-admin-api/internal/middleware"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
	"github.com/noah-isme/campus-admin-api/internal/router"
	"github.com/noah-isme/campus-admin-api/internal/service"
	cloud "github.com/noah-isme/campus-admin-api/pkg/cloudinary"
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
		&models.User{}, &models.SignInLog{}, &models.Section{}, &models.Portal{},
		&models.Visit{}, &models.Attendance{}, &models.GatePass{}, &models.Letter{},
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
		logger.Warn().Msg("redis url not set, section map cache disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL)
		if err != nil {
			log.Fatalf("failed to connect to nats: %v", err)
		}
		defer natsConn.Close()
	} else {
		logger.Warn().Msg("nats url not set, lifecycle events disabled")
	}

	var uploader service.FileUploader
	if cfg.CloudinaryCloudName != "" {
		cld, err := cloud.New(cloud.Config{
			CloudName: cfg.CloudinaryCloudName,
			APIKey:    cfg.CloudinaryAPIKey,
			APISecret: cfg.CloudinaryAPISecret,
			Folder:    cfg.CloudinaryUploadFolder,
		}, logger)
		if err != nil {
			log.Fatalf("failed to create cloudinary client: %v", err)
		}
		uploader = cld
	} else {
		logger.Warn().Msg("cloudinary not configured, letter attachments disabled")
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	events := service.NewEventPublisher(natsConn, cfg.NATSSubject, logger)

	userRepo := repository.NewUserRepository(db)
	signInRepo := repository.NewSignInLogRepository(db)
	sectionRepo := repository.NewSectionRepository(db)
	portalRepo := repository.NewPortalRepository(db)
	visitRepo := repository.NewVisitRepository(db)
	attendanceRepo := repository.NewAttendanceRepository(db)
	gatePassRepo := repository.NewGatePassRepository(db)
	letterRepo := repository.NewLetterRepository(db)

	authService := service.NewAuthService(userRepo, signInRepo, validate, service.AuthConfig{
		AllowedEmailDomain: cfg.AllowedEmailDomain,
		JWTSecret:          cfg.JWTSecret,
		TokenTTL:           cfg.TokenTTL,
		SeedEnabled:        cfg.SeedEnabled,
		SeedToken:          cfg.SeedToken,
	}, logger)
	visitService := service.NewVisitService(visitRepo, validate, logger)
	sectionService := service.NewSectionService(sectionRepo, redisClient, cfg.SectionCacheTTL, logger)
	portalService := service.NewPortalService(portalRepo, validate, logger)
	gatePassService := service.NewGatePassService(gatePassRepo, sectionRepo, events, validate, logger)
	letterService := service.NewLetterService(letterRepo, uploader, events, validate, logger)
	attendanceService := service.NewAttendanceService(attendanceRepo, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		AuthHandler:       handler.NewAuthHandler(authService, logger),
		VisitHandler:      handler.NewVisitHandler(visitService, logger),
		SectionHandler:    handler.NewSectionHandler(sectionService, logger),
		PortalHandler:     handler.NewPortalHandler(portalService, logger),
		GatePassHandler:   handler.NewGatePassHandler(gatePassService, logger),
		LetterHandler:     handler.NewLetterHandler(letterService, logger),
		AttendanceHandler: handler.NewAttendanceHandler(attendanceService, logger),
		JWTMiddleware:     middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			log.Fatalf("failed to start server: %v", err)
		}
	}()

	waitForShutdown(app)
}

func waitForShutdown(app *fiber.App) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		log.Printf("graceful shutdown failed: %v", err)
	}

	log.Println("server stopped")
}
