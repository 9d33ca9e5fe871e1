package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/noah-isme/campus-admin-api/internal/config"
	"github.com/noah-isme/campus-admin-api/internal/database"
	"github.com/noah-isme/campus-admin-api/internal/models"
	"github.com/noah-isme/campus-admin-api/internal/repository"
	"github.com/noah-isme/campus-admin-api/internal/service"
)

// seed bootstraps a fresh database with the demo accounts and student block
// used by the campus frontends.
func main() {
	students := flag.Bool("students", true, "create the demo student block")
	demoUsers := flag.Bool("demo-users", true, "create one demo account per role")
	flag.Parse()

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

	// local bootstrap bypasses the HTTP seed token
	const localToken = "seed-cli"
	authService := service.NewAuthService(
		repository.NewUserRepository(db),
		repository.NewSignInLogRepository(db),
		validator.New(validator.WithRequiredStructEnabled()),
		service.AuthConfig{
			AllowedEmailDomain: cfg.AllowedEmailDomain,
			JWTSecret:          cfg.JWTSecret,
			TokenTTL:           cfg.TokenTTL,
			SeedEnabled:        true,
			SeedToken:          localToken,
		},
		logger,
	)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *demoUsers {
		created, err := authService.SeedDemoUsers(ctx, localToken)
		if err != nil {
			log.Fatalf("failed to seed demo users: %v", err)
		}
		logger.Info().Int("created", created).Msg("demo accounts ready")
	}

	if *students {
		created, err := authService.SeedStudents(ctx, localToken)
		if err != nil {
			log.Fatalf("failed to seed students: %v", err)
		}
		logger.Info().Int("created", created).Msg("student accounts ready")
	}
}
