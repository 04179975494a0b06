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
	"github.com/rs/zerolog"

	"github.com/campuslab/grader-go-api/internal/config"
	"github.com/campuslab/grader-go-api/internal/grader"
	"github.com/campuslab/grader-go-api/internal/handler"
	"github.com/campuslab/grader-go-api/internal/middleware"
	"github.com/campuslab/grader-go-api/internal/router"
	"github.com/campuslab/grader-go-api/internal/service"
	"github.com/campuslab/grader-go-api/pkg/ai"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	if !cfg.RemoteGradingEnabled() {
		logger.Warn().Msg("no gemini api key configured; grading runs on the heuristic path only")
	}

	remote := ai.NewGeminiGrader(ai.GeminiConfig{
		APIKey:   cfg.GeminiAPIKey,
		Model:    cfg.GeminiModel,
		Endpoint: cfg.GeminiBaseURL,
		Timeout:  cfg.GeminiTimeout,
		Logger:   logger,
	})

	validate := validator.New(validator.WithRequiredStructEnabled())

	engine := grader.NewEngine(remote, cfg.GeminiModel, logger)
	gradingService := service.NewGradingService(engine, validate, logger)
	gradeHandler := handler.NewGradeHandler(gradingService, validate, logger)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
	})

	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		GradeHandler: gradeHandler,
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
