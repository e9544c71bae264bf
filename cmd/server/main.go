package main

import (
	"go.uber.org/zap"

	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/example/mealmart/internal/config"
	"github.com/example/mealmart/internal/database"
	"github.com/example/mealmart/internal/logger"
	"github.com/example/mealmart/internal/routes"
	"github.com/example/mealmart/internal/services"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.AppEnv)
	db := database.Connect(cfg.DatabaseURL)

	app := fiber.New(fiber.Config{
		AppName: "Mealmart Backend",
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	mailer := services.NewSMTPMailer(cfg)
	verifier := services.NewGoogleVerifier(cfg.GoogleClientID)

	routes.Register(app, db, cfg, mailer, verifier)

	logger.L().Info("starting server", zap.String("port", cfg.AppPort))
	if err := app.Listen(":" + cfg.AppPort); err != nil {
		logger.L().Fatal("fiber.Listen error", zap.Error(err))
	}
}
