package api

import (
	"github.com/gofiber/fiber/v2"

	"smart-cropper/internal/api/handlers"
	"smart-cropper/internal/config"
)

func NewServer(cfg *config.Config) *fiber.App {
	app := fiber.New()

	handlers.RegisterHealthRoutes(app)
	handlers.RegisterCropRoutes(app, cfg)

	return app
}
