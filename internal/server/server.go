package server

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/config"
)

func New(db *gorm.DB, cfg *config.Config) *fiber.App {
	// The transport body limit sits well above the per-file cap: a batch
	// carries several files plus multipart framing, and an over-limit file
	// must still reach the handler to get its distinct error code.
	app := fiber.New(fiber.Config{
		BodyLimit: int(cfg.MaxUploadBytes()*4) + 1<<20,
	})

	SetupRoutes(app, cfg)

	return app
}
