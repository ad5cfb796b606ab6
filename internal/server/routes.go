package server

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/suzuhara/media-api/internal/album"
	"github.com/suzuhara/media-api/internal/auth"
	"github.com/suzuhara/media-api/internal/config"
	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/tag"
)

func SetupRoutes(app *fiber.App, cfg *config.Config) {
	// Middleware
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE, OPTIONS, PATCH",
		AllowCredentials: true,
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"message": "Media API is running",
		})
	})

	// ==========================================
	// AUTH ROUTES
	// ==========================================
	authGroup := app.Group("/auth")
	authGroup.Post("/login", limiter.New(limiter.Config{
		Max:        5,
		Expiration: 15 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}), auth.LoginHandler)
	authGroup.Post("/logout", auth.LogoutHandler)
	authGroup.Get("/me", auth.JWTProtected(), auth.MeHandler)

	// ==========================================
	// MEDIA ROUTES (Authenticated)
	// ==========================================
	mediaGroup := app.Group("/media", auth.JWTProtected())
	mediaGroup.Get("/", media.ListHandler)
	mediaGroup.Post("/upload",
		auth.RoleProtected(models.RoleDeveloper, models.RoleManager),
		media.UploadHandler)
	mediaGroup.Get("/:id", media.GetHandler)
	mediaGroup.Get("/:id/file", media.FileHandler)
	mediaGroup.Get("/:id/preview", media.PreviewHandler)
	mediaGroup.Patch("/:id",
		auth.RoleProtected(models.RoleDeveloper, models.RoleManager),
		media.UpdateHandler)
	mediaGroup.Delete("/:id",
		auth.RoleProtected(models.RoleDeveloper, models.RoleManager),
		media.DeleteHandler)
	mediaGroup.Post("/:id/tags",
		auth.RoleProtected(models.RoleDeveloper, models.RoleManager),
		media.SetTagsHandler)

	// ==========================================
	// ALBUM ROUTES (Authenticated)
	// ==========================================
	albumGroup := app.Group("/albums", auth.JWTProtected())
	albumGroup.Get("/", album.ListHandler)
	albumGroup.Post("/",
		auth.RoleProtected(models.RoleDeveloper),
		album.CreateHandler)
	albumGroup.Patch("/:id",
		auth.RoleProtected(models.RoleDeveloper),
		album.UpdateHandler)
	albumGroup.Delete("/:id",
		auth.RoleProtected(models.RoleDeveloper),
		album.DeleteHandler)

	// ==========================================
	// TAG ROUTES (Authenticated)
	// ==========================================
	tagGroup := app.Group("/tags", auth.JWTProtected())
	tagGroup.Get("/", tag.ListHandler)
	tagGroup.Post("/",
		auth.RoleProtected(models.RoleDeveloper),
		tag.CreateHandler)
}
