package main

import (
	"log"
	"os"
	"time"

	"github.com/suzuhara/media-api/internal/auth"
	"github.com/suzuhara/media-api/internal/config"
	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/server"
	"github.com/suzuhara/media-api/internal/storage"
	"github.com/suzuhara/media-api/internal/utils"
)

func main() {
	cfg := config.Load()

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}

	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}
	log.Println("✅ Required environment variables validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	// ========== STORAGE SETUP ==========
	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize storage:", err)
	}
	if cfg.StorageDriver == "s3" {
		log.Printf("☁️  Using S3 storage: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
		log.Println("⚠️  Video previews are unavailable under S3 storage")
	} else {
		log.Printf("💾 Using LOCAL storage at %s", cfg.MediaRoot)
	}

	media.Setup(store, media.NewFFmpegGenerator(cfg.FFmpegTimeout), media.NewSweep())
	media.Cfg = cfg
	auth.TokenTTL = time.Duration(cfg.JWTExpireHours) * time.Hour

	// ========== SEED DEFAULT DATA ==========
	if cfg.SeedDevUser != "" && cfg.SeedDevPassword != "" {
		if err := seedDeveloper(cfg); err != nil {
			log.Println("⚠️  Failed to seed developer user (may already exist):", err)
		} else {
			log.Printf("✅ Developer user %q ready", cfg.SeedDevUser)
		}
	}

	// ========== START SERVER ==========
	app := server.New(db, cfg)

	log.Printf("🚀 Media API starting on %s", cfg.ServerAddr)
	log.Printf("📚 Health check: %s/health", cfg.ServerAddr)
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}

func seedDeveloper(cfg *config.Config) error {
	var existing models.User
	if err := database.DB.Where("username = ?", cfg.SeedDevUser).First(&existing).Error; err == nil {
		return nil
	}

	hash, err := utils.HashPassword(cfg.SeedDevPassword)
	if err != nil {
		return err
	}

	u := models.User{
		Username:     cfg.SeedDevUser,
		Email:        cfg.SeedDevUser + "@localhost",
		PasswordHash: hash,
		Role:         models.RoleDeveloper,
	}
	return database.DB.Create(&u).Error
}
