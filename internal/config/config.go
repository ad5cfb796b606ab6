package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerAddr string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	JWTExpireHours int

	// MediaRoot is the local content root; assets are nested by upload date,
	// previews under a parallel previews/ subtree.
	MediaRoot     string
	MaxUploadMB   int64
	FFmpegTimeout time.Duration

	// StorageDriver selects the content store: "local" (default) or "s3".
	StorageDriver string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3PathStyle   bool

	CORSOrigins string

	SeedDevUser     string
	SeedDevPassword string
}

func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		ServerAddr:      getEnv("SERVER_ADDR", ":8080"),
		DBHost:          getEnv("DB_HOST", "localhost"),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", ""),
		DBName:          getEnv("DB_NAME", "gallery"),
		JWTExpireHours:  getEnvInt("JWT_EXPIRE_HOURS", 24),
		MediaRoot:       getEnv("MEDIA_ROOT", "./media-data"),
		MaxUploadMB:     int64(getEnvInt("MAX_UPLOAD_MB", 200)),
		FFmpegTimeout:   time.Duration(getEnvInt("FFMPEG_TIMEOUT_SEC", 30)) * time.Second,
		StorageDriver:   getEnv("STORAGE_DRIVER", "local"),
		S3Bucket:        getEnv("S3_BUCKET", ""),
		S3Region:        getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:      getEnv("S3_ENDPOINT", ""),
		S3AccessKey:     getEnv("S3_ACCESS_KEY", ""),
		S3SecretKey:     getEnv("S3_SECRET_KEY", ""),
		S3PathStyle:     getEnv("S3_PATH_STYLE", "true") == "true",
		CORSOrigins:     getEnv("CORS_ORIGINS", "http://localhost:5173"),
		SeedDevUser:     getEnv("SEED_DEV_USER", ""),
		SeedDevPassword: getEnv("SEED_DEV_PASSWORD", ""),
	}

	log.Println("✅ Config loaded")
	return cfg
}

// MaxUploadBytes is the per-file size limit for uploads.
func (c *Config) MaxUploadBytes() int64 {
	return c.MaxUploadMB * 1024 * 1024
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
