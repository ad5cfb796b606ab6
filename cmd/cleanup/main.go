// Command cleanup removes orphaned media: rows that belong to no album,
// together with their stored assets and previews. Run it from cron once
// the gallery's curation workflow has settled.
package main

import (
	"log"

	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/config"
	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/storage"
)

func main() {
	cfg := config.Load()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	database.DB = db

	store, err := storage.New(cfg)
	if err != nil {
		log.Fatal("❌ Failed to initialize storage:", err)
	}
	media.Setup(store, media.NewFFmpegGenerator(cfg.FFmpegTimeout), nil)

	var orphans []models.Media
	if err := db.Where("album_id IS NULL").Find(&orphans).Error; err != nil {
		log.Fatal("❌ Failed to query orphaned media:", err)
	}
	if len(orphans) == 0 {
		log.Println("✅ No orphaned media found")
		return
	}

	ids := make([]uint, 0, len(orphans))
	for _, m := range orphans {
		ids = append(ids, m.ID)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Album{}).
			Where("cover_media_id IN ?", ids).
			Update("cover_media_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Exec("DELETE FROM media_tags WHERE media_id IN ?", ids).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Media{}, ids).Error
	})
	if err != nil {
		log.Fatal("❌ Failed to delete orphaned rows:", err)
	}

	// Unlink after the rows are gone; a failed unlink just leaves a stray
	// file for the next run of a disk-level audit.
	for _, m := range orphans {
		_ = store.Delete(m.StoragePath)
		if m.PreviewPath != "" {
			_ = store.Delete(m.PreviewPath)
		}
	}

	log.Printf("🧹 Removed %d orphaned media rows", len(orphans))
}
