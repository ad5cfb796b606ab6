package media

import (
	"log"

	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/models"
)

// Reconciler repairs catalog rows that drifted from their stored assets:
// a stale type classification, or a video row missing its preview. The
// sweep runs lazily before reads rather than on a schedule, so a freshly
// restored database heals on first use.
type Reconciler interface {
	Sweep(db *gorm.DB) error
}

type catalogSweep struct{}

func NewSweep() Reconciler {
	return catalogSweep{}
}

func (catalogSweep) Sweep(db *gorm.DB) error {
	var rows []models.Media
	if err := db.Find(&rows).Error; err != nil {
		return err
	}

	var dirty []*models.Media
	for i := range rows {
		m := &rows[i]
		changed := false

		if t := Classify(m.MimeType, m.Filename); t != m.Type {
			m.Type = t
			changed = true
		}

		if m.Type == models.MediaTypeVideo && m.PreviewPath == "" && Files.Exists(m.StoragePath) {
			if rel := Previews.Generate(m.StoragePath); rel != "" {
				m.PreviewPath = rel
				changed = true
			}
		}

		if changed {
			dirty = append(dirty, m)
		}
	}

	if len(dirty) == 0 {
		return nil
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		for _, m := range dirty {
			if err := tx.Model(m).Select("type", "preview_path").Updates(map[string]interface{}{
				"type":         m.Type,
				"preview_path": m.PreviewPath,
			}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	log.Printf("🧹 Catalog sweep repaired %d media rows", len(dirty))
	return nil
}

// sweepQuietly runs the sweep before a read path; failures are logged and
// never surfaced to the request.
func sweepQuietly(db *gorm.DB) {
	if Sweeper == nil {
		return
	}
	if err := Sweeper.Sweep(db); err != nil {
		log.Printf("⚠️ Catalog sweep failed: %v", err)
	}
}
