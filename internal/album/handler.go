package album

import (
	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/auth"
	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/media"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/response"
)

var titlePolicy = bluemonday.StrictPolicy()

type CreateAlbumRequest struct {
	Title      string `json:"title"`
	Visibility string `json:"visibility"`
}

type UpdateAlbumRequest struct {
	Title        *string `json:"title"`
	Visibility   *string `json:"visibility"`
	CoverMediaID *uint   `json:"cover_media_id"`
}

// AlbumSummary is the listing shape: the album row plus its size and a
// representative first item for rendering a cover when none is pinned.
type AlbumSummary struct {
	models.Album
	MediaCount int64         `json:"media_count"`
	FirstMedia *FirstMediaRef `json:"first_media,omitempty"`
}

type FirstMediaRef struct {
	ID          uint   `json:"id"`
	Type        string `json:"type"`
	StoragePath string `json:"storage_path"`
	PreviewPath string `json:"preview_path"`
}

// visibleAlbums narrows the album query for non-developer viewers: their
// own albums plus anything not private.
func visibleAlbums(q *gorm.DB, user *models.User) *gorm.DB {
	if user.IsElevated() {
		return q
	}
	return q.Where("owner_id = ? OR visibility <> ?", user.ID, models.VisibilityPrivate)
}

func ListHandler(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}

	q := database.DB.Model(&models.Album{})
	q = visibleAlbums(q, user)
	if v := c.Query("visibility"); v != "" {
		if !models.ValidVisibility(v) {
			return response.BadRequest(c, response.CodeInvalidVisibility, "INVALID_VISIBILITY")
		}
		q = q.Where("visibility = ?", v)
	}

	var albums []models.Album
	if err := q.Order("created_at desc, id desc").Find(&albums).Error; err != nil {
		return response.InternalError(c)
	}

	summaries := make([]AlbumSummary, 0, len(albums))
	for _, a := range albums {
		s := AlbumSummary{Album: a}

		if err := database.DB.Model(&models.Media{}).
			Where("album_id = ?", a.ID).
			Count(&s.MediaCount).Error; err != nil {
			return response.InternalError(c)
		}

		var items []models.Media
		if err := database.DB.Where("album_id = ?", a.ID).Find(&items).Error; err != nil {
			return response.InternalError(c)
		}
		if first := media.FirstInAlbum(items); first != nil {
			s.FirstMedia = &FirstMediaRef{
				ID:          first.ID,
				Type:        first.Type,
				StoragePath: first.StoragePath,
				PreviewPath: first.PreviewPath,
			}
		}

		summaries = append(summaries, s)
	}

	return response.Success(c, summaries, "")
}

func CreateHandler(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}

	var body CreateAlbumRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	if body.Title == "" {
		return response.ValidationError(c, map[string]string{
			"title": "title is required",
		})
	}
	if body.Visibility == "" {
		body.Visibility = models.VisibilityPrivate
	}
	if !models.ValidVisibility(body.Visibility) {
		return response.BadRequest(c, response.CodeInvalidVisibility, "INVALID_VISIBILITY")
	}

	a := models.Album{
		OwnerID:    user.ID,
		Title:      titlePolicy.Sanitize(body.Title),
		Visibility: body.Visibility,
	}
	if err := database.DB.Create(&a).Error; err != nil {
		return response.InternalError(c)
	}

	return response.Created(c, a, "Album created successfully")
}

func UpdateHandler(c *fiber.Ctx) error {
	var a models.Album
	if err := database.DB.First(&a, c.Params("id")).Error; err != nil {
		return response.NotFound(c, "ALBUM_NOT_FOUND")
	}

	var body UpdateAlbumRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		updates["title"] = titlePolicy.Sanitize(*body.Title)
	}
	if body.Visibility != nil {
		if !models.ValidVisibility(*body.Visibility) {
			return response.BadRequest(c, response.CodeInvalidVisibility, "INVALID_VISIBILITY")
		}
		updates["visibility"] = *body.Visibility
	}
	if body.CoverMediaID != nil {
		if *body.CoverMediaID == 0 {
			updates["cover_media_id"] = nil
		} else {
			// The cover must be one of the album's own items.
			var m models.Media
			if err := database.DB.First(&m, *body.CoverMediaID).Error; err != nil {
				return response.NotFound(c, "MEDIA_NOT_FOUND")
			}
			if m.AlbumID == nil || *m.AlbumID != a.ID {
				return response.BadRequest(c, response.CodeMediaNotInAlbum, "MEDIA_NOT_IN_ALBUM")
			}
			updates["cover_media_id"] = *body.CoverMediaID
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(&a).Updates(updates).Error; err != nil {
			return response.InternalError(c)
		}
	}

	if err := database.DB.First(&a, a.ID).Error; err != nil {
		return response.InternalError(c)
	}
	return response.Success(c, a, "Album updated successfully")
}

// DeleteHandler removes the album but keeps its media: items are detached
// back into the unfiled pool rather than deleted with the container.
func DeleteHandler(c *fiber.Ctx) error {
	var a models.Album
	if err := database.DB.First(&a, c.Params("id")).Error; err != nil {
		return response.NotFound(c, "ALBUM_NOT_FOUND")
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Media{}).
			Where("album_id = ?", a.ID).
			Update("album_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&a).Error
	})
	if err != nil {
		return response.InternalError(c)
	}

	return response.Success(c, nil, "Album deleted successfully")
}
