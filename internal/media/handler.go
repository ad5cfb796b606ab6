package media

import (
	"errors"
	"io"
	"mime/multipart"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/microcosm-cc/bluemonday"
	"gorm.io/gorm"

	"github.com/suzuhara/media-api/internal/auth"
	"github.com/suzuhara/media-api/internal/config"
	"github.com/suzuhara/media-api/internal/database"
	"github.com/suzuhara/media-api/internal/models"
	"github.com/suzuhara/media-api/internal/response"
)

var titlePolicy = bluemonday.StrictPolicy()

// Cfg carries the runtime limits handlers need (upload cap, probe timeout).
// Set from main alongside Setup; tests set it directly.
var Cfg = &config.Config{MaxUploadMB: 200, FFmpegTimeout: 30 * time.Second}

type UpdateMediaRequest struct {
	Title   *string `json:"title"`
	AlbumID *uint   `json:"album_id"`
	TakenAt *string `json:"taken_at"`
}

type SetTagsRequest struct {
	Tags []string `json:"tags"`
}

func parseTakenAt(raw string) (*time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, errors.New("unparseable timestamp")
}

func isDuplicateErr(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "duplicate key")
}

// visibilityScope narrows a media query for non-developer viewers: their own
// rows, rows outside any album, and rows in non-private albums.
func visibilityScope(q *gorm.DB, user *models.User) *gorm.DB {
	if user.IsElevated() {
		return q
	}
	return q.Joins("LEFT JOIN albums ON albums.id = media.album_id").
		Where("media.owner_id = ? OR media.album_id IS NULL OR albums.visibility <> ?",
			user.ID, models.VisibilityPrivate)
}

// canView mirrors visibilityScope for a single already-loaded row.
func canView(user *models.User, m *models.Media) bool {
	if user.IsElevated() || m.OwnerID == user.ID || m.AlbumID == nil {
		return true
	}
	var album models.Album
	if err := database.DB.First(&album, *m.AlbumID).Error; err != nil {
		return false
	}
	return album.Visibility != models.VisibilityPrivate
}

// resolveAlbum checks that the target album exists and that the user may
// file media into it: anyone elevated, the album's owner, or anyone when the
// album is not private. On a nil album the error response has been written.
func resolveAlbum(c *fiber.Ctx, user *models.User, albumID uint) (*models.Album, error) {
	var album models.Album
	if err := database.DB.First(&album, albumID).Error; err != nil {
		return nil, response.NotFound(c, "ALBUM_NOT_FOUND")
	}
	if !user.IsElevated() && album.OwnerID != user.ID && album.Visibility == models.VisibilityPrivate {
		return nil, response.Forbidden(c)
	}
	return &album, nil
}

func readUpload(fh *multipart.FileHeader) ([]byte, error) {
	f, err := fh.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

// UploadHandler ingests one or more files from the multipart "file" field.
// The whole batch commits as one transaction; a content-hash conflict on any
// file aborts the batch. Stored bytes for an aborted batch are left on disk
// for the cleanup job rather than unwound here.
func UploadHandler(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}

	sweepQuietly(database.DB)

	form, err := c.MultipartForm()
	if err != nil {
		return response.BadRequest(c, response.CodeNoFiles, "NO_FILES")
	}
	files := form.File["file"]
	if len(files) == 0 {
		return response.BadRequest(c, response.CodeNoFiles, "NO_FILES")
	}

	var albumID *uint
	if raw := c.FormValue("album_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil || id < 1 {
			return response.NotFound(c, "ALBUM_NOT_FOUND")
		}
		album, errResp := resolveAlbum(c, user, uint(id))
		if album == nil {
			return errResp
		}
		albumID = &album.ID
	}

	takenAt, err := parseTakenAt(c.FormValue("taken_at"))
	if err != nil {
		return response.BadRequest(c, response.CodeInvalidTakenAt, "INVALID_TAKEN_AT")
	}
	title := titlePolicy.Sanitize(c.FormValue("title"))

	rows := make([]*models.Media, 0, len(files))
	for _, fh := range files {
		data, err := readUpload(fh)
		if err != nil {
			return response.InternalError(c)
		}

		relPath, size, hash, err := StoreContent(data, fh.Filename, fh.Header.Get("Content-Type"), Cfg.MaxUploadBytes())
		switch {
		case errors.Is(err, ErrEmptyFile):
			return response.BadRequest(c, response.CodeEmptyFile, "EMPTY_FILE")
		case errors.Is(err, ErrFileTooLarge):
			return response.BadRequest(c, response.CodeFileTooLarge, "FILE_TOO_LARGE")
		case err != nil:
			return response.InternalError(c)
		}

		// Untitled uploads fall back to the original filename.
		fileTitle := title
		if fileTitle == "" {
			fileTitle = titlePolicy.Sanitize(fh.Filename)
		}

		m := &models.Media{
			OwnerID:     user.ID,
			AlbumID:     albumID,
			Type:        Classify(fh.Header.Get("Content-Type"), fh.Filename),
			Filename:    fh.Filename,
			Title:       fileTitle,
			MimeType:    fh.Header.Get("Content-Type"),
			Bytes:       size,
			SHA256:      hash,
			TakenAt:     takenAt,
			StoragePath: relPath,
		}
		ProbeMedia(m, data, Cfg.FFmpegTimeout)
		if m.IsVideo() {
			m.PreviewPath = Previews.Generate(relPath)
		}
		rows = append(rows, m)
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		for _, m := range rows {
			if err := tx.Create(m).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if isDuplicateErr(err) {
			return response.Conflict(c, response.CodeMediaDuplicate, "MEDIA_DUPLICATE")
		}
		return response.InternalError(c)
	}

	return response.Created(c, rows, "Media uploaded successfully")
}

// ListHandler is the catalog query: filters, visibility scoping, the
// deterministic multi-key order, then offset pagination over the sorted set.
func ListHandler(c *fiber.Ctx) error {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}

	typeFilter := c.Query("type")
	sortKey := c.Query("sort", "created_at")
	page := c.QueryInt("page", 1)
	size := c.QueryInt("size", 20)

	details := map[string]string{}
	if typeFilter != "" && typeFilter != models.MediaTypeImage && typeFilter != models.MediaTypeVideo {
		details["type"] = "must be image or video"
	}
	if sortKey != "created_at" && sortKey != "taken_at" {
		details["sort"] = "must be created_at or taken_at"
	}
	if page < 1 {
		details["page"] = "must be >= 1"
	}
	if size < 1 || size > 100 {
		details["size"] = "must be between 1 and 100"
	}
	if len(details) > 0 {
		return response.ValidationError(c, details)
	}

	sweepQuietly(database.DB)

	q := database.DB.Model(&models.Media{}).Preload("Tags")
	q = visibilityScope(q, user)
	if typeFilter != "" {
		q = q.Where("media.type = ?", typeFilter)
	}
	if raw := c.Query("album_id"); raw != "" {
		q = q.Where("media.album_id = ?", raw)
	}
	if text := c.Query("q"); text != "" {
		q = q.Where("LOWER(media.title) LIKE ?", "%"+strings.ToLower(text)+"%")
	}

	var items []models.Media
	if err := q.Find(&items).Error; err != nil {
		return response.InternalError(c)
	}

	if sortKey == "taken_at" {
		SortByTaken(items)
	} else {
		SortByCreated(items)
	}

	total := len(items)
	return response.Success(c, fiber.Map{
		"items": Paginate(items, page, size),
		"page":  page,
		"size":  size,
		"total": total,
	}, "")
}

// loadVisible fetches one media row, distinguishing a missing row (404)
// from one the viewer may not see (403). On a nil row the error response
// has already been written.
func loadVisible(c *fiber.Ctx, preloadTags bool) (*models.Media, error) {
	user, err := auth.CurrentUser(c)
	if err != nil {
		return nil, response.Unauthorized(c, "UNAUTHORIZED")
	}

	q := database.DB.Model(&models.Media{})
	if preloadTags {
		q = q.Preload("Tags")
	}

	var m models.Media
	if err := q.Where("media.id = ?", c.Params("id")).First(&m).Error; err != nil {
		return nil, response.NotFound(c, "MEDIA_NOT_FOUND")
	}
	if !canView(user, &m) {
		return nil, response.Forbidden(c)
	}
	return &m, nil
}

func GetHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, true)
	if m == nil {
		return errResp
	}
	return response.Success(c, m, "")
}

// FileHandler streams the original asset bytes. Disk-backed stores go
// through SendFile so range requests work for video scrubbing.
func FileHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, false)
	if m == nil {
		return errResp
	}
	return serveStored(c, m.StoragePath, m.MimeType)
}

func PreviewHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, false)
	if m == nil {
		return errResp
	}
	if m.PreviewPath == "" || !Files.Exists(m.PreviewPath) {
		return response.NotFound(c, "PREVIEW_NOT_FOUND")
	}
	return serveStored(c, m.PreviewPath, "image/jpeg")
}

func serveStored(c *fiber.Ctx, relPath, mimeType string) error {
	if !Files.Exists(relPath) {
		return response.NotFound(c, "FILE_NOT_FOUND")
	}
	if local, ok := Files.LocalPath(relPath); ok {
		return c.SendFile(local)
	}
	r, err := Files.Open(relPath)
	if err != nil {
		return response.NotFound(c, "FILE_NOT_FOUND")
	}
	if mimeType != "" {
		c.Set(fiber.HeaderContentType, mimeType)
	}
	return c.SendStream(r)
}

func UpdateHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, false)
	if m == nil {
		return errResp
	}
	user, err := auth.CurrentUser(c)
	if err != nil {
		return response.Unauthorized(c, "UNAUTHORIZED")
	}

	var body UpdateMediaRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	updates := map[string]interface{}{}
	if body.Title != nil {
		updates["title"] = titlePolicy.Sanitize(*body.Title)
	}
	if body.AlbumID != nil {
		if *body.AlbumID == 0 {
			updates["album_id"] = nil
		} else {
			album, errResp := resolveAlbum(c, user, *body.AlbumID)
			if album == nil {
				return errResp
			}
			updates["album_id"] = *body.AlbumID
		}
	}
	if body.TakenAt != nil {
		if *body.TakenAt == "" {
			updates["taken_at"] = nil
		} else {
			t, err := parseTakenAt(*body.TakenAt)
			if err != nil {
				return response.BadRequest(c, response.CodeInvalidTakenAt, "INVALID_TAKEN_AT")
			}
			updates["taken_at"] = t
		}
	}

	if len(updates) > 0 {
		if err := database.DB.Model(m).Updates(updates).Error; err != nil {
			return response.InternalError(c)
		}
	}

	var fresh models.Media
	if err := database.DB.Preload("Tags").First(&fresh, m.ID).Error; err != nil {
		return response.InternalError(c)
	}
	return response.Success(c, fresh, "Media updated successfully")
}

// DeleteHandler removes the catalog row; unlinking the stored asset and
// preview is best-effort and never blocks the row delete. Album covers
// pointing at the row are cleared first.
func DeleteHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, false)
	if m == nil {
		return errResp
	}

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Album{}).
			Where("cover_media_id = ?", m.ID).
			Update("cover_media_id", nil).Error; err != nil {
			return err
		}
		if err := tx.Model(m).Association("Tags").Clear(); err != nil {
			return err
		}
		return tx.Delete(m).Error
	})
	if err != nil {
		return response.InternalError(c)
	}

	_ = Files.Delete(m.StoragePath)
	if m.PreviewPath != "" {
		_ = Files.Delete(m.PreviewPath)
	}

	return response.Success(c, nil, "Media deleted successfully")
}

// SetTagsHandler replaces the row's tag set; unknown names are created on
// the fly.
func SetTagsHandler(c *fiber.Ctx) error {
	m, errResp := loadVisible(c, false)
	if m == nil {
		return errResp
	}

	var body SetTagsRequest
	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, response.CodeValidation, "VALIDATION_ERROR")
	}

	tags := make([]models.Tag, 0, len(body.Tags))
	for _, raw := range body.Tags {
		name := strings.TrimSpace(raw)
		if name == "" || len(name) > 128 {
			return response.BadRequest(c, response.CodeInvalidTagName, "INVALID_TAG_NAME")
		}
		var tag models.Tag
		if err := database.DB.Where("name = ?", name).FirstOrCreate(&tag, models.Tag{Name: name}).Error; err != nil {
			return response.InternalError(c)
		}
		tags = append(tags, tag)
	}

	if err := database.DB.Model(m).Association("Tags").Replace(tags); err != nil {
		return response.InternalError(c)
	}

	var fresh models.Media
	if err := database.DB.Preload("Tags").First(&fresh, m.ID).Error; err != nil {
		return response.InternalError(c)
	}
	return response.Success(c, fresh, "Tags updated successfully")
}
