package media

import (
	"path/filepath"
	"strings"

	"github.com/suzuhara/media-api/internal/models"
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".webp": true, ".heic": true, ".heif": true,
	".tif": true, ".tiff": true, ".avif": true,
}

var videoExtensions = map[string]bool{
	".mp4": true, ".mov": true, ".m4v": true, ".avi": true,
	".mkv": true, ".webm": true, ".flv": true, ".wmv": true,
	".mpeg": true, ".mpg": true,
}

// Classify assigns the media type from the declared MIME type, falling back
// to the filename extension. MIME wins because browsers fill it from the OS
// while extensions can lie; anything unrecognized is treated as an image so
// it still renders as a plain asset.
func Classify(mimeType, filename string) string {
	mt := strings.ToLower(strings.TrimSpace(mimeType))
	if strings.HasPrefix(mt, "video/") {
		return models.MediaTypeVideo
	}
	if strings.HasPrefix(mt, "image/") {
		return models.MediaTypeImage
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if videoExtensions[ext] {
		return models.MediaTypeVideo
	}
	if imageExtensions[ext] {
		return models.MediaTypeImage
	}
	return models.MediaTypeImage
}
