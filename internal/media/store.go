package media

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"mime"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/suzuhara/media-api/internal/storage"
)

var (
	ErrEmptyFile    = errors.New("file is empty")
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// Package-level collaborators, wired once at startup via Setup. Tests swap
// in a temp-dir store and a fake preview generator.
var (
	Files    storage.Store
	Previews PreviewGenerator
	Sweeper  Reconciler
)

func Setup(files storage.Store, previews PreviewGenerator, sweeper Reconciler) {
	Files = files
	Previews = previews
	Sweeper = sweeper
}

// StoreContent persists the raw bytes under a date-nested, uuid-named
// relative path and returns (relPath, size, sha256 hex). The path layout is
// YYYY/MM/DD/<uuid-hex><ext>, extension taken from the original filename
// when present, otherwise guessed from the MIME type.
func StoreContent(data []byte, filename, mimeType string, limit int64) (string, int64, string, error) {
	if len(data) == 0 {
		return "", 0, "", ErrEmptyFile
	}
	if limit > 0 && int64(len(data)) > limit {
		return "", 0, "", ErrFileTooLarge
	}

	sum := sha256.Sum256(data)
	hash := hex.EncodeToString(sum[:])

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		if exts, err := mime.ExtensionsByType(mimeType); err == nil && len(exts) > 0 {
			ext = exts[0]
		}
	}

	now := time.Now().UTC()
	relPath := fmt.Sprintf("%04d/%02d/%02d/%s%s",
		now.Year(), now.Month(), now.Day(),
		strings.ReplaceAll(uuid.NewString(), "-", ""), ext)

	n, err := Files.Save(relPath, bytes.NewReader(data))
	if err != nil {
		return "", 0, "", err
	}
	return relPath, n, hash, nil
}
