// Package storage holds the content store: where asset bytes live once the
// catalog row exists. Paths handed to a Store are always relative,
// forward-slash separated (e.g. "2025/08/31/3f2a....jpg").
package storage

import (
	"fmt"
	"io"

	"github.com/suzuhara/media-api/internal/config"
)

type Store interface {
	// Save writes the reader's contents at the relative path, creating any
	// missing parents, and returns the number of bytes written.
	Save(relPath string, r io.Reader) (int64, error)
	// Open returns the stored contents for reading.
	Open(relPath string) (io.ReadCloser, error)
	// Delete removes the stored object. Callers treat deletion as
	// best-effort; a missing object is not an error.
	Delete(relPath string) error
	Exists(relPath string) bool
	// LocalPath returns an absolute filesystem path for the relative path
	// when the store is disk-backed. The second return is false for remote
	// stores, in which case subprocess-based tooling (ffmpeg, ffprobe)
	// cannot run against the object.
	LocalPath(relPath string) (string, bool)
}

// New selects the content store driver from config.
func New(cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "", "local":
		return NewLocalStore(cfg.MediaRoot)
	case "s3":
		return NewS3Store(cfg)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.StorageDriver)
	}
}
