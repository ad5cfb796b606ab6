package storage

import (
	"io"
	"os"
	"path/filepath"
)

type LocalStore struct {
	Root string
}

func NewLocalStore(root string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &LocalStore{Root: root}, nil
}

func (s *LocalStore) fullPath(relPath string) string {
	return filepath.Join(s.Root, filepath.FromSlash(relPath))
}

func (s *LocalStore) Save(relPath string, r io.Reader) (int64, error) {
	full := s.fullPath(relPath)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return 0, err
	}
	f, err := os.Create(full)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	return n, err
}

func (s *LocalStore) Open(relPath string) (io.ReadCloser, error) {
	return os.Open(s.fullPath(relPath))
}

func (s *LocalStore) Delete(relPath string) error {
	err := os.Remove(s.fullPath(relPath))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

func (s *LocalStore) Exists(relPath string) bool {
	_, err := os.Stat(s.fullPath(relPath))
	return err == nil
}

func (s *LocalStore) LocalPath(relPath string) (string, bool) {
	return s.fullPath(relPath), true
}
