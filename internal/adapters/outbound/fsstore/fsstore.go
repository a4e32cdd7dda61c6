// Package fsstore reads source files and writes them back atomically.
package fsstore

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

const defaultMode fs.FileMode = 0644

// Store implements domain.FileStore on the local filesystem.
type Store struct{}

func New() *Store {
	return &Store{}
}

func (s *Store) Read(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.NewError(domain.KindIO, path, "reading file", err)
	}
	return data, nil
}

// WriteAtomic replaces path with data via a temporary file in the same
// directory and a rename. An existing file keeps its permission bits.
func (s *Store) WriteAtomic(path string, data []byte) error {
	if err := WriteFile(path, data); err != nil {
		return domain.NewError(domain.KindIO, path, "writing file", err)
	}
	return nil
}

// WriteFile is WriteAtomic without the domain error wrapping, for callers
// that persist their own state files.
func WriteFile(path string, data []byte) (err error) {
	mode := defaultMode
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	} else if !errors.Is(statErr, fs.ErrNotExist) {
		return statErr
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name())
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err = tmp.Close(); err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), mode); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
