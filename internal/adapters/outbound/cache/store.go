package cache

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// Store is a file-based implementation of domain.RegistryCache. Only
// snapshots evaluated at a fixed commit are cached; their content cannot
// change, so entries never expire.
type Store struct{}

// New creates a new file-based cache store.
func New() *Store {
	return &Store{}
}

// Load reads a cached snapshot. Returns (nil, nil) if no cache exists.
func (s *Store) Load(projectPath, name, rev string) (*domain.RegistrySnapshot, error) {
	data, err := os.ReadFile(cachePath(projectPath, name, rev))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil // no cache is not an error
		}
		return nil, err
	}

	var snap domain.RegistrySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("reading cached registry: %w", err)
	}
	if err := snap.Decode(); err != nil {
		return nil, err
	}
	return &snap, nil
}

// Save writes a snapshot to disk, creating directories as needed.
func (s *Store) Save(projectPath string, snap *domain.RegistrySnapshot) error {
	if snap.Rev == "" {
		return errors.New("cache: snapshot has no revision")
	}
	if err := os.MkdirAll(cacheDir(projectPath), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(cachePath(projectPath, snap.Name, snap.Rev), data, 0644)
}

// Invalidate removes every cached snapshot for the project.
func (s *Store) Invalidate(projectPath string) error {
	if err := os.RemoveAll(cacheDir(projectPath)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func cacheDir(projectPath string) string {
	return filepath.Join(projectPath, ".imp-refactor", "cache")
}

func cachePath(projectPath, name, rev string) string {
	return filepath.Join(cacheDir(projectPath), fmt.Sprintf("registry-%s-%s.json", name, rev))
}
