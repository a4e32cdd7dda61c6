package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/fsstore"
	"github.com/imp-refactor/imp-refactor/internal/domain"
)

const historyFile = ".imp-refactor/history/applied.json"

// MaxEntries bounds the log; the oldest runs are dropped first.
const MaxEntries = 200

// FileHistory implements domain.ApplyHistory using JSON file storage.
type FileHistory struct{}

func New() *FileHistory {
	return &FileHistory{}
}

// Save appends entry to the project's apply log.
func (h *FileHistory) Save(projectPath string, entry domain.ApplyEntry) error {
	entries, err := h.Load(projectPath)
	if err != nil {
		return err
	}

	entries = append(entries, entry)
	if len(entries) > MaxEntries {
		entries = entries[len(entries)-MaxEntries:]
	}

	fp := filepath.Join(projectPath, historyFile)
	if err := os.MkdirAll(filepath.Dir(fp), 0755); err != nil {
		return err
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return err
	}

	return fsstore.WriteFile(fp, data)
}

// Load returns the logged runs, oldest first.
func (h *FileHistory) Load(projectPath string) ([]domain.ApplyEntry, error) {
	fp := filepath.Join(projectPath, historyFile)

	data, err := os.ReadFile(fp)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var entries []domain.ApplyEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("reading %s: %w", historyFile, err)
	}

	return entries, nil
}
