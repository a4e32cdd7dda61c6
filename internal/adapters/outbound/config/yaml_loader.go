package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the project configuration file looked up in the project directory.
const FileName = ".imp-refactor.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .imp-refactor.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .imp-refactor.yaml from projectPath.
// Returns DefaultConfig if the file does not exist.
func (l *YAMLLoader) Load(projectPath string) (domain.ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(projectPath, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.ProjectConfig{}, err
	}

	var cfg domain.ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.ProjectConfig{}, domain.NewError(domain.KindConfig, FileName, "parsing", err)
	}

	// Validate before defaults are filled in so typos in the raw file are caught.
	if err := cfg.Validate(); err != nil {
		return domain.ProjectConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return cfg.WithDefaults(), nil
}
