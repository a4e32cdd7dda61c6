package domain

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultRegistryName is the flake output attribute scanned for by default.
const DefaultRegistryName = "registry"

// ProjectConfig holds project-level configuration loaded from .imp-refactor.yaml.
type ProjectConfig struct {
	RegistryName      string            `yaml:"registry_name"       json:"registry_name,omitempty"`
	Flake             string            `yaml:"flake"               json:"flake,omitempty"`
	Paths             []string          `yaml:"paths"               json:"paths,omitempty"`
	Exclude           []string          `yaml:"exclude"             json:"exclude,omitempty"`
	NoDefaultExcludes bool              `yaml:"no_default_excludes" json:"no_default_excludes,omitempty"`
	Renames           map[string]string `yaml:"renames"             json:"renames,omitempty"`
	GitRef            string            `yaml:"git_ref"             json:"git_ref,omitempty"`
	Jobs              int               `yaml:"jobs"                json:"jobs,omitempty"`
}

// DefaultConfig returns the configuration used when no file exists.
func DefaultConfig() ProjectConfig {
	return ProjectConfig{
		RegistryName: DefaultRegistryName,
		Flake:        ".",
		Paths:        []string{"."},
	}
}

// WithDefaults fills unset fields from DefaultConfig.
func (c ProjectConfig) WithDefaults() ProjectConfig {
	d := DefaultConfig()
	if c.RegistryName == "" {
		c.RegistryName = d.RegistryName
	}
	if c.Flake == "" {
		c.Flake = d.Flake
	}
	if len(c.Paths) == 0 {
		c.Paths = d.Paths
	}
	return c
}

// RenameRules returns the configured renames as RenameRules.
func (c ProjectConfig) RenameRules() RenameRules {
	rules := make(RenameRules, len(c.Renames))
	for k, v := range c.Renames {
		rules[k] = v
	}
	return rules
}

// Validate checks the config for values that can never work.
func (c ProjectConfig) Validate() error {
	var errs []string

	if c.RegistryName != "" && !IsIdentifier(c.RegistryName) {
		errs = append(errs, fmt.Sprintf("registry_name %q is not a valid identifier", c.RegistryName))
	}
	for _, oldPath := range sortedKeys(c.Renames) {
		newPath := c.Renames[oldPath]
		if !IsDottedPath(oldPath) || !IsDottedPath(newPath) {
			errs = append(errs, fmt.Sprintf("renames: %q -> %q must both be dotted paths", oldPath, newPath))
		}
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Sprintf("jobs must be >= 0, got %d", c.Jobs))
	}
	for _, p := range c.Paths {
		if strings.TrimSpace(p) == "" {
			errs = append(errs, "paths: empty entry")
		}
	}

	if len(errs) > 0 {
		return NewError(KindConfig, "", strings.Join(errs, "; "), nil)
	}
	return nil
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
