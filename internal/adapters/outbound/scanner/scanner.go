package scanner

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/imp-refactor/imp-refactor/internal/domain"
)

const sourceExt = ".nix"

// FileScanner implements domain.FileCollector by walking the filesystem.
type FileScanner struct{}

func New() *FileScanner {
	return &FileScanner{}
}

type pattern struct {
	raw  string
	glob glob.Glob
}

// Collect returns the sorted, de-duplicated .nix files under roots.
//
// With defaultExcludes, directories and files whose name starts with '.'
// or '_' are skipped; a root is never skipped by that rule. Each exclude
// pattern is matched against the entry name, its walked path and its path
// relative to the root.
func (s *FileScanner) Collect(roots, exclude []string, defaultExcludes bool) ([]string, error) {
	patterns, err := compile(exclude)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var files []string
	add := func(path string) {
		if _, ok := seen[path]; !ok {
			seen[path] = struct{}{}
			files = append(files, path)
		}
	}

	for _, root := range roots {
		root = filepath.Clean(root)
		err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if path != root && skip(root, path, d.Name(), patterns, defaultExcludes) {
				if d.IsDir() {
					return filepath.SkipDir
				}
				return nil
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), sourceExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, domain.NewError(domain.KindIO, root, "walking directory", err)
		}
	}

	sort.Strings(files)
	return files, nil
}

func compile(exclude []string) ([]pattern, error) {
	patterns := make([]pattern, 0, len(exclude))
	for _, p := range exclude {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, domain.NewError(domain.KindConfig, "", fmt.Sprintf("invalid exclude pattern %q", p), err)
		}
		patterns = append(patterns, pattern{raw: p, glob: g})
	}
	return patterns, nil
}

func skip(root, path, name string, patterns []pattern, defaultExcludes bool) bool {
	if defaultExcludes && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_")) {
		return true
	}
	if len(patterns) == 0 {
		return false
	}

	slashed := filepath.ToSlash(path)
	rel := slashed
	if r, err := filepath.Rel(root, path); err == nil {
		rel = filepath.ToSlash(r)
	}
	for _, p := range patterns {
		if p.glob.Match(name) || p.glob.Match(slashed) || p.glob.Match(rel) {
			return true
		}
	}
	return false
}
