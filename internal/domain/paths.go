package domain

import (
	"fmt"
	"sort"
	"strings"
)

// PathSet holds every valid dotted path of the registry, intermediate
// nodes and leaves alike. It is read-only once built.
type PathSet map[string]struct{}

// NewPathSet builds a PathSet from a list of paths.
func NewPathSet(paths ...string) PathSet {
	s := make(PathSet, len(paths))
	for _, p := range paths {
		s[p] = struct{}{}
	}
	return s
}

// Has reports whether path is a literal member of the set.
func (s PathSet) Has(path string) bool {
	_, ok := s[path]
	return ok
}

// Sorted returns the members in lexicographic order.
func (s PathSet) Sorted() []string {
	out := make([]string, 0, len(s))
	for p := range s {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// RenameRules maps an old path or prefix to its new path or prefix.
type RenameRules map[string]string

// ParseRename parses an `old=new` rename argument.
func ParseRename(s string) (string, string, error) {
	oldPath, newPath, ok := strings.Cut(s, "=")
	if !ok {
		return "", "", fmt.Errorf("invalid rename format %q, expected 'old=new'", s)
	}
	oldPath = strings.TrimSpace(oldPath)
	newPath = strings.TrimSpace(newPath)
	if !IsDottedPath(oldPath) || !IsDottedPath(newPath) {
		return "", "", fmt.Errorf("invalid rename %q: both sides must be dotted paths", s)
	}
	return oldPath, newPath, nil
}

// ParseRenames parses a list of `old=new` arguments. Later entries win.
func ParseRenames(args []string) (RenameRules, error) {
	rules := make(RenameRules, len(args))
	for _, a := range args {
		oldPath, newPath, err := ParseRename(a)
		if err != nil {
			return nil, err
		}
		rules[oldPath] = newPath
	}
	return rules, nil
}

// Merge returns a copy of r overlaid with other.
func (r RenameRules) Merge(other RenameRules) RenameRules {
	out := make(RenameRules, len(r)+len(other))
	for k, v := range r {
		out[k] = v
	}
	for k, v := range other {
		out[k] = v
	}
	return out
}

// Leaf returns the final dot-segment of a path.
func Leaf(path string) string {
	if i := strings.LastIndexByte(path, '.'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// IsDottedPath reports whether s is one or more non-empty segments joined by '.'.
func IsDottedPath(s string) bool {
	if s == "" {
		return false
	}
	for _, seg := range strings.Split(s, ".") {
		if seg == "" {
			return false
		}
	}
	return true
}

// IsIdentifier reports whether s is a valid Nix identifier.
func IsIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c == '_':
		case i > 0 && (c >= '0' && c <= '9' || c == '\'' || c == '-'):
		default:
			return false
		}
	}
	return true
}
