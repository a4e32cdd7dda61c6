package domain

import (
	"encoding/json"
	"sort"
)

// RegistrySnapshot is the registry attribute tree as evaluated at one point in time.
// Tree is the decoded JSON value: nested map[string]any objects, anything else is a leaf.
type RegistrySnapshot struct {
	Name   string          `json:"name"`
	GitRef string          `json:"git_ref,omitempty"`
	Rev    string          `json:"rev,omitempty"`
	Raw    json.RawMessage `json:"tree"`
	Tree   any             `json:"-"`
}

// DecodeRegistry parses the JSON emitted by `nix eval --json` into a snapshot.
func DecodeRegistry(name string, data []byte) (*RegistrySnapshot, error) {
	var tree any
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, NewError(KindRegistry, "", "parsing registry JSON", err)
	}
	return &RegistrySnapshot{Name: name, Raw: append(json.RawMessage(nil), data...), Tree: tree}, nil
}

// Decode fills Tree from Raw. Used after loading a cached snapshot.
func (s *RegistrySnapshot) Decode() error {
	if s.Tree != nil {
		return nil
	}
	if err := json.Unmarshal(s.Raw, &s.Tree); err != nil {
		return NewError(KindRegistry, "", "parsing cached registry JSON", err)
	}
	return nil
}

// ValidPaths flattens the snapshot into its set of valid paths.
func (s *RegistrySnapshot) ValidPaths() PathSet {
	return FlattenRegistry(s.Tree, "")
}

// FlattenRegistry emits the path of every key of every nested object.
// Given {home = {alice = {}; bob = {};};} it returns home, home.alice, home.bob.
func FlattenRegistry(value any, prefix string) PathSet {
	paths := make(PathSet)
	flattenInto(paths, value, prefix)
	return paths
}

func flattenInto(paths PathSet, value any, prefix string) {
	obj, ok := value.(map[string]any)
	if !ok {
		return
	}
	for key, child := range obj {
		path := key
		if prefix != "" {
			path = prefix + "." + key
		}
		paths[path] = struct{}{}
		flattenInto(paths, child, path)
	}
}

// RegistryNode is one entry of the registry tree in display order.
type RegistryNode struct {
	Name     string
	Leaf     bool
	Children []RegistryNode
}

// RegistryChildren returns the sorted children of an object value.
// Non-objects and empty objects are leaves.
func RegistryChildren(value any) []RegistryNode {
	obj, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	nodes := make([]RegistryNode, 0, len(keys))
	for _, k := range keys {
		children := RegistryChildren(obj[k])
		nodes = append(nodes, RegistryNode{Name: k, Leaf: len(children) == 0, Children: children})
	}
	return nodes
}
