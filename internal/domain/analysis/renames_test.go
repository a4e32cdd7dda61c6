package analysis

import (
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestRenameTrie_Rewrite(t *testing.T) {
	trie := newRenameTrie(domain.RenameRules{
		"home":             "users",
		"home.alice":       "admins.alice",
		"a.b.c":            "x",
		"svc.db":           "services.database",
		"deep.nested.path": "flat",
	})

	tests := []struct {
		path string
		want string
		ok   bool
	}{
		{"home", "users", true},
		{"home.bob", "users.bob", true},
		{"home.alice", "admins.alice", true},
		{"home.alice.settings", "admins.alice.settings", true},
		{"a.b", "", false},
		{"a.b.c.d", "x.d", true},
		{"svc.db.postgresql", "services.database.postgresql", true},
		{"svc", "", false},
		{"homes", "", false},
		{"deep.nested", "", false},
		{"deep.nested.path.leaf", "flat.leaf", true},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := trie.rewrite(tt.path)
		assert.Equal(t, tt.ok, ok, "path %q", tt.path)
		assert.Equal(t, tt.want, got, "path %q", tt.path)
	}
}

func TestRenameTrie_Empty(t *testing.T) {
	_, ok := newRenameTrie(nil).rewrite("home.alice")
	assert.False(t, ok)
}
