package application_test

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/fsstore"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/nixparser"
	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/scanner"
	"github.com/imp-refactor/imp-refactor/internal/application"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/stretchr/testify/require"
)

type fakeEvaluator struct {
	tree  string
	err   error
	calls []string
}

func (f *fakeEvaluator) Evaluate(_ context.Context, _, name, rev string) (*domain.RegistrySnapshot, error) {
	f.calls = append(f.calls, rev)
	if f.err != nil {
		return nil, f.err
	}
	return domain.DecodeRegistry(name, []byte(f.tree))
}

type fakeResolver struct {
	revs map[string]string
	head string
}

func (f *fakeResolver) ResolveRevision(_, ref string) (string, error) {
	if rev, ok := f.revs[ref]; ok {
		return rev, nil
	}
	return "", fmt.Errorf("reference not found")
}

func (f *fakeResolver) CommitHash(string) (string, error) {
	if f.head == "" {
		return "", fmt.Errorf("not a git repository")
	}
	return f.head, nil
}

type memCache struct {
	snaps       map[string]*domain.RegistrySnapshot
	invalidated int
}

func newMemCache() *memCache {
	return &memCache{snaps: make(map[string]*domain.RegistrySnapshot)}
}

func (c *memCache) Load(_, name, rev string) (*domain.RegistrySnapshot, error) {
	return c.snaps[name+"@"+rev], nil
}

func (c *memCache) Save(_ string, snap *domain.RegistrySnapshot) error {
	c.snaps[snap.Name+"@"+snap.Rev] = snap
	return nil
}

func (c *memCache) Invalidate(string) error {
	c.invalidated++
	c.snaps = make(map[string]*domain.RegistrySnapshot)
	return nil
}

type memHistory struct {
	entries []domain.ApplyEntry
}

func (h *memHistory) Save(_ string, entry domain.ApplyEntry) error {
	h.entries = append(h.entries, entry)
	return nil
}

func (h *memHistory) Load(string) ([]domain.ApplyEntry, error) {
	return h.entries, nil
}

// failingStore fails reads of one path.
type failingStore struct {
	domain.FileStore
	fail string
}

func (s failingStore) Read(path string) ([]byte, error) {
	if path == s.fail {
		return nil, domain.NewError(domain.KindIO, path, "reading file", os.ErrPermission)
	}
	return s.FileStore.Read(path)
}

const sampleRegistry = `{
	"users": {"alice": {}, "bob": {}},
	"services": {"database": {"postgresql": {}}, "web": {"nginx": {}}}
}`

func writeFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

type fixture struct {
	eval    *fakeEvaluator
	cache   *memCache
	history *memHistory
	store   domain.FileStore
	detect  *application.DetectService
	apply   *application.ApplyService
}

func newFixture(store domain.FileStore) *fixture {
	if store == nil {
		store = fsstore.New()
	}
	f := &fixture{
		eval:    &fakeEvaluator{tree: sampleRegistry},
		cache:   newMemCache(),
		history: &memHistory{},
		store:   store,
	}
	resolver := &fakeResolver{revs: map[string]string{"HEAD^": "abc123"}, head: "def456"}
	registry := application.NewRegistryService(f.eval, resolver, f.cache, nil)
	f.detect = application.NewDetectService(scanner.New(), nixparser.New(), store, registry, nil)
	f.apply = application.NewApplyService(f.detect, store, f.history, resolver, nil)
	return f
}

func scanOpts(dir string) application.ScanOptions {
	opts := application.ScanOptionsFromConfig(dir, domain.DefaultConfig())
	opts.Paths = []string{dir}
	return opts
}

func scannerFor() domain.FileCollector { return scanner.New() }

func parserFor() domain.SourceParser { return nixparser.New() }
