package history_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/imp-refactor/imp-refactor/internal/adapters/outbound/history"
	"github.com/imp-refactor/imp-refactor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entry(ts string, changes ...domain.ApplyEntryChange) domain.ApplyEntry {
	return domain.ApplyEntry{
		Timestamp:    ts,
		RegistryName: "registry",
		Files:        []domain.ApplyEntryFile{{Path: "hosts/a.nix", Changes: changes}},
	}
}

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	e := entry("2026-02-25T10:00:00Z", domain.ApplyEntryChange{Line: 3, Column: 7, Old: "home.alice", New: "users.alice"})
	e.CommitHash = "abc1234"
	require.NoError(t, h.Save(dir, e))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, e, entries[0])
	assert.FileExists(t, filepath.Join(dir, ".imp-refactor", "history", "applied.json"))
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, entry("t1", domain.ApplyEntryChange{Old: "a", New: "b"})))
	require.NoError(t, h.Save(dir, entry("t2")))
	require.NoError(t, h.Save(dir, entry("t3", domain.ApplyEntryChange{Old: "c", New: "d"}, domain.ApplyEntryChange{Old: "e", New: "f"})))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "t1", entries[0].Timestamp)
	assert.Equal(t, 2, entries[2].ChangeCount())
}

func TestHistory_LoadEmpty(t *testing.T) {
	entries, err := history.New().Load(t.TempDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	require.NoError(t, h.Save(nestedDir, entry("t1")))

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestHistory_CorruptedFile(t *testing.T) {
	dir := t.TempDir()
	fp := filepath.Join(dir, ".imp-refactor", "history", "applied.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(fp), 0755))
	require.NoError(t, os.WriteFile(fp, []byte("{"), 0644))

	_, err := history.New().Load(dir)
	assert.Error(t, err)
	assert.Error(t, history.New().Save(dir, entry("t")))
}

func TestHistory_KeepsMostRecentEntries(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	for i := 0; i < history.MaxEntries+5; i++ {
		require.NoError(t, h.Save(dir, entry(fmt.Sprintf("t%03d", i))))
	}

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, history.MaxEntries)
	assert.Equal(t, "t005", entries[0].Timestamp)
	assert.Equal(t, fmt.Sprintf("t%03d", history.MaxEntries+4), entries[len(entries)-1].Timestamp)
}
