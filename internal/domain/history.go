package domain

// ApplyEntry is one write run of `apply`, as stored in the history log.
type ApplyEntry struct {
	Timestamp    string           `json:"timestamp"`
	CommitHash   string           `json:"commit_hash,omitempty"`
	RegistryName string           `json:"registry_name"`
	GitRef       string           `json:"git_ref,omitempty"`
	Files        []ApplyEntryFile `json:"files"`
}

type ApplyEntryFile struct {
	Path    string             `json:"path"`
	Changes []ApplyEntryChange `json:"changes"`
}

type ApplyEntryChange struct {
	Line   int    `json:"line"`
	Column int    `json:"column"`
	Old    string `json:"old"`
	New    string `json:"new"`
}

// ChangeCount returns the number of rewritten references in the entry.
func (e ApplyEntry) ChangeCount() int {
	n := 0
	for _, f := range e.Files {
		n += len(f.Changes)
	}
	return n
}
