package domain

// Reference is one occurrence of `<root>.a.b.c` in a source file.
// Offsets are byte offsets into the file text and cover the whole
// selection, root identifier included.
type Reference struct {
	Path        string `json:"path"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	Column      int    `json:"column"`
	StartOffset int    `json:"start_offset"`
	EndOffset   int    `json:"end_offset"`
}

// Len returns the byte length of the referenced span.
func (r Reference) Len() int { return r.EndOffset - r.StartOffset }

// BrokenReference is a Reference whose path is not in the registry.
// Exactly one of Suggestion and Reason is set.
type BrokenReference struct {
	Reference
	Suggestion string `json:"suggestion,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// HasSuggestion reports whether a replacement path was found.
func (b BrokenReference) HasSuggestion() bool { return b.Suggestion != "" }

// Diagnostics summarises a detection run.
type Diagnostics struct {
	FilesScanned     int `json:"files_scanned"`
	TotalRefs        int `json:"total_refs"`
	ValidRefs        int `json:"valid_refs"`
	BrokenRefs       int `json:"broken_refs"`
	SuggestionsFound int `json:"suggestions_found"`
	Unsuggestable    int `json:"unsuggestable"`
}

// NewDiagnostics derives the counters from the analysis output so that
// ValidRefs + BrokenRefs == TotalRefs always holds.
func NewDiagnostics(filesScanned, validRefs int, broken []BrokenReference) Diagnostics {
	d := Diagnostics{
		FilesScanned: filesScanned,
		ValidRefs:    validRefs,
		BrokenRefs:   len(broken),
		TotalRefs:    validRefs + len(broken),
	}
	for _, b := range broken {
		if b.HasSuggestion() {
			d.SuggestionsFound++
		} else {
			d.Unsuggestable++
		}
	}
	return d
}

// FileIssue is a per-file problem that did not stop the run.
type FileIssue struct {
	File    string    `json:"file"`
	Kind    ErrorKind `json:"kind"`
	Message string    `json:"message"`
}

// DetectionResult is the complete output of a detect run.
type DetectionResult struct {
	RegistryName string            `json:"registry_name"`
	GitRef       string            `json:"git_ref,omitempty"`
	Broken       []BrokenReference `json:"broken"`
	Diagnostics  Diagnostics       `json:"diagnostics"`
	FileErrors   []FileIssue       `json:"file_errors,omitempty"`
	Warnings     []FileIssue       `json:"warnings,omitempty"`
}
