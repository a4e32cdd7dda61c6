package domain

// Change is one accepted suggestion: replace Reference with NewPath.
type Change struct {
	Reference Reference `json:"reference"`
	NewPath   string    `json:"new_path"`
}

// FilePlan groups the changes for one file. Hash is the SHA-256 of the
// text the offsets were computed against.
type FilePlan struct {
	Path    string   `json:"path"`
	Hash    string   `json:"hash"`
	Changes []Change `json:"changes"`
}

// FixPlan is the set of rewrites a detect run can apply, sorted by file.
type FixPlan struct {
	RegistryName string      `json:"registry_name"`
	GitRef       string      `json:"git_ref,omitempty"`
	Files        []FilePlan  `json:"files"`
	FileErrors   []FileIssue `json:"file_errors,omitempty"`
}

// ChangeCount returns the number of changes across all files.
func (p *FixPlan) ChangeCount() int {
	n := 0
	for _, f := range p.Files {
		n += len(f.Changes)
	}
	return n
}

// FileAction is the caller's decision for one file of a plan.
type FileAction int

const (
	ActionApply FileAction = iota
	ActionSkip
	ActionAbort
)

func (a FileAction) String() string {
	switch a {
	case ActionApply:
		return "apply"
	case ActionSkip:
		return "skip"
	case ActionAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// AppliedFile records a file that was rewritten.
type AppliedFile struct {
	Path    string `json:"path"`
	Applied int    `json:"applied"`
	Skipped int    `json:"skipped,omitempty"`
}

// ApplyReport summarises an apply run.
type ApplyReport struct {
	Applied        []AppliedFile `json:"applied"`
	SkippedFiles   []string      `json:"skipped_files,omitempty"`
	Failed         []FileIssue   `json:"failed,omitempty"`
	Aborted        bool          `json:"aborted,omitempty"`
	AppliedChanges int           `json:"applied_changes"`
}
