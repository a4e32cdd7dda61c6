// Package rewrite splices corrected registry references into file text.
package rewrite

import (
	"fmt"
	"sort"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// Edit replaces the span of Reference with `<root>.<NewPath>`.
type Edit struct {
	Reference domain.Reference
	NewPath   string
}

// EditsFromChanges converts planned changes into edits.
func EditsFromChanges(changes []domain.Change) []Edit {
	edits := make([]Edit, len(changes))
	for i, c := range changes {
		edits[i] = Edit{Reference: c.Reference, NewPath: c.NewPath}
	}
	return edits
}

// Result is the rewritten text plus how many edits were applied or skipped.
type Result struct {
	Text    string
	Applied int
	Skipped int
}

type replacement struct {
	start   int
	end     int
	newText string
}

// Apply rewrites content. Edits may be given in any order.
//
// Edits whose span falls outside the text are skipped. Overlapping spans
// are a caller bug and fail the whole call with an INVARIANT_VIOLATION
// error; no partial text is returned.
func Apply(content, rootName string, edits []Edit) (Result, error) {
	reps := make([]replacement, len(edits))
	for i, e := range edits {
		reps[i] = replacement{
			start:   e.Reference.StartOffset,
			end:     e.Reference.EndOffset,
			newText: rootName + "." + e.NewPath,
		}
	}

	sort.SliceStable(reps, func(i, j int) bool {
		if reps[i].start == reps[j].start {
			return reps[i].end > reps[j].end
		}
		return reps[i].start > reps[j].start
	})

	if err := checkOverlaps(reps); err != nil {
		return Result{}, err
	}

	buf := []byte(content)
	res := Result{}
	for _, r := range reps {
		if r.start < 0 || r.start > r.end || r.end > len(buf) {
			res.Skipped++
			continue
		}
		tail := append([]byte(nil), buf[r.end:]...)
		buf = append(append(buf[:r.start], r.newText...), tail...)
		res.Applied++
	}
	res.Text = string(buf)
	return res, nil
}

// checkOverlaps fails if two well-formed spans intersect. Spans are
// half-open; an empty span conflicts only with a span strictly around it.
// Malformed spans are left to the bounds check in Apply.
func checkOverlaps(reps []replacement) error {
	ordered := make([]replacement, 0, len(reps))
	for _, r := range reps {
		if r.start >= 0 && r.start <= r.end {
			ordered = append(ordered, r)
		}
	}
	sort.Slice(ordered, func(i, j int) bool {
		if ordered[i].start == ordered[j].start {
			return ordered[i].end > ordered[j].end
		}
		return ordered[i].start < ordered[j].start
	})

	maxEnd := -1
	var owner replacement
	for _, r := range ordered {
		if r.start < maxEnd {
			return domain.NewError(domain.KindInvariant, "",
				fmt.Sprintf("overlapping edits [%d,%d) and [%d,%d)", owner.start, owner.end, r.start, r.end), nil)
		}
		if r.start != r.end && r.end > maxEnd {
			maxEnd = r.end
			owner = r
		}
	}
	return nil
}
