package analysis

import (
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// renameTrie indexes rename keys by dot segment so that the longest
// matching key of a path is found in one walk over the path's segments.
type renameTrie struct {
	children map[string]*renameTrie
	target   string
	terminal bool
}

func newRenameTrie(rules domain.RenameRules) *renameTrie {
	root := &renameTrie{}
	for key, target := range rules {
		node := root
		for _, seg := range strings.Split(key, ".") {
			if node.children == nil {
				node.children = make(map[string]*renameTrie)
			}
			next, ok := node.children[seg]
			if !ok {
				next = &renameTrie{}
				node.children[seg] = next
			}
			node = next
		}
		node.target = target
		node.terminal = true
	}
	return root
}

// rewrite applies the longest rule whose key equals path or is a
// dot-delimited prefix of it. The remainder of the path is kept verbatim.
func (t *renameTrie) rewrite(path string) (string, bool) {
	var best *renameTrie
	bestEnd, consumed := 0, 0
	node, remaining := t, path
	for {
		seg, rest, more := strings.Cut(remaining, ".")
		next, ok := node.children[seg]
		if !ok {
			break
		}
		consumed += len(seg)
		if next.terminal {
			best, bestEnd = next, consumed
		}
		if !more {
			break
		}
		consumed++ // the dot
		node, remaining = next, rest
	}
	if best == nil {
		return "", false
	}
	if bestEnd == len(path) {
		return best.target, true
	}
	return best.target + path[bestEnd:], true
}
