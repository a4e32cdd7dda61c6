package tui

import (
	"strings"

	"github.com/imp-refactor/imp-refactor/internal/domain"
)

// RenderRegistryTree prints the registry's keys in sorted order, one per
// line, indented two spaces per level. Leaves are dimmed. maxDepth <= 0
// means unlimited.
func RenderRegistryTree(snap *domain.RegistrySnapshot, maxDepth int) string {
	var b strings.Builder
	renderNodes(&b, domain.RegistryChildren(snap.Tree), maxDepth, 0)
	return b.String()
}

func renderNodes(b *strings.Builder, nodes []domain.RegistryNode, maxDepth, depth int) {
	if maxDepth > 0 && depth >= maxDepth {
		return
	}
	indent := strings.Repeat("  ", depth)
	for _, n := range nodes {
		if n.Leaf {
			b.WriteString(indent + dimStyle.Render(n.Name) + "\n")
			continue
		}
		b.WriteString(indent + n.Name + "\n")
		renderNodes(b, n.Children, maxDepth, depth+1)
	}
}

// RenderPathList prints the flattened registry, one dotted path per line.
func RenderPathList(paths domain.PathSet) string {
	sorted := paths.Sorted()
	if len(sorted) == 0 {
		return ""
	}
	return strings.Join(sorted, "\n") + "\n"
}
