package cli

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// treeLine is one row of the outline view of a graph.
type treeLine struct {
	Node    mindmap.Node
	Depth   int
	Revisit bool // already shown higher up; children are not repeated
}

// outline walks g depth-first from the root along edge direction, taking
// children top to bottom as they sit on the canvas. A node
// reachable along several paths is expanded once and marked as a revisit
// elsewhere. Nodes the walk never reaches follow at depth 0, in id order.
func outline(g mindmap.Graph) []treeLine {
	var lines []treeLine
	seen := make(map[string]bool, g.NodeCount())

	var walk func(n mindmap.Node, depth int)
	walk = func(n mindmap.Node, depth int) {
		if seen[n.ID] {
			lines = append(lines, treeLine{Node: n, Depth: depth, Revisit: true})
			return
		}
		seen[n.ID] = true
		lines = append(lines, treeLine{Node: n, Depth: depth})
		children, _ := g.ChildrenOf(n.ID)
		slices.SortStableFunc(children, func(a, b mindmap.Node) int {
			return cmp.Compare(a.Position.Y, b.Position.Y)
		})
		for _, child := range children {
			walk(child, depth+1)
		}
	}

	if g.NodeCount() == 0 {
		return nil
	}
	walk(g.Root(), 0)
	for _, n := range g.Nodes() {
		if !seen[n.ID] {
			walk(n, 0)
		}
	}
	return lines
}

// formatTree renders the outline as indented text.
func formatTree(g mindmap.Graph) string {
	var b strings.Builder
	for _, l := range outline(g) {
		b.WriteString(strings.Repeat("  ", l.Depth))
		label := l.Node.Label
		switch {
		case l.Node.IsRoot:
			label = styleRoot.Render(label)
		case l.Depth > 0:
			label = "• " + label
		}
		b.WriteString(label)
		b.WriteString(" " + StyleDim.Render(l.Node.ID))
		if l.Revisit {
			b.WriteString(" " + StyleDim.Render(iconRevisit))
		}
		b.WriteString("\n")
	}
	return b.String()
}

// formatPosition prints a position without trailing zeros.
func formatPosition(p mindmap.Position) string {
	return fmt.Sprintf("(%g, %g)", p.X, p.Y)
}
