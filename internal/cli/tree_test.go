package cli

import (
	"strings"
	"testing"

	"github.com/matzehuels/mindmap/pkg/mindmap"
)

func TestOutline(t *testing.T) {
	eng := mindmap.NewEngine(mindmap.WithIDGenerator(mindmap.NewSequenceGenerator()))
	g := eng.CreateRoot()
	g, a, _ := eng.AddChild(g, mindmap.RootID, "A")
	g, b, _ := eng.AddChild(g, mindmap.RootID, "B")
	g, c, _ := eng.AddChild(g, a, "C")
	g, _ = eng.MoveNode(g, b, mindmap.Position{X: 200, Y: -10})
	g, _ = eng.Connect(g, a, b)
	g, err := eng.Disconnect(g, "e3")
	if err != nil {
		t.Fatal(err)
	}

	type row struct {
		id      string
		depth   int
		revisit bool
	}
	want := []row{
		{mindmap.RootID, 0, false},
		{b, 1, false}, // above a on the canvas
		{a, 1, false},
		{b, 2, true},
		{c, 0, false}, // unreachable
	}

	got := outline(g)
	if len(got) != len(want) {
		t.Fatalf("outline has %d lines, want %d", len(got), len(want))
	}
	for i, w := range want {
		l := got[i]
		if l.Node.ID != w.id || l.Depth != w.depth || l.Revisit != w.revisit {
			t.Errorf("line %d = {%s %d %v}, want %v", i, l.Node.ID, l.Depth, l.Revisit, w)
		}
	}

	text := formatTree(g)
	if !strings.Contains(text, "  • B n2") || !strings.Contains(text, iconRevisit) {
		t.Errorf("formatTree() =\n%s", text)
	}
}

func TestOutlineEmpty(t *testing.T) {
	if lines := outline(mindmap.Graph{}); lines != nil {
		t.Errorf("outline(empty) = %v", lines)
	}
}

func TestFormatPosition(t *testing.T) {
	tests := []struct {
		pos  mindmap.Position
		want string
	}{
		{mindmap.Position{}, "(0, 0)"},
		{mindmap.Position{X: 200, Y: 40}, "(200, 40)"},
		{mindmap.Position{X: -12.5, Y: 0.25}, "(-12.5, 0.25)"},
	}
	for _, tt := range tests {
		if got := formatPosition(tt.pos); got != tt.want {
			t.Errorf("formatPosition(%v) = %q, want %q", tt.pos, got, tt.want)
		}
	}
}
