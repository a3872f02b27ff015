package codec

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/mindmap/pkg/errors"
	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
)

func sampleGraph(t *testing.T) mindmap.Graph {
	t.Helper()
	eng := mindmap.NewEngine(mindmap.WithIDGenerator(mindmap.NewSequenceGenerator()))
	g := eng.CreateRoot()
	g, a, err := eng.AddChild(g, mindmap.RootID, "Cells")
	if err != nil {
		t.Fatal(err)
	}
	g, b, err := eng.AddChild(g, mindmap.RootID, "Genetics")
	if err != nil {
		t.Fatal(err)
	}
	g, c, err := eng.AddChild(g, a, "Mitochondria")
	if err != nil {
		t.Fatal(err)
	}
	if g, err = eng.Connect(g, c, b); err != nil {
		t.Fatal(err)
	}
	if g, err = eng.MoveNode(g, b, layout.Point{X: -12.5, Y: 99}); err != nil {
		t.Fatal(err)
	}
	return g
}

func TestRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	got, report := Repair(Serialize(g))
	if report.Changed() {
		t.Errorf("valid payload was repaired: %s", report)
	}
	if !got.Equal(g) {
		t.Error("Deserialize(Serialize(g)) != g")
	}
}

func TestSerializeSorted(t *testing.T) {
	p := Serialize(sampleGraph(t))
	for i := 1; i < len(p.Nodes); i++ {
		if p.Nodes[i-1].ID >= p.Nodes[i].ID {
			t.Errorf("nodes not sorted at %d", i)
		}
	}
	for i := 1; i < len(p.Edges); i++ {
		if p.Edges[i-1].ID >= p.Edges[i].ID {
			t.Errorf("edges not sorted at %d", i)
		}
	}
	// Serializing twice yields identical payloads.
	if !reflect.DeepEqual(p, Serialize(sampleGraph(t))) {
		t.Error("Serialize is not deterministic")
	}
}

func TestRepairDanglingEdge(t *testing.T) {
	p := Payload{
		Nodes: []Node{
			{ID: "r", Label: "Root", IsRoot: true},
			{ID: "a", Label: "A", Position: layout.Point{X: 200}},
		},
		Edges: []Edge{
			{ID: "e1", SourceID: "r", TargetID: "a"},
			{ID: "e2", SourceID: "r", TargetID: "ghost"},
		},
	}
	g, report := Repair(p)
	if g.EdgeCount() != 1 {
		t.Fatalf("EdgeCount() = %d, want 1", g.EdgeCount())
	}
	if _, ok := g.Edge("e2"); ok {
		t.Error("dangling edge e2 should be dropped")
	}
	if g.NodeCount() != 2 {
		t.Errorf("NodeCount() = %d, want 2", g.NodeCount())
	}
	if report.Count(IssueDanglingEdge) != 1 {
		t.Errorf("report = %s", report)
	}
	if err := g.Validate(); err != nil {
		t.Error(err)
	}
}

func TestRepair(t *testing.T) {
	tests := []struct {
		name      string
		payload   Payload
		wantKind  IssueKind
		wantNodes int
		wantEdges int
		wantRoot  string
	}{
		{
			name: "empty node id",
			payload: Payload{Nodes: []Node{
				{ID: "r", IsRoot: true}, {ID: "", Label: "lost"},
			}},
			wantKind: IssueEmptyNodeID, wantNodes: 1, wantRoot: "r",
		},
		{
			name: "duplicate node keeps first",
			payload: Payload{Nodes: []Node{
				{ID: "r", Label: "first", IsRoot: true}, {ID: "r", Label: "second"},
			}},
			wantKind: IssueDuplicateNode, wantNodes: 1, wantRoot: "r",
		},
		{
			name: "duplicate edge id keeps first",
			payload: Payload{
				Nodes: []Node{{ID: "r", IsRoot: true}, {ID: "a"}, {ID: "b"}},
				Edges: []Edge{{ID: "e", SourceID: "r", TargetID: "a"}, {ID: "e", SourceID: "r", TargetID: "b"}},
			},
			wantKind: IssueDuplicateEdge, wantNodes: 3, wantEdges: 1, wantRoot: "r",
		},
		{
			name: "empty edge id",
			payload: Payload{
				Nodes: []Node{{ID: "r", IsRoot: true}, {ID: "a"}},
				Edges: []Edge{{SourceID: "r", TargetID: "a"}},
			},
			wantKind: IssueEmptyEdgeID, wantNodes: 2, wantRoot: "r",
		},
		{
			name: "self loop",
			payload: Payload{
				Nodes: []Node{{ID: "r", IsRoot: true}, {ID: "a"}},
				Edges: []Edge{{ID: "e1", SourceID: "a", TargetID: "a"}},
			},
			wantKind: IssueSelfLoop, wantNodes: 2, wantRoot: "r",
		},
		{
			name: "duplicate pair",
			payload: Payload{
				Nodes: []Node{{ID: "r", IsRoot: true}, {ID: "a"}},
				Edges: []Edge{{ID: "e1", SourceID: "r", TargetID: "a"}, {ID: "e2", SourceID: "r", TargetID: "a"}},
			},
			wantKind: IssueDuplicatePair, wantNodes: 2, wantEdges: 1, wantRoot: "r",
		},
		{
			name: "multiple roots keep first",
			payload: Payload{Nodes: []Node{
				{ID: "z", IsRoot: true}, {ID: "a", IsRoot: true},
			}},
			wantKind: IssueExtraRoot, wantNodes: 2, wantRoot: "z",
		},
		{
			name: "missing root promotes fewest incoming",
			payload: Payload{
				Nodes: []Node{{ID: "a"}, {ID: "b"}, {ID: "c"}},
				Edges: []Edge{{ID: "e1", SourceID: "b", TargetID: "a"}, {ID: "e2", SourceID: "b", TargetID: "c"}},
			},
			wantKind: IssueMissingRoot, wantNodes: 3, wantEdges: 2, wantRoot: "b",
		},
		{
			name:     "missing root ties break on smallest id",
			payload:  Payload{Nodes: []Node{{ID: "m"}, {ID: "c"}, {ID: "x"}}},
			wantKind: IssueMissingRoot, wantNodes: 3, wantRoot: "c",
		},
		{
			name:     "no usable nodes",
			payload:  Payload{Nodes: []Node{{Label: "orphan"}}, Edges: []Edge{{ID: "e"}}},
			wantKind: IssueEmptyGraph, wantNodes: 1, wantRoot: mindmap.RootID,
		},
		{
			name: "non-finite position",
			payload: Payload{Nodes: []Node{
				{ID: "r", IsRoot: true, Position: layout.Point{X: math.NaN(), Y: math.Inf(-1)}},
			}},
			wantKind: IssueBadPosition, wantNodes: 1, wantRoot: "r",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, report := Repair(tt.payload)
			if err := g.Validate(); err != nil {
				t.Fatalf("repaired graph invalid: %v", err)
			}
			if report.Count(tt.wantKind) == 0 {
				t.Errorf("report %q lacks %s", report, tt.wantKind)
			}
			if g.NodeCount() != tt.wantNodes {
				t.Errorf("NodeCount() = %d, want %d", g.NodeCount(), tt.wantNodes)
			}
			if g.EdgeCount() != tt.wantEdges {
				t.Errorf("EdgeCount() = %d, want %d", g.EdgeCount(), tt.wantEdges)
			}
			if got := g.Root().ID; got != tt.wantRoot {
				t.Errorf("root = %q, want %q", got, tt.wantRoot)
			}

			// Repair is idempotent.
			again, second := Repair(Serialize(g))
			if second.Changed() {
				t.Errorf("second repair changed: %s", second)
			}
			if !again.Equal(g) {
				t.Error("second repair produced a different graph")
			}
		})
	}
}

func TestRepairKeepsFirstDuplicateLabel(t *testing.T) {
	g, _ := Repair(Payload{Nodes: []Node{
		{ID: "r", Label: "first", IsRoot: true}, {ID: "r", Label: "second"},
	}})
	if g.Root().Label != "first" {
		t.Errorf("label = %q, want first", g.Root().Label)
	}
}

func TestEmptyPayloadIsNewGraph(t *testing.T) {
	g, report := Repair(Payload{})
	if report.Changed() {
		t.Errorf("empty payload should not be reported as repaired: %s", report)
	}
	if !g.Equal(mindmap.New()) {
		t.Error("empty payload should yield a fresh root graph")
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	var buf bytes.Buffer
	if err := Write(g, &buf, FormatJSON); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), `"sourceId"`) || !strings.Contains(buf.String(), `"isRoot": true`) {
		t.Errorf("unexpected JSON keys:\n%s", buf.String())
	}
	got, report, err := Read(&buf, FormatJSON)
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed() || !got.Equal(g) {
		t.Errorf("JSON round trip changed the graph: %s", report)
	}
}

func TestYAMLRoundTrip(t *testing.T) {
	g := sampleGraph(t)
	var buf bytes.Buffer
	if err := Write(g, &buf, FormatYAML); err != nil {
		t.Fatal(err)
	}
	got, report, err := Read(&buf, FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if report.Changed() || !got.Equal(g) {
		t.Errorf("YAML round trip changed the graph: %s", report)
	}
}

func TestReadYAMLRepairsNonFinite(t *testing.T) {
	in := `
nodes:
  - id: root
    label: Root
    isRoot: true
    position: {x: .nan, y: .inf}
edges: []
`
	g, report, err := Read(strings.NewReader(in), FormatYAML)
	if err != nil {
		t.Fatal(err)
	}
	if report.Count(IssueBadPosition) != 1 {
		t.Errorf("report = %s", report)
	}
	if g.Root().Position != (layout.Point{}) {
		t.Errorf("position = %v, want origin", g.Root().Position)
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
	}{
		{"json syntax", `{"nodes": [`, FormatJSON},
		{"json not an object", `["nodes"]`, FormatJSON},
		{"yaml syntax", "nodes: [\n  - id: a\n  bad", FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestImportExport(t *testing.T) {
	g := sampleGraph(t)
	dir := t.TempDir()

	for _, name := range []string{"map.json", "map.yaml"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			if err := Export(g, path, ""); err != nil {
				t.Fatal(err)
			}
			got, _, err := Import(path)
			if err != nil {
				t.Fatal(err)
			}
			if !got.Equal(g) {
				t.Error("file round trip changed the graph")
			}
		})
	}

	path := filepath.Join(dir, "explicit.txt")
	if err := Export(g, path, FormatYAML); err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	if got, _, err := Read(f, FormatYAML); err != nil || !got.Equal(g) {
		t.Errorf("explicit format round trip: %v", err)
	}
	if _, _, err := Import(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"json", FormatJSON, false},
		{"", FormatJSON, false},
		{"YAML", FormatYAML, false},
		{"yml", FormatYAML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
	if FormatFromPath("a/b.YML") != FormatYAML || FormatFromPath("x.txt") != FormatJSON {
		t.Error("FormatFromPath mismatch")
	}
}

func TestDecodeKeepsDamagedEntries(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		format Format
		nodes  []string
		kinds  map[IssueKind]int
	}{
		{
			name: "json wrongly typed coordinate",
			input: `{"nodes": [
				{"id": "root", "label": "Biology", "position": {"x": 0, "y": 0}, "isRoot": true},
				{"id": "n1", "label": "Cells", "position": {"x": "200", "y": 0}},
				{"id": "n2", "label": "Genetics", "position": {"x": 200, "y": 40}}
			], "edges": [
				{"id": "e1", "sourceId": "root", "targetId": "n1"},
				{"id": "e2", "sourceId": "root", "targetId": "n2"}
			]}`,
			format: FormatJSON,
			nodes:  []string{"n1", "n2", "root"},
			kinds:  map[IssueKind]int{IssueBadField: 1},
		},
		{
			name:   "json nodes not a list",
			input:  `{"nodes": "x", "edges": []}`,
			format: FormatJSON,
			nodes:  []string{"root"},
			kinds:  map[IssueKind]int{IssueBadEntry: 1},
		},
		{
			name:   "json entry not an object",
			input:  `{"nodes": [{"id": "root", "label": "R", "isRoot": true}, 7], "edges": [true]}`,
			format: FormatJSON,
			nodes:  []string{"root"},
			kinds:  map[IssueKind]int{IssueBadField: 2, IssueEmptyNodeID: 1, IssueEmptyEdgeID: 1},
		},
		{
			name: "yaml wrongly typed flag",
			input: `
nodes:
  - {id: root, label: Biology, isRoot: true, position: {x: 0, y: 0}}
  - {id: n1, label: Cells, isRoot: maybe, position: {x: 200, y: 0}}
edges:
  - {id: e1, sourceId: root, targetId: n1}
`,
			format: FormatYAML,
			nodes:  []string{"n1", "root"},
			kinds:  map[IssueKind]int{IssueBadField: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, report, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			var ids []string
			for _, n := range g.Nodes() {
				ids = append(ids, n.ID)
			}
			if !reflect.DeepEqual(ids, tt.nodes) {
				t.Errorf("nodes = %v, want %v", ids, tt.nodes)
			}
			for kind, want := range tt.kinds {
				if got := report.Count(kind); got != want {
					t.Errorf("%s issues = %d, want %d (%s)", kind, got, want, report)
				}
			}

			// The repaired graph round-trips without further damage.
			if _, again := Repair(Serialize(g)); again.Changed() {
				t.Errorf("second repair changed: %s", again)
			}
		})
	}
}
