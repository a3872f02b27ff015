package codec

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/matzehuels/mindmap/pkg/mindmap"
	"github.com/matzehuels/mindmap/pkg/mindmap/layout"
)

// IssueKind classifies a change made while repairing a payload.
type IssueKind string

// Repair issue kinds.
const (
	IssueEmptyNodeID    IssueKind = "empty_node_id"
	IssueDuplicateNode  IssueKind = "duplicate_node"
	IssueBadPosition    IssueKind = "non_finite_position"
	IssueEmptyEdgeID    IssueKind = "empty_edge_id"
	IssueDuplicateEdge  IssueKind = "duplicate_edge"
	IssueDanglingEdge   IssueKind = "dangling_edge"
	IssueSelfLoop       IssueKind = "self_loop"
	IssueDuplicatePair  IssueKind = "duplicate_pair"
	IssueExtraRoot      IssueKind = "extra_root"
	IssueMissingRoot    IssueKind = "missing_root"
	IssueEmptyGraph     IssueKind = "empty_graph"
	IssueRebuildFailure IssueKind = "rebuild_failure"
	IssueBadField       IssueKind = "malformed_field"
	IssueBadEntry       IssueKind = "malformed_entry"
)

// Issue is one change made by [Repair].
type Issue struct {
	Kind   IssueKind
	ID     string // node or edge id the issue concerns, if any
	Detail string
}

// String formats the issue for logs.
func (i Issue) String() string {
	if i.ID == "" {
		return fmt.Sprintf("%s: %s", i.Kind, i.Detail)
	}
	return fmt.Sprintf("%s %q: %s", i.Kind, i.ID, i.Detail)
}

// Report lists the changes made while repairing a payload, in the order
// they were made.
type Report struct {
	Issues []Issue
}

// Changed reports whether the repaired graph differs from the payload.
func (r Report) Changed() bool { return len(r.Issues) > 0 }

// Count returns how many issues of kind were recorded.
func (r Report) Count(kind IssueKind) int {
	n := 0
	for _, i := range r.Issues {
		if i.Kind == kind {
			n++
		}
	}
	return n
}

// String joins all issues with "; ".
func (r Report) String() string {
	parts := make([]string, len(r.Issues))
	for i, issue := range r.Issues {
		parts[i] = issue.String()
	}
	return strings.Join(parts, "; ")
}

func (r *Report) add(kind IssueKind, id, format string, args ...any) {
	r.Issues = append(r.Issues, Issue{Kind: kind, ID: id, Detail: fmt.Sprintf(format, args...)})
}

// Repair converts a payload into a graph that satisfies every invariant,
// fixing problems instead of rejecting them:
//
//   - entries the decoder had to patch or drop are reported first
//   - nodes with an empty id are dropped
//   - duplicate node ids keep the first occurrence
//   - non-finite positions become (0, 0)
//   - edges with an empty id are dropped
//   - duplicate edge ids keep the first occurrence
//   - edges with a missing endpoint, self-loops and repeated
//     (source, target) pairs are dropped
//   - if several nodes are flagged root, the first keeps the flag
//   - if none is, the node with the fewest incoming edges becomes root,
//     ties broken by smallest id
//   - a payload with no usable nodes yields [mindmap.New]
//
// A valid payload passes through unchanged and yields an empty report.
// Repairing an already repaired payload changes nothing.
func Repair(p Payload) (mindmap.Graph, Report) {
	var report Report
	report.Issues = append(report.Issues, p.decodeIssues...)

	nodes := make([]mindmap.Node, 0, len(p.Nodes))
	nodeIdx := make(map[string]int, len(p.Nodes))
	for _, n := range p.Nodes {
		if n.ID == "" {
			report.add(IssueEmptyNodeID, "", "dropped node labeled %q", n.Label)
			continue
		}
		if _, dup := nodeIdx[n.ID]; dup {
			report.add(IssueDuplicateNode, n.ID, "dropped later occurrence")
			continue
		}
		pos := n.Position
		if !pos.IsFinite() {
			report.add(IssueBadPosition, n.ID, "reset (%v, %v) to origin", pos.X, pos.Y)
			pos = layout.Point{}
		}
		nodeIdx[n.ID] = len(nodes)
		nodes = append(nodes, mindmap.Node{ID: n.ID, Label: n.Label, Position: pos, IsRoot: n.IsRoot})
	}

	if len(nodes) == 0 {
		if len(p.Nodes) > 0 || len(p.Edges) > 0 {
			report.add(IssueEmptyGraph, "", "no usable nodes, started a new graph")
		}
		// An empty payload is an unsaved new document, not damage.
		return mindmap.New(), report
	}

	type pair struct{ src, dst string }
	edges := make([]mindmap.Edge, 0, len(p.Edges))
	edgeIDs := make(map[string]bool, len(p.Edges))
	pairs := make(map[pair]bool, len(p.Edges))
	for _, e := range p.Edges {
		if e.ID == "" {
			report.add(IssueEmptyEdgeID, "", "dropped edge %q -> %q", e.SourceID, e.TargetID)
			continue
		}
		if edgeIDs[e.ID] {
			report.add(IssueDuplicateEdge, e.ID, "dropped later occurrence")
			continue
		}
		edgeIDs[e.ID] = true
		_, srcOK := nodeIdx[e.SourceID]
		_, dstOK := nodeIdx[e.TargetID]
		if !srcOK || !dstOK {
			report.add(IssueDanglingEdge, e.ID, "dropped edge %q -> %q", e.SourceID, e.TargetID)
			continue
		}
		if e.SourceID == e.TargetID {
			report.add(IssueSelfLoop, e.ID, "dropped self-loop on %q", e.SourceID)
			continue
		}
		key := pair{e.SourceID, e.TargetID}
		if pairs[key] {
			report.add(IssueDuplicatePair, e.ID, "dropped repeated edge %q -> %q", e.SourceID, e.TargetID)
			continue
		}
		pairs[key] = true
		edges = append(edges, mindmap.Edge{ID: e.ID, SourceID: e.SourceID, TargetID: e.TargetID})
	}

	repairRoot(nodes, edges, &report)

	g, err := mindmap.Build(nodes, edges)
	if err != nil {
		report.add(IssueRebuildFailure, "", "%v", err)
		return mindmap.New(), report
	}
	return g, report
}

// repairRoot leaves exactly one node flagged as root.
func repairRoot(nodes []mindmap.Node, edges []mindmap.Edge, report *Report) {
	root := -1
	for i := range nodes {
		if !nodes[i].IsRoot {
			continue
		}
		if root < 0 {
			root = i
			continue
		}
		nodes[i].IsRoot = false
		report.add(IssueExtraRoot, nodes[i].ID, "demoted, %q stays root", nodes[root].ID)
	}
	if root >= 0 {
		return
	}

	indegree := make(map[string]int, len(nodes))
	for _, e := range edges {
		indegree[e.TargetID]++
	}
	best := 0
	for i := 1; i < len(nodes); i++ {
		a, b := nodes[i], nodes[best]
		if c := cmp.Compare(indegree[a.ID], indegree[b.ID]); c < 0 || (c == 0 && a.ID < b.ID) {
			best = i
		}
	}
	nodes[best].IsRoot = true
	report.add(IssueMissingRoot, nodes[best].ID, "promoted to root")
}

// Kinds returns the distinct issue kinds in r, sorted.
func (r Report) Kinds() []IssueKind {
	seen := make(map[IssueKind]bool)
	var kinds []IssueKind
	for _, i := range r.Issues {
		if !seen[i.Kind] {
			seen[i.Kind] = true
			kinds = append(kinds, i.Kind)
		}
	}
	slices.Sort(kinds)
	return kinds
}
