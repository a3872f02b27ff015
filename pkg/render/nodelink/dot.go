package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	"github.com/matzehuels/mindmap/pkg/mindmap"
)

// Options configures node-link diagram rendering.
type Options struct {
	// Title is drawn above the diagram when not empty.
	Title string

	// Scale converts canvas units to points. Zero means 1.
	Scale float64

	// Detailed appends each node's id to its label.
	Detailed bool
}

// ToDOT converts a mind map to Graphviz DOT. Every node is pinned to its
// canvas position (pos="x,y!"), so the neato engine used by [RenderSVG]
// reproduces the editor layout instead of computing its own. The canvas y
// axis points down and Graphviz's points up, so y is negated.
//
// The root is drawn bold with a tinted fill. Output is deterministic:
// nodes and edges are emitted sorted by id.
func ToDOT(g mindmap.Graph, opts Options) string {
	scale := opts.Scale
	if scale <= 0 {
		scale = 1
	}

	var buf bytes.Buffer
	buf.WriteString("digraph G {\n")
	buf.WriteString("  layout=neato;\n")
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=true;\n")
	if opts.Title != "" {
		fmt.Fprintf(&buf, "  label=%q;\n  labelloc=t;\n  fontsize=28;\n", opts.Title)
	}
	buf.WriteString("  node [shape=box, style=\"rounded,filled\", fillcolor=white, fontsize=18, margin=\"0.2,0.1\"];\n")
	buf.WriteString("  edge [arrowsize=0.7];\n")
	buf.WriteString("\n")

	for _, n := range g.Nodes() {
		attrs := fmtAttrs(n, opts.Detailed, scale)
		fmt.Fprintf(&buf, "  %q [%s];\n", n.ID, strings.Join(attrs, ", "))
	}

	buf.WriteString("\n")
	for _, e := range g.Edges() {
		fmt.Fprintf(&buf, "  %q -> %q [id=%q];\n", e.SourceID, e.TargetID, e.ID)
	}

	buf.WriteString("}\n")
	return buf.String()
}

func fmtAttrs(n mindmap.Node, detailed bool, scale float64) []string {
	label := n.Label
	if detailed {
		label += "\n(" + n.ID + ")"
	}
	attrs := []string{
		fmt.Sprintf("label=%q", label),
		fmt.Sprintf("pos=\"%s,%s!\"", fmtFloat(n.Position.X*scale), fmtFloat(-n.Position.Y*scale)),
	}
	if n.IsRoot {
		attrs = append(attrs, "penwidth=2.5", "fillcolor=\"#e8f0fe\"", "fontname=\"Helvetica-Bold\"")
	}
	return attrs
}

func fmtFloat(f float64) string {
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// RenderSVG renders DOT produced by [ToDOT] to SVG with the neato engine.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.-]+)\s+([0-9.-]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces Graphviz's pt-sized svg tag with one whose
// width and height match the viewBox, so the SVG scales in browsers.
func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`, w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}
