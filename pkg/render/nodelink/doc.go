// Package nodelink renders mind maps as node-link diagrams.
//
// # Usage
//
// Convert a graph to DOT, then render it to SVG:
//
//	dot := nodelink.ToDOT(g, nodelink.Options{Title: "Biology"})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// The DOT output pins every node to its editor position, so the rendered
// diagram looks like the canvas the user arranged. It can also be saved
// and processed with external Graphviz tools (use neato -n or keep the
// layout=neato attribute).
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering; no Graphviz installation is required.
package nodelink
