// Package nodelink renders a rail network as a node-link diagram.
//
// # Usage
//
// Convert a network to DOT, then render it to SVG in process:
//
//	dot, err := nodelink.ToDOT(net, nodelink.Options{Scale: 10})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// Stations are pinned at their coordinates relative to the network's
// declared bounds, so the diagram keeps the geography of the source
// document. Edges are coloured by line type and carry the line's anchor id
// as their class, which lets a stylesheet highlight a single line.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process layout
// with the neato engine. The DOT source can also be fed to an external
// Graphviz installation (neato -n).
package nodelink
