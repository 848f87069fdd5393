// Package render holds the presentation side of railgen: everything that
// turns a finished [network.Network] into an artifact.
//
// # Renderers
//
// Each subpackage traverses the network through its read-only iterators and
// never mutates it:
//
//   - [text]: the plain-text dump listing every line and station
//   - [html]: HTML pages from html/template, with a built-in listing
//   - [nodelink]: Graphviz DOT diagrams and in-process SVG rendering
//   - [nodes]: neighbour JSON mapping each station to the stations it
//     connects to
//   - [geojson]: a GeoJSON feature collection of stations and line paths
//
// # Format Conversion
//
// [ToPDF] and [ToPNG] convert an SVG produced by [nodelink] using the
// external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, nodelink.ToDOT(net, nodelink.Options{}))
//	png, err := render.ToPNG(ctx, svg, 2.0)
//
// [network.Network]: github.com/leafstorm/railgen/pkg/network.Network
// [text]: github.com/leafstorm/railgen/pkg/render/text
// [html]: github.com/leafstorm/railgen/pkg/render/html
// [nodelink]: github.com/leafstorm/railgen/pkg/render/nodelink
// [nodes]: github.com/leafstorm/railgen/pkg/render/nodes
// [geojson]: github.com/leafstorm/railgen/pkg/render/geojson
package render
