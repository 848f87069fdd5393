package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
)

// Options configures diagram generation.
type Options struct {
	// Scale divides station coordinates before they become node positions.
	// Values below 1 mean no scaling.
	Scale int

	// Detailed adds notes and coordinates to station labels and line
	// metadata to edge tooltips.
	Detailed bool
}

// ToDOT converts a network to Graphviz DOT source.
//
// Stations become labelled nodes pinned at their relative coordinates, with
// z growing downwards as on a map. Waypoints become unlabelled points. Each
// line contributes one edge per consecutive pair of stops in its type colour;
// loop lines also join their last stop to their first. One-way lines draw
// arrowheads, two-way lines do not.
func ToDOT(net *network.Network, opts Options) (string, error) {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "digraph %q {\n", net.Name())
	buf.WriteString("  inputscale=72;\n")
	buf.WriteString("  overlap=true;\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  node [shape=circle, style=filled, fillcolor=white, fontsize=10, width=0.2, fixedsize=true];\n")
	buf.WriteString("  edge [penwidth=3];\n")
	buf.WriteString("\n")

	for st := range net.Stations() {
		fmt.Fprintf(&buf, "  %q [%s];\n", st.Name(), strings.Join(stationAttrs(st, opts), ", "))
	}

	for ln := range net.Lines() {
		color, err := ln.Color()
		if err != nil {
			return "", err
		}
		var ids []string
		i := 0
		for st := range ln.Stops() {
			if st.IsWaypoint() {
				id := fmt.Sprintf("wp-%d-%d", ln.Number(), i)
				fmt.Fprintf(&buf, "  %q [shape=point, width=0.05, pos=%q];\n", id, pos(st, opts.Scale))
				ids = append(ids, id)
			} else {
				ids = append(ids, st.Name())
			}
			i++
		}
		if ln.IsLoop() && len(ids) > 1 {
			ids = append(ids, ids[0])
		}

		attrs, err := edgeAttrs(ln, color, opts)
		if err != nil {
			return "", err
		}
		buf.WriteString("\n")
		for j := 1; j < len(ids); j++ {
			fmt.Fprintf(&buf, "  %q -> %q [%s];\n", ids[j-1], ids[j], attrs)
		}
	}

	buf.WriteString("}\n")
	return buf.String(), nil
}

func pos(st *network.Station, scale int) string {
	x := st.RelativeCoordinate(network.AxisX, scale)
	z := st.RelativeCoordinate(network.AxisZ, scale)
	return strconv.Itoa(x) + "," + strconv.Itoa(-z) + "!"
}

func stationAttrs(st *network.Station, opts Options) []string {
	label := st.Name()
	if opts.Detailed {
		parts := []string{label, st.Coords()}
		if st.Notes() != "" {
			parts = append(parts, st.Notes())
		}
		label = strings.Join(parts, "\n")
	}
	return []string{
		fmt.Sprintf("xlabel=%q", label),
		`label=""`,
		fmt.Sprintf("pos=%q", pos(st, opts.Scale)),
		fmt.Sprintf("id=%q", st.HTMLID()),
	}
}

func edgeAttrs(ln *network.Line, color string, opts Options) (string, error) {
	tooltip := ln.String()
	if opts.Detailed {
		down, err := ln.DownDirection()
		if err != nil {
			return "", err
		}
		flow, err := ln.FlowLabel()
		if err != nil {
			return "", err
		}
		typ, err := ln.TypeLabel()
		if err != nil {
			return "", err
		}
		tooltip = fmt.Sprintf("%s (%s, %s, %s)", tooltip, typ, flow, down)
	}
	attrs := []string{
		fmt.Sprintf("color=%q", color),
		fmt.Sprintf("tooltip=%q", tooltip),
		fmt.Sprintf("class=%q", ln.HTMLID()),
	}
	if !ln.IsOneWay() {
		attrs = append(attrs, "dir=none")
	}
	return strings.Join(attrs, ", "), nil
}

// RenderSVG lays out DOT source with the neato engine, honouring the pinned
// node positions, and returns SVG bytes ready for display or for
// [render.ToPDF] and [render.ToPNG].
//
// [render.ToPDF]: github.com/leafstorm/railgen/pkg/render.ToPDF
// [render.ToPNG]: github.com/leafstorm/railgen/pkg/render.ToPNG
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "init graphviz")
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse DOT")
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInternal, err, "render")
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

// normalizeViewBox replaces graphviz's pt-sized root element with one that
// scales to its container.
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

	root := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(root))
}
