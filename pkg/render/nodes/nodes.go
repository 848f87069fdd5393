// Package nodes builds the station neighbour map used by route-finding
// front ends.
//
// Each named station maps to its coordinates, notes and the stations
// directly reachable from it along every line ("destinations"). Waypoints
// are dropped before neighbours are computed, so a line bending through a
// waypoint still links the stations on either side.
//
// By default neighbours follow each line's flow, so a one-way line never
// offers travel against it. The classic node files listed the previous
// stop on one-way lines too and wrapped only two-way loops; [Undirected]
// reproduces them.
package nodes

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/vocab"
)

// Node is one station entry of the map.
type Node struct {
	X            int      `json:"x"`
	Z            int      `json:"z"`
	Notes        string   `json:"notes,omitempty"`
	Destinations []string `json:"destinations"`
}

// Mode selects how a line's flow shapes the neighbours it contributes.
type Mode int

const (
	// Directed follows the flow: one-way lines list only the next stop,
	// and every loop flow, one-way loops included, wraps around.
	Directed Mode = iota

	// Undirected lists the previous stop on every line whatever its flow,
	// and wraps around only on two-way loops. Route finders built against
	// the classic node files expect this layout.
	Undirected
)

// Build computes the neighbour map in [Directed] mode.
//
// For every line, each stop lists the previous and the next named stop.
// Loop lines wrap around at both ends. One-way lines only list the next
// stop, since travel in the other direction is impossible. A station served
// twice by the same pair of neighbours lists them twice.
func Build(net *network.Network) map[string]*Node {
	return BuildMode(net, Directed)
}

// BuildMode computes the neighbour map in the given mode.
func BuildMode(net *network.Network, mode Mode) map[string]*Node {
	out := make(map[string]*Node, net.StationCount())
	for st := range net.Stations() {
		out[st.Name()] = &Node{X: st.X(), Z: st.Z(), Notes: st.Notes(), Destinations: []string{}}
	}

	for ln := range net.Lines() {
		var names []string
		for st := range ln.Stops() {
			if !st.IsWaypoint() {
				names = append(names, st.Name())
			}
		}
		back, wrap := !ln.IsOneWay(), ln.IsLoop()
		if mode == Undirected {
			back, wrap = true, ln.Flow() == vocab.Loop
		}
		n := len(names)
		for i, name := range names {
			node := out[name]
			if back && (i > 0 || wrap) {
				node.Destinations = append(node.Destinations, names[(i-1+n)%n])
			}
			if i+1 < n {
				node.Destinations = append(node.Destinations, names[i+1])
			} else if wrap {
				node.Destinations = append(node.Destinations, names[0])
			}
		}
	}
	return out
}

// Options controls how the map is written.
type Options struct {
	// JavaScript wraps the JSON as a script assigning the global
	// "stations", for pages that load it with a script tag.
	JavaScript bool

	// Indent pretty-prints the JSON with two-space indentation.
	Indent bool
}

// Write encodes the map to w.
func Write(w io.Writer, nodes map[string]*Node, opts Options) error {
	var buf bytes.Buffer
	if opts.JavaScript {
		buf.WriteString("stations = ")
	}
	enc := json.NewEncoder(&buf)
	if opts.Indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(nodes); err != nil {
		return err
	}
	if opts.JavaScript {
		buf.Truncate(buf.Len() - 1)
		buf.WriteString(";\n")
	}
	_, err := buf.WriteTo(w)
	return err
}
