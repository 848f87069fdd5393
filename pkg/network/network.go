package network

import (
	"cmp"
	"fmt"
	"iter"
	"maps"
	"slices"

	"github.com/paulmach/orb"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// DefaultName is the network name used when a document does not declare one.
const DefaultName = "Rail Network"

// Axis selects a horizontal coordinate of a station.
type Axis int

const (
	// AxisX is the east-west axis.
	AxisX Axis = iota
	// AxisZ is the north-south axis.
	AxisZ
)

// String returns "x" or "z".
func (a Axis) String() string {
	if a == AxisZ {
		return "z"
	}
	return "x"
}

// Range is an inclusive [Min, Max] coordinate bound.
type Range struct {
	Min int `json:"min" bson:"min"`
	Max int `json:"max" bson:"max"`
}

// Length returns Max - Min.
func (r Range) Length() int { return r.Max - r.Min }

// Network is a read-only rail network produced by a [Builder].
//
// The zero value is not usable. All methods are safe for concurrent use
// once Build has returned.
type Network struct {
	name      string
	stations  map[string]*Station
	lines     map[int]*Line
	waypoints []*Station
	xrange    *Range
	zrange    *Range
}

func newNetwork(name string) *Network {
	if name == "" {
		name = DefaultName
	}
	return &Network{
		name:     name,
		stations: make(map[string]*Station),
		lines:    make(map[int]*Line),
	}
}

// Name returns the display name of the network.
func (n *Network) Name() string { return n.name }

// String returns the network name.
func (n *Network) String() string { return n.name }

// StationCount returns the number of registered (named) stations.
func (n *Network) StationCount() int { return len(n.stations) }

// LineCount returns the number of lines.
func (n *Network) LineCount() int { return len(n.lines) }

// WaypointCount returns the number of anonymous waypoints across all lines.
func (n *Network) WaypointCount() int { return len(n.waypoints) }

// =============================================================================
// Lookup
// =============================================================================

// Station returns the station registered under name.
// It fails with NOT_FOUND if no such station exists.
func (n *Network) Station(name string) (*Station, error) {
	if st, ok := n.stations[name]; ok {
		return st, nil
	}
	return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "no station named %q", name)
}

// GetStation resolves a loosely typed station reference, such as a value
// taken from a generic decoded document or a template argument.
//
// A string is looked up by name (NOT_FOUND if unknown). A *Station of this
// network is returned as is, and a *Station of another network is resolved
// by its name. Any other value fails with TYPE_MISMATCH.
func (n *Network) GetStation(ref any) (*Station, error) {
	switch r := ref.(type) {
	case string:
		return n.Station(r)
	case *Station:
		if r == nil {
			break
		}
		if r.net == n {
			return r, nil
		}
		return n.Station(r.name)
	}
	return nil, rgerrors.New(rgerrors.ErrCodeTypeMismatch,
		"station reference must be a name or a station, got %T", ref)
}

// Line returns the line with the given number.
// It fails with NOT_FOUND if no such line exists.
func (n *Network) Line(number int) (*Line, error) {
	if ln, ok := n.lines[number]; ok {
		return ln, nil
	}
	return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "no line numbered %d", number)
}

// StationBySlug returns the registered station whose slug matches.
// Slugs are not guaranteed unique; the first station in name order wins.
func (n *Network) StationBySlug(slug string) (*Station, error) {
	for st := range n.Stations() {
		if st.Slug() == slug {
			return st, nil
		}
	}
	return nil, rgerrors.New(rgerrors.ErrCodeNotFound, "no station with slug %q", slug)
}

// =============================================================================
// Enumeration
// =============================================================================

// Stations yields every registered station in ascending name order.
// Waypoints are not included. The sequence can be iterated any number of
// times.
func (n *Network) Stations() iter.Seq[*Station] {
	return func(yield func(*Station) bool) {
		for _, name := range slices.Sorted(maps.Keys(n.stations)) {
			if !yield(n.stations[name]) {
				return
			}
		}
	}
}

// Lines yields every line in ascending number order.
// The sequence can be iterated any number of times.
func (n *Network) Lines() iter.Seq[*Line] {
	return func(yield func(*Line) bool) {
		for _, number := range slices.Sorted(maps.Keys(n.lines)) {
			if !yield(n.lines[number]) {
				return
			}
		}
	}
}

// =============================================================================
// Bounds
// =============================================================================

// XRange returns the declared x bound and whether one was declared.
func (n *Network) XRange() (Range, bool) { return rangeOf(n.xrange) }

// ZRange returns the declared z bound and whether one was declared.
func (n *Network) ZRange() (Range, bool) { return rangeOf(n.zrange) }

func rangeOf(r *Range) (Range, bool) {
	if r == nil {
		return Range{}, false
	}
	return *r, true
}

// XLength returns max - min of the declared x bound, or 0 if undeclared.
func (n *Network) XLength() int {
	r, _ := n.XRange()
	return r.Length()
}

// ZLength returns max - min of the declared z bound, or 0 if undeclared.
func (n *Network) ZLength() int {
	r, _ := n.ZRange()
	return r.Length()
}

// Bounds returns the declared bounds as a planar bound with x on the first
// axis and z on the second. Undeclared axes fall back to the extent of the
// stations and waypoints on that axis.
func (n *Network) Bounds() orb.Bound {
	extent := n.extent()
	if r, ok := n.XRange(); ok {
		extent.Min[0], extent.Max[0] = float64(r.Min), float64(r.Max)
	}
	if r, ok := n.ZRange(); ok {
		extent.Min[1], extent.Max[1] = float64(r.Min), float64(r.Max)
	}
	return extent
}

func (n *Network) extent() orb.Bound {
	var pts orb.MultiPoint
	for _, st := range n.stations {
		pts = append(pts, st.Point())
	}
	for _, wp := range n.waypoints {
		pts = append(pts, wp.Point())
	}
	if len(pts) == 0 {
		return orb.Bound{}
	}
	return pts.Bound()
}

func (n *Network) minimum(axis Axis) int {
	var r *Range
	if axis == AxisZ {
		r = n.zrange
	} else {
		r = n.xrange
	}
	if r == nil {
		return 0
	}
	return r.Min
}

// =============================================================================
// Consistency
// =============================================================================

type refKey struct {
	line    int
	station *Station
	landing string
}

// Validate checks the bidirectional stop/back-reference invariant: every
// stop on a line is mirrored by exactly one back-reference on its station
// and vice versa. It fails with INCONSISTENT_GRAPH otherwise.
func (n *Network) Validate() error {
	balance := make(map[refKey]int)

	for number, ln := range n.lines {
		for i, s := range ln.stops {
			st := ln.resolve(s)
			if st == nil {
				return rgerrors.New(rgerrors.ErrCodeInconsistentGraph,
					"line %d stop %d references unknown station %q", number, i, s.station)
			}
			balance[refKey{number, st, s.landing}]++
		}
	}

	check := func(st *Station) error {
		for _, ref := range st.refs {
			if _, ok := n.lines[ref.Line]; !ok {
				return rgerrors.New(rgerrors.ErrCodeInconsistentGraph,
					"station %q references unknown line %d", st.name, ref.Line)
			}
			balance[refKey{ref.Line, st, ref.Landing}]--
		}
		return nil
	}
	for _, st := range n.stations {
		if err := check(st); err != nil {
			return err
		}
	}
	for _, wp := range n.waypoints {
		if err := check(wp); err != nil {
			return err
		}
	}

	keys := slices.SortedFunc(maps.Keys(balance), func(a, b refKey) int {
		return cmp.Or(cmp.Compare(a.line, b.line), cmp.Compare(a.station.name, b.station.name),
			cmp.Compare(a.landing, b.landing))
	})
	for _, k := range keys {
		if d := balance[k]; d != 0 {
			return rgerrors.New(rgerrors.ErrCodeInconsistentGraph,
				"line %d and station %s disagree on landing %q (%s)", k.line, k.station, k.landing, imbalance(d))
		}
	}
	return nil
}

func imbalance(d int) string {
	if d > 0 {
		return fmt.Sprintf("%d stop(s) without back-reference", d)
	}
	return fmt.Sprintf("%d back-reference(s) without stop", -d)
}
