package network

import (
	"cmp"
	"fmt"
	"iter"
	"math"
	"regexp"
	"slices"
	"strings"

	"github.com/paulmach/orb"
)

// LineRef is a station's back-reference to a line stopping there.
type LineRef struct {
	Line    int    // Line number
	Landing string // Where on the station the line stops; empty if unspecified
}

// Station is a named point served by zero or more lines.
//
// Stations are created by [Builder.AddStation] (registered) or synthesised
// by [Builder.AddStop] for anonymous waypoints (unregistered, empty name).
type Station struct {
	net      *Network
	name     string
	x, z     int
	notes    string
	waypoint bool
	refs     []LineRef
}

// Name returns the station name. Waypoints have an empty name.
func (s *Station) Name() string { return s.name }

// X returns the raw x coordinate.
func (s *Station) X() int { return s.x }

// Z returns the raw z coordinate.
func (s *Station) Z() int { return s.z }

// Notes returns the free-text notes, or "" if none.
func (s *Station) Notes() string { return s.notes }

// IsWaypoint reports whether the station is an anonymous path waypoint.
func (s *Station) IsWaypoint() bool { return s.waypoint }

// String returns the station name, or a coordinate description for waypoints.
func (s *Station) String() string {
	if s.waypoint {
		return fmt.Sprintf("waypoint (%s)", s.Coords())
	}
	return s.name
}

// Coords returns the raw coordinates formatted as "x = X, z = Z".
func (s *Station) Coords() string {
	return fmt.Sprintf("x = %d, z = %d", s.x, s.z)
}

// Point returns the raw coordinates as a planar point (x, z).
func (s *Station) Point() orb.Point {
	return orb.Point{float64(s.x), float64(s.z)}
}

var slugRe = regexp.MustCompile(`[^a-z0-9]+`)

// Slug returns the lowercased name with every maximal run of characters
// outside [a-z0-9] replaced by a single hyphen. Leading and trailing runs
// are kept as hyphens.
func (s *Station) Slug() string {
	return Slugify(s.name)
}

// Slugify applies the station slug rule to an arbitrary string.
func Slugify(name string) string {
	return slugRe.ReplaceAllString(strings.ToLower(name), "-")
}

// HTMLID returns the anchor id "station-<slug>".
func (s *Station) HTMLID() string { return "station-" + s.Slug() }

// Link returns the in-page link "#station-<slug>".
func (s *Station) Link() string { return "#" + s.HTMLID() }

// Coordinate returns the raw coordinate on axis when scale is 1, otherwise
// the coordinate divided by scale and rounded half away from zero.
// A scale of 0 is treated as 1; a negative scale divides like any other and
// so mirrors the coordinate.
func (s *Station) Coordinate(axis Axis, scale int) int {
	return scaled(s.raw(axis), scale)
}

// RelativeCoordinate is like Coordinate but first subtracts the network's
// declared minimum for axis (0 when no bound is declared).
func (s *Station) RelativeCoordinate(axis Axis, scale int) int {
	return scaled(s.raw(axis)-s.net.minimum(axis), scale)
}

func (s *Station) raw(axis Axis) int {
	if axis == AxisZ {
		return s.z
	}
	return s.x
}

func scaled(v, scale int) int {
	if scale == 0 || scale == 1 {
		return v
	}
	return int(math.Round(float64(v) / float64(scale)))
}

// Lines yields the (line, landing) pairs serving this station, ascending by
// line number. Pairs for the same line keep their insertion order.
// The sequence can be iterated any number of times.
func (s *Station) Lines() iter.Seq2[*Line, string] {
	return func(yield func(*Line, string) bool) {
		refs := slices.Clone(s.refs)
		slices.SortStableFunc(refs, func(a, b LineRef) int { return cmp.Compare(a.Line, b.Line) })
		for _, ref := range refs {
			if !yield(s.net.lines[ref.Line], ref.Landing) {
				return
			}
		}
	}
}

// LineRefs returns a copy of the back-references in insertion order.
func (s *Station) LineRefs() []LineRef { return slices.Clone(s.refs) }

func (s *Station) addLine(line int, landing string) {
	s.refs = append(s.refs, LineRef{Line: line, Landing: landing})
}

// removeLine drops the first back-reference equal to (line, landing).
func (s *Station) removeLine(line int, landing string) {
	if i := slices.Index(s.refs, LineRef{Line: line, Landing: landing}); i >= 0 {
		s.refs = slices.Delete(s.refs, i, i+1)
	}
}
