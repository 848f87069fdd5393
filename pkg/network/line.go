package network

import (
	"fmt"
	"iter"
	"strconv"

	"github.com/leafstorm/railgen/pkg/vocab"
)

// StopKind discriminates the two shapes a stop can take.
type StopKind int

const (
	// StopNamed refers to a registered station, optionally with a landing.
	StopNamed StopKind = iota
	// StopWaypoint is an anonymous point given only by coordinates.
	StopWaypoint
)

var stopKindNames = [...]string{StopNamed: "named", StopWaypoint: "waypoint"}

func (k StopKind) String() string {
	if int(k) < len(stopKindNames) {
		return stopKindNames[k]
	}
	return "StopKind(" + strconv.Itoa(int(k)) + ")"
}

// MarshalText encodes the kind as "named" or "waypoint".
func (k StopKind) MarshalText() ([]byte, error) {
	if int(k) >= len(stopKindNames) || k < 0 {
		return nil, fmt.Errorf("invalid stop kind %d", int(k))
	}
	return []byte(stopKindNames[k]), nil
}

// UnmarshalText accepts the names written by MarshalText.
func (k *StopKind) UnmarshalText(text []byte) error {
	for i, name := range stopKindNames {
		if name == string(text) {
			*k = StopKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown stop kind %q", text)
}

// StopRef describes a stop to add to a line. Build one with [Named] or
// [Waypoint].
type StopRef struct {
	Kind    StopKind `json:"kind" bson:"kind"`
	Station string   `json:"station,omitempty" bson:"station,omitempty"` // StopNamed only
	Landing string   `json:"landing,omitempty" bson:"landing,omitempty"` // empty if unspecified
	X       int      `json:"x,omitempty" bson:"x,omitempty"`             // StopWaypoint only
	Z       int      `json:"z,omitempty" bson:"z,omitempty"`
}

// Named returns a reference to a registered station.
func Named(station, landing string) StopRef {
	return StopRef{Kind: StopNamed, Station: station, Landing: landing}
}

// Waypoint returns an anonymous coordinate waypoint.
func Waypoint(x, z int) StopRef {
	return StopRef{Kind: StopWaypoint, X: x, Z: z}
}

// String describes the reference for error messages.
func (r StopRef) String() string {
	if r.Kind == StopWaypoint {
		return fmt.Sprintf("waypoint [%d, %d]", r.X, r.Z)
	}
	if r.Landing != "" {
		return fmt.Sprintf("%q (%s)", r.Station, r.Landing)
	}
	return strconv.Quote(r.Station)
}

// stop is one entry of a line's path. Named stops hold the station key;
// waypoints hold their private station.
type stop struct {
	station  string
	landing  string
	waypoint *Station
}

// Line is a numbered, ordered path of stops.
type Line struct {
	net       *Network
	number    int
	name      string
	direction vocab.Direction
	flow      vocab.Flow
	level     vocab.Level
	typ       vocab.Type
	notes     string
	stops     []stop
}

// Number returns the line number.
func (l *Line) Number() int { return l.number }

// Name returns the line name.
func (l *Line) Name() string { return l.name }

// Direction returns the direction of the down run.
func (l *Line) Direction() vocab.Direction { return l.direction }

// Flow returns the flow topology.
func (l *Line) Flow() vocab.Flow { return l.flow }

// Level returns the vertical level.
func (l *Line) Level() vocab.Level { return l.level }

// Type returns the line category.
func (l *Line) Type() vocab.Type { return l.typ }

// Notes returns the free-text notes, or "" if none.
func (l *Line) Notes() string { return l.notes }

// String returns "<number> - <name>".
func (l *Line) String() string { return fmt.Sprintf("%d - %s", l.number, l.name) }

// HTMLID returns the anchor id "line-<number>".
func (l *Line) HTMLID() string { return "line-" + strconv.Itoa(l.number) }

// Link returns the in-page link "#line-<number>".
func (l *Line) Link() string { return "#" + l.HTMLID() }

// DownDirection returns the label for travel from the first stop to the last.
func (l *Line) DownDirection() (string, error) {
	down, _, err := l.direction.Labels()
	return down, err
}

// UpDirection returns the label for travel from the last stop to the first.
func (l *Line) UpDirection() (string, error) {
	_, up, err := l.direction.Labels()
	return up, err
}

// IsLoop reports whether the line closes back on itself.
func (l *Line) IsLoop() bool { return l.flow.IsLoop() }

// IsOneWay reports whether the line only runs in the down direction.
func (l *Line) IsOneWay() bool { return l.flow.IsOneWay() }

// FlowLabel returns the display label of the line's flow.
func (l *Line) FlowLabel() (string, error) { return l.flow.Label() }

// LevelLabel returns the display label of the line's level.
func (l *Line) LevelLabel() (string, error) { return l.level.Label() }

// TypeLabel returns the display label of the line's type.
func (l *Line) TypeLabel() (string, error) { return l.typ.Label() }

// Color returns the #rrggbb colour of the line's type.
func (l *Line) Color() (string, error) { return l.typ.Color() }

// StopCount returns the number of stops on the path, waypoints included.
func (l *Line) StopCount() int { return len(l.stops) }

// Stops yields the (station, landing) pairs of the path in declaration
// order. Waypoints are yielded as their private stations with an empty
// landing. The sequence can be iterated any number of times.
func (l *Line) Stops() iter.Seq2[*Station, string] {
	return func(yield func(*Station, string) bool) {
		for _, s := range l.stops {
			if !yield(l.resolve(s), s.landing) {
				return
			}
		}
	}
}

func (l *Line) resolve(s stop) *Station {
	if s.waypoint != nil {
		return s.waypoint
	}
	return l.net.stations[s.station]
}

// labels eagerly resolves every vocabulary entry the line depends on.
func (l *Line) labels() error {
	if _, _, err := l.direction.Labels(); err != nil {
		return err
	}
	if _, err := l.flow.Label(); err != nil {
		return err
	}
	if _, err := l.level.Label(); err != nil {
		return err
	}
	if _, err := l.typ.Label(); err != nil {
		return err
	}
	_, err := l.typ.Color()
	return err
}
