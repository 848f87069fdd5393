package vocab

import (
	"slices"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

// Direction is the direction of travel of a line's down run.
type Direction int

// Direction values. The zero value is not a valid direction.
const (
	North Direction = iota + 1
	East
	South
	West
	Out
	In
	Dextro
	Levo
)

// Flow is the topological shape of a line.
type Flow int

// Flow values. The zero value is not a valid flow.
const (
	TwoWay Flow = iota + 1
	OneWay
	Loop
	OneWayLoop
)

// Level is the vertical placement of a line.
type Level int

// Level values. The zero value is not a valid level.
const (
	Underground Level = iota + 1
	Elevated
	Surface
)

// Type is the service category of a line.
type Type int

// Type values. The zero value is not a valid type.
const (
	Trunk Type = iota + 1
	MajorLoop
	Local
	CityLink
	PortalLink
	Branch
)

// =============================================================================
// Canonical Names
// =============================================================================

var (
	directionNames = map[Direction]string{
		North: "north", East: "east", South: "south", West: "west",
		Out: "out", In: "in", Dextro: "dextro", Levo: "levo",
	}
	flowNames = map[Flow]string{
		TwoWay: "twoway", OneWay: "oneway", Loop: "loop", OneWayLoop: "onewayloop",
	}
	levelNames = map[Level]string{
		Underground: "underground", Elevated: "el", Surface: "surface",
	}
	typeNames = map[Type]string{
		Trunk: "trunk", MajorLoop: "majorloop", Local: "local",
		CityLink: "citylink", PortalLink: "portallink", Branch: "branch",
	}
)

// =============================================================================
// Display Tables
// =============================================================================

// directionLabels is in the form [start to end, end to start].
var directionLabels = map[Direction][2]string{
	North:  {"Northbound", "Southbound"},
	East:   {"Eastbound", "Westbound"},
	South:  {"Southbound", "Northbound"},
	West:   {"Westbound", "Eastbound"},
	Out:    {"Outbound", "Inbound"},
	In:     {"Inbound", "Outbound"},
	Dextro: {"Dextro (Clockwise)", "Levo (Counterclockwise)"},
	Levo:   {"Levo (Counterclockwise)", "Dextro (Clockwise)"},
}

var flowLabels = map[Flow]string{
	TwoWay:     "Two-Way",
	OneWay:     "One-Way",
	Loop:       "Loop",
	OneWayLoop: "One-Way Loop",
}

var levelLabels = map[Level]string{
	Underground: "Underground",
	Elevated:    "Elevated",
	Surface:     "Surface",
}

var typeLabels = map[Type]string{
	Trunk:      "Trunk Line",
	MajorLoop:  "Major Loop",
	Local:      "Local Line",
	CityLink:   "City Link",
	PortalLink: "Portal Link",
	Branch:     "Branch Line",
}

var typeColors = map[Type]string{
	Trunk:      "#c0392b",
	MajorLoop:  "#8e44ad",
	Local:      "#2980b9",
	CityLink:   "#27ae60",
	PortalLink: "#d35400",
	Branch:     "#7f8c8d",
}

var (
	loopFlows   = []Flow{Loop, OneWayLoop}
	oneWayFlows = []Flow{OneWay, OneWayLoop}
)

// =============================================================================
// Parsing
// =============================================================================

// ParseDirection converts document text to a Direction.
func ParseDirection(s string) (Direction, error) { return parse("direction", directionNames, s) }

// ParseFlow converts document text to a Flow.
func ParseFlow(s string) (Flow, error) { return parse("flow", flowNames, s) }

// ParseLevel converts document text to a Level.
func ParseLevel(s string) (Level, error) { return parse("level", levelNames, s) }

// ParseType converts document text to a Type.
func ParseType(s string) (Type, error) { return parse("type", typeNames, s) }

func parse[K comparable](kind string, names map[K]string, s string) (K, error) {
	for k, name := range names {
		if name == s {
			return k, nil
		}
	}
	var zero K
	return zero, rgerrors.New(rgerrors.ErrCodeUnknownVocabulary,
		"unknown %s %q (want one of %v)", kind, s, sortedNames(names))
}

func sortedNames[K comparable](names map[K]string) []string {
	out := make([]string, 0, len(names))
	for _, n := range names {
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

// =============================================================================
// Lookups
// =============================================================================

func lookup[K comparable, V any](kind string, table map[K]V, k K, name string) (V, error) {
	if v, ok := table[k]; ok {
		return v, nil
	}
	var zero V
	if name == "" {
		name = "<invalid>"
	}
	return zero, rgerrors.New(rgerrors.ErrCodeMissingVocabulary, "no %s entry for %s", kind, name)
}

func (d Direction) String() string { return directionNames[d] }

func (f Flow) String() string { return flowNames[f] }

func (l Level) String() string { return levelNames[l] }

func (t Type) String() string { return typeNames[t] }

// Labels returns the forward (down) and reverse (up) travel labels.
func (d Direction) Labels() (forward, reverse string, err error) {
	pair, err := lookup("direction label", directionLabels, d, d.String())
	if err != nil {
		return "", "", err
	}
	return pair[0], pair[1], nil
}

// Label returns the display label of the flow.
func (f Flow) Label() (string, error) { return lookup("flow label", flowLabels, f, f.String()) }

// IsLoop reports whether the flow closes back on itself.
func (f Flow) IsLoop() bool { return slices.Contains(loopFlows, f) }

// IsOneWay reports whether trains only run in the down direction.
func (f Flow) IsOneWay() bool { return slices.Contains(oneWayFlows, f) }

// Label returns the display label of the level.
func (l Level) Label() (string, error) { return lookup("level label", levelLabels, l, l.String()) }

// Label returns the display label of the line type.
func (t Type) Label() (string, error) { return lookup("type label", typeLabels, t, t.String()) }

// Color returns the line type's colour as a #rrggbb code.
func (t Type) Color() (string, error) { return lookup("type color", typeColors, t, t.String()) }

// =============================================================================
// Enumeration & Consistency
// =============================================================================

// Directions returns every direction in declaration order.
func Directions() []Direction { return []Direction{North, East, South, West, Out, In, Dextro, Levo} }

// Flows returns every flow in declaration order.
func Flows() []Flow { return []Flow{TwoWay, OneWay, Loop, OneWayLoop} }

// Levels returns every level in declaration order.
func Levels() []Level { return []Level{Underground, Elevated, Surface} }

// Types returns every line type in declaration order.
func Types() []Type { return []Type{Trunk, MajorLoop, Local, CityLink, PortalLink, Branch} }

// CheckTables verifies that every enum member has a canonical name and an
// entry in each of its display tables.
func CheckTables() error {
	for _, d := range Directions() {
		if err := checkName("direction", directionNames, d); err != nil {
			return err
		}
		if _, _, err := d.Labels(); err != nil {
			return err
		}
	}
	for _, f := range Flows() {
		if err := checkName("flow", flowNames, f); err != nil {
			return err
		}
		if _, err := f.Label(); err != nil {
			return err
		}
	}
	for _, l := range Levels() {
		if err := checkName("level", levelNames, l); err != nil {
			return err
		}
		if _, err := l.Label(); err != nil {
			return err
		}
	}
	for _, t := range Types() {
		if err := checkName("type", typeNames, t); err != nil {
			return err
		}
		if _, err := t.Label(); err != nil {
			return err
		}
		if _, err := t.Color(); err != nil {
			return err
		}
	}
	return nil
}

func checkName[K ~int](kind string, names map[K]string, k K) error {
	if _, ok := names[k]; !ok {
		return rgerrors.New(rgerrors.ErrCodeMissingVocabulary, "%s %d has no canonical name", kind, int(k))
	}
	return nil
}
