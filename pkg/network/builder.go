package network

import (
	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/vocab"
)

// Option configures a [Builder].
type Option func(*Builder)

// WithXRange declares the x bound used for relative coordinates.
func WithXRange(min, max int) Option {
	return func(b *Builder) { b.net.xrange = &Range{Min: min, Max: max} }
}

// WithZRange declares the z bound used for relative coordinates.
func WithZRange(min, max int) Option {
	return func(b *Builder) { b.net.zrange = &Range{Min: min, Max: max} }
}

// WithOverwrite lets a later station or line definition replace an
// earlier one with the same key instead of failing with DUPLICATE_KEY.
func WithOverwrite() Option {
	return func(b *Builder) { b.overwrite = true }
}

// Builder assembles a [Network]. It is the only way to mutate one.
//
// A Builder is not safe for concurrent use. After [Builder.Build] returns
// successfully every further call fails with INTERNAL_ERROR.
type Builder struct {
	net       *Network
	overwrite bool
	built     bool
}

// NewBuilder starts a network with the given name. An empty name becomes
// [DefaultName].
func NewBuilder(name string, opts ...Option) *Builder {
	b := &Builder{net: newNetwork(name)}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *Builder) usable() error {
	if b.built {
		return rgerrors.New(rgerrors.ErrCodeInternal, "network %q is already built", b.net.name)
	}
	return nil
}

// AddStation registers a station.
//
// A duplicate name fails with DUPLICATE_KEY unless the builder overwrites.
// A station that already has lines stopping at it is never replaced.
func (b *Builder) AddStation(name string, x, z int, notes string) (*Station, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	if name == "" {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "station name must not be empty")
	}
	if old, exists := b.net.stations[name]; exists {
		if !b.overwrite {
			return nil, rgerrors.New(rgerrors.ErrCodeDuplicateKey, "station %q is defined twice", name)
		}
		if len(old.refs) > 0 {
			return nil, rgerrors.New(rgerrors.ErrCodeDuplicateKey,
				"station %q cannot be redefined after lines stop at it", name)
		}
	}
	st := &Station{net: b.net, name: name, x: x, z: z, notes: notes}
	b.net.stations[name] = st
	return st, nil
}

// AddLine registers a line with an empty path.
//
// Every vocabulary value is resolved eagerly, so an out-of-range enum fails
// here with MISSING_VOCABULARY rather than at render time. A duplicate
// number fails with DUPLICATE_KEY unless the builder overwrites, in which
// case the old line's back-references are withdrawn from its stations.
func (b *Builder) AddLine(number int, name string, direction vocab.Direction, flow vocab.Flow,
	level vocab.Level, typ vocab.Type, notes string) (*Line, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	ln := &Line{
		net:       b.net,
		number:    number,
		name:      name,
		direction: direction,
		flow:      flow,
		level:     level,
		typ:       typ,
		notes:     notes,
	}
	if err := ln.labels(); err != nil {
		return nil, err
	}
	if old, exists := b.net.lines[number]; exists {
		if !b.overwrite {
			return nil, rgerrors.New(rgerrors.ErrCodeDuplicateKey, "line %d is defined twice", number)
		}
		b.withdraw(old)
	}
	b.net.lines[number] = ln
	return ln, nil
}

func (b *Builder) withdraw(old *Line) {
	for _, s := range old.stops {
		if s.waypoint != nil {
			continue
		}
		if st, ok := b.net.stations[s.station]; ok {
			st.removeLine(old.number, s.landing)
		}
	}
	kept := b.net.waypoints[:0]
	for _, wp := range b.net.waypoints {
		if !wpOnLine(wp, old.number) {
			kept = append(kept, wp)
		}
	}
	b.net.waypoints = kept
}

func wpOnLine(wp *Station, number int) bool {
	return len(wp.refs) == 1 && wp.refs[0].Line == number
}

// AddStop appends a stop to the path of line number and registers the
// matching back-reference on the station.
//
// A named reference must resolve to a registered station (NOT_FOUND
// otherwise). A waypoint reference gets a private, unregistered station.
func (b *Builder) AddStop(number int, ref StopRef) error {
	if err := b.usable(); err != nil {
		return err
	}
	ln, ok := b.net.lines[number]
	if !ok {
		return rgerrors.New(rgerrors.ErrCodeNotFound, "no line numbered %d", number)
	}

	switch ref.Kind {
	case StopNamed:
		st, err := b.net.Station(ref.Station)
		if err != nil {
			return err
		}
		ln.stops = append(ln.stops, stop{station: st.name, landing: ref.Landing})
		st.addLine(number, ref.Landing)
	case StopWaypoint:
		wp := &Station{net: b.net, x: ref.X, z: ref.Z, waypoint: true}
		ln.stops = append(ln.stops, stop{waypoint: wp})
		wp.addLine(number, "")
		b.net.waypoints = append(b.net.waypoints, wp)
	default:
		return rgerrors.New(rgerrors.ErrCodeTypeMismatch, "unknown stop kind %d", ref.Kind)
	}
	return nil
}

// Build validates and returns the finished network. The builder cannot be
// used afterwards.
func (b *Builder) Build() (*Network, error) {
	if err := b.usable(); err != nil {
		return nil, err
	}
	for axis, r := range map[Axis]*Range{AxisX: b.net.xrange, AxisZ: b.net.zrange} {
		if r != nil && r.Min > r.Max {
			return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput,
				"%srange minimum %d exceeds maximum %d", axis, r.Min, r.Max)
		}
	}
	if err := b.net.Validate(); err != nil {
		return nil, err
	}
	b.built = true
	return b.net, nil
}
