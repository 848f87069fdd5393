package loader

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
	"github.com/leafstorm/railgen/pkg/network"
)

// Document is the format-neutral form of a network description.
// Stations and lines keep their declaration order.
type Document struct {
	Name     string        `json:"name,omitempty" bson:"name,omitempty"`
	XRange   *Bounds       `json:"xrange,omitempty" bson:"xrange,omitempty" validate:"omitempty"`
	ZRange   *Bounds       `json:"zrange,omitempty" bson:"zrange,omitempty" validate:"omitempty"`
	Stations []StationSpec `json:"stations" bson:"stations" validate:"dive"`
	Lines    []LineSpec    `json:"lines" bson:"lines" validate:"dive"`
}

// Bounds is a declared [min, max] coordinate bound.
type Bounds struct {
	Min int `json:"min" bson:"min" validate:"ltefield=Max"`
	Max int `json:"max" bson:"max"`
}

// StationSpec declares one station.
type StationSpec struct {
	Name  string `json:"name" bson:"name" validate:"required"`
	X     int    `json:"x" bson:"x"`
	Z     int    `json:"z" bson:"z"`
	Notes string `json:"notes,omitempty" bson:"notes,omitempty"`
}

// LineSpec declares one line. Vocabulary fields hold the raw document text
// and are parsed by [Load].
type LineSpec struct {
	Number    int        `json:"number" bson:"number"`
	Name      string     `json:"name" bson:"name" validate:"required"`
	Direction string     `json:"direction" bson:"direction"`
	Flow      string     `json:"flow" bson:"flow"`
	Level     string     `json:"level" bson:"level"`
	Type      string     `json:"type" bson:"type"`
	Notes     string     `json:"notes,omitempty" bson:"notes,omitempty"`
	Stops     []StopSpec `json:"stops" bson:"stops"`
}

// StopSpec is a classified stop: a named station with an optional landing,
// or an anonymous waypoint.
type StopSpec = network.StopRef

var validate = validator.New(validator.WithRequiredStructEnabled())

// stationFields and lineFields are the raw per-entry shapes shared by every
// decoder. Coordinates are pointers so a missing value can be told apart
// from zero.
type stationFields struct {
	X     *float64 `yaml:"x" json:"x" toml:"x" validate:"required"`
	Z     *float64 `yaml:"z" json:"z" toml:"z" validate:"required"`
	Notes string   `yaml:"notes" json:"notes" toml:"notes"`
}

type lineFields struct {
	Name      string `yaml:"name" json:"name" toml:"name"`
	Direction string `yaml:"direction" json:"direction" toml:"direction"`
	Flow      string `yaml:"flow" json:"flow" toml:"flow"`
	Level     string `yaml:"level" json:"level" toml:"level"`
	Type      string `yaml:"type" json:"type" toml:"type"`
	Notes     string `yaml:"notes" json:"notes" toml:"notes"`
	Stops     []any  `yaml:"stops" json:"stops" toml:"stops"`
}

func (f stationFields) spec(name string) (StationSpec, error) {
	if err := validate.Struct(f); err != nil {
		return StationSpec{}, invalid(err, "station %q", name)
	}
	return StationSpec{Name: name, X: round(*f.X), Z: round(*f.Z), Notes: f.Notes}, nil
}

func (f lineFields) spec(key string) (LineSpec, error) {
	number, err := lineNumber(key)
	if err != nil {
		return LineSpec{}, err
	}
	ln := LineSpec{
		Number:    number,
		Name:      f.Name,
		Direction: f.Direction,
		Flow:      f.Flow,
		Level:     f.Level,
		Type:      f.Type,
		Notes:     f.Notes,
		Stops:     make([]StopSpec, 0, len(f.Stops)),
	}
	for i, raw := range f.Stops {
		stop, err := classifyStop(raw)
		if err != nil {
			return LineSpec{}, fmt.Errorf("line %d stop %d: %w", number, i, err)
		}
		ln.Stops = append(ln.Stops, stop)
	}
	return ln, nil
}

func lineNumber(key string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, rgerrors.New(rgerrors.ErrCodeInvalidInput, "line key %q is not an integer", key)
	}
	return n, nil
}

// classifyStop resolves the shape of a decoded stop value.
func classifyStop(v any) (StopSpec, error) {
	items, ok := v.([]any)
	if !ok {
		if name, ok := v.(string); ok {
			return network.Named(name, ""), nil
		}
		if _, isMap := v.(map[string]any); isMap {
			return StopSpec{}, rgerrors.New(rgerrors.ErrCodeInvalidInput, "stop must be a name or a pair, got a mapping")
		}
		return StopSpec{}, rgerrors.New(rgerrors.ErrCodeTypeMismatch, "stop must name a station, got %v", v)
	}
	if len(items) != 2 {
		return StopSpec{}, rgerrors.New(rgerrors.ErrCodeInvalidInput, "stop pair must have 2 elements, got %d", len(items))
	}

	x, xok := number(items[0])
	z, zok := number(items[1])
	if xok && zok {
		return network.Waypoint(round(x), round(z)), nil
	}

	station, ok := items[0].(string)
	if !ok {
		return StopSpec{}, rgerrors.New(rgerrors.ErrCodeTypeMismatch, "stop must name a station, got %v", items[0])
	}
	landing, err := scalarText(items[1])
	if err != nil {
		return StopSpec{}, err
	}
	return network.Named(station, landing), nil
}

func scalarText(v any) (string, error) {
	switch t := v.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case []any, map[string]any:
		return "", rgerrors.New(rgerrors.ErrCodeInvalidInput, "landing must be a scalar")
	default:
		return fmt.Sprint(t), nil
	}
}

func number(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

func round(f float64) int { return int(math.Round(f)) }

// boundsFrom converts a decoded [min, max] value.
func boundsFrom(axis string, v any) (*Bounds, error) {
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok || len(items) != 2 {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s must be a [min, max] pair", axis)
	}
	lo, lok := number(items[0])
	hi, hok := number(items[1])
	if !lok || !hok {
		return nil, rgerrors.New(rgerrors.ErrCodeInvalidInput, "%s bounds must be numbers", axis)
	}
	return &Bounds{Min: round(lo), Max: round(hi)}, nil
}

// invalid converts a validator failure into an INVALID_INPUT error naming
// the first offending field.
func invalid(err error, format string, args ...any) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fe := verrs[0]
		return rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, "%s: %s fails %q",
			fmt.Sprintf(format, args...), fe.Namespace(), fe.Tag())
	}
	return rgerrors.Wrap(rgerrors.ErrCodeInvalidInput, err, format, args...)
}
