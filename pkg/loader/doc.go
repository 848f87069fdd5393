// Package loader turns a declarative rail network document into a
// [network.Network].
//
// # Document shape
//
// All supported formats describe the same structure:
//
//	name: Metro                # optional, defaults to "Rail Network"
//	xrange: [-500, 500]        # optional
//	zrange: [-500, 500]        # optional
//	stations:
//	  Central: {x: 0, z: 0, notes: Interchange}
//	  Harbour: {x: 120, z: -40}
//	lines:
//	  1:
//	    name: Red
//	    direction: east
//	    flow: twoway
//	    level: underground
//	    type: trunk
//	    stops:
//	      - [Central, Platform 1]   # station with landing
//	      - [60, -20]               # anonymous waypoint
//	      - Harbour                 # station without landing
//
// A stop is classified once, while decoding, into a [StopSpec]: a scalar
// names a station; a pair of numbers is a waypoint; any other pair is a
// station followed by its landing.
//
// # Formats
//
// YAML is the canonical format. [DecodeYAML] walks the raw node tree so the
// declaration order of stations and lines survives, duplicate keys
// included. [DecodeTOML] and [DecodeJSON] accept the same structure.
// [FormatFromPath] picks a decoder by file extension.
//
// # Loading
//
// [Load] builds the network all-or-nothing: the first failure is returned
// and no network escapes. Error codes from [errors] survive wrapping, so
// callers can test them with errors.Is:
//
//	net, err := loader.LoadFile("metro.yml", loader.Options{})
//	if errors.Is(err, errors.ErrCodeUnknownVocabulary) { ... }
//
// [errors]: github.com/leafstorm/railgen/pkg/errors
package loader
