package loader

import (
	"maps"
	"slices"

	"github.com/BurntSushi/toml"

	rgerrors "github.com/leafstorm/railgen/pkg/errors"
)

type tomlDocument struct {
	Name     string                   `toml:"name"`
	XRange   []any                    `toml:"xrange"`
	ZRange   []any                    `toml:"zrange"`
	Stations map[string]stationFields `toml:"stations"`
	Lines    map[string]lineFields    `toml:"lines"`
}

// DecodeTOML decodes a TOML network document:
//
//	name = "Metro"
//	xrange = [-500, 500]
//
//	[stations.Central]
//	x = 0
//	z = 0
//
//	[lines.1]
//	name = "Red"
//	direction = "east"
//	flow = "twoway"
//	level = "underground"
//	type = "trunk"
//	stops = [["Central", "Platform 1"], [60, -20], "Harbour"]
//
// TOML forbids repeated keys, so there is nothing to overwrite. Entries
// keep the order in which the file declares them.
func DecodeTOML(data []byte) (*Document, error) {
	var raw tomlDocument
	md, err := toml.Decode(string(data), &raw)
	if err != nil {
		return nil, rgerrors.Wrap(rgerrors.ErrCodeInvalidFormat, err, "parse toml")
	}

	doc := &Document{Name: raw.Name}
	if raw.XRange != nil {
		if doc.XRange, err = boundsFrom("xrange", raw.XRange); err != nil {
			return nil, err
		}
	}
	if raw.ZRange != nil {
		if doc.ZRange, err = boundsFrom("zrange", raw.ZRange); err != nil {
			return nil, err
		}
	}

	for _, name := range declared(md, "stations", raw.Stations) {
		st, err := raw.Stations[name].spec(name)
		if err != nil {
			return nil, err
		}
		doc.Stations = append(doc.Stations, st)
	}
	for _, key := range declared(md, "lines", raw.Lines) {
		ln, err := raw.Lines[key].spec(key)
		if err != nil {
			return nil, err
		}
		doc.Lines = append(doc.Lines, ln)
	}
	return doc, nil
}

// declared lists the keys of table in the order the file defines them.
func declared[V any](md toml.MetaData, table string, entries map[string]V) []string {
	keys := make([]string, 0, len(entries))
	seen := make(map[string]bool, len(entries))
	for _, k := range md.Keys() {
		if len(k) != 2 || k[0] != table || seen[k[1]] {
			continue
		}
		if _, ok := entries[k[1]]; ok {
			keys = append(keys, k[1])
			seen[k[1]] = true
		}
	}
	for _, k := range slices.Sorted(maps.Keys(entries)) {
		if !seen[k] {
			keys = append(keys, k)
		}
	}
	return keys
}
