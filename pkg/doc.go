// Package pkg holds the public libraries of railgen, which turns a rail
// network document into listings, diagrams and data exports.
//
// # Overview
//
// A network is read from YAML, TOML or JSON, validated against the fixed
// vocabularies of line directions, flows, levels and types, and built into
// an immutable graph of stations and lines. Renderers then walk that graph:
//
//	YAML / TOML / JSON document
//	         ↓
//	    [loader] (decode, normalize, validate)
//	         ↓
//	    [network] (stations, lines, stops)
//	         ↓
//	    [render] subpackages (HTML, text, DOT/SVG, neighbour JSON, GeoJSON)
//
// [pipeline] runs those stages with an artifact [cache], and [snapshot],
// [store] and [export/sqlite] persist a network for other tools.
//
// # Quick Start
//
//	net, err := loader.LoadFile("metro.yml", loader.Options{})
//	if err != nil {
//	    return err
//	}
//	var page bytes.Buffer
//	err = html.Render(&page, html.DefaultTemplate(), html.Page{Network: net})
//
// [loader]: github.com/leafstorm/railgen/pkg/loader
// [network]: github.com/leafstorm/railgen/pkg/network
// [render]: github.com/leafstorm/railgen/pkg/render
// [pipeline]: github.com/leafstorm/railgen/pkg/pipeline
// [cache]: github.com/leafstorm/railgen/pkg/cache
// [snapshot]: github.com/leafstorm/railgen/pkg/snapshot
// [store]: github.com/leafstorm/railgen/pkg/store
// [export/sqlite]: github.com/leafstorm/railgen/pkg/export/sqlite
package pkg
