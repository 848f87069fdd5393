// Package geojson exports a rail network as a GeoJSON feature collection.
//
// Coordinates are the network's raw planar (x, z) values, not longitude and
// latitude. GIS tools display them fine in a local or pixel CRS. Stations
// become Point features and lines become LineString features running
// through every stop, waypoints included. A loop line repeats its first
// point at the end so the ring closes.
package geojson

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"github.com/leafstorm/railgen/pkg/network"
)

// Collection builds the feature collection. Stations come first in name
// order, then lines in number order.
func Collection(net *network.Network) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	fc.ExtraMembers = geojson.Properties{"name": net.Name()}
	_, hasX := net.XRange()
	_, hasZ := net.ZRange()
	if net.StationCount() > 0 || hasX || hasZ {
		fc.BBox = geojson.NewBBox(net.Bounds())
	}

	for st := range net.Stations() {
		f := geojson.NewFeature(st.Point())
		f.ID = st.HTMLID()
		f.Properties["kind"] = "station"
		f.Properties["name"] = st.Name()
		f.Properties["slug"] = st.Slug()
		if st.Notes() != "" {
			f.Properties["notes"] = st.Notes()
		}
		lines := []int{}
		for ln := range st.Lines() {
			lines = append(lines, ln.Number())
		}
		f.Properties["lines"] = lines
		fc.Append(f)
	}

	for ln := range net.Lines() {
		f, err := lineFeature(ln)
		if err != nil {
			return nil, err
		}
		fc.Append(f)
	}
	return fc, nil
}

func lineFeature(ln *network.Line) (*geojson.Feature, error) {
	path := make(orb.LineString, 0, ln.StopCount()+1)
	stops := []string{}
	for st := range ln.Stops() {
		path = append(path, st.Point())
		if !st.IsWaypoint() {
			stops = append(stops, st.Name())
		}
	}
	if ln.IsLoop() && len(path) > 1 {
		path = append(path, path[0])
	}

	color, err := ln.Color()
	if err != nil {
		return nil, err
	}
	typ, err := ln.TypeLabel()
	if err != nil {
		return nil, err
	}
	flow, err := ln.FlowLabel()
	if err != nil {
		return nil, err
	}
	level, err := ln.LevelLabel()
	if err != nil {
		return nil, err
	}
	down, err := ln.DownDirection()
	if err != nil {
		return nil, err
	}
	up, err := ln.UpDirection()
	if err != nil {
		return nil, err
	}

	f := geojson.NewFeature(path)
	f.ID = ln.HTMLID()
	f.Properties = geojson.Properties{
		"kind":    "line",
		"number":  ln.Number(),
		"name":    ln.Name(),
		"type":    typ,
		"flow":    flow,
		"level":   level,
		"down":    down,
		"up":      up,
		"stroke":  color,
		"stops":   stops,
		"one_way": ln.IsOneWay(),
		"loop":    ln.IsLoop(),
	}
	if ln.Notes() != "" {
		f.Properties["notes"] = ln.Notes()
	}
	return f, nil
}

// Marshal returns the collection as GeoJSON bytes.
func Marshal(net *network.Network) ([]byte, error) {
	fc, err := Collection(net)
	if err != nil {
		return nil, err
	}
	return fc.MarshalJSON()
}
