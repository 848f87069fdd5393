package server

import (
	"github.com/leafstorm/railgen/pkg/network"
)

// NetworkView summarizes the network.
type NetworkView struct {
	Name      string         `json:"name"`
	Digest    string         `json:"digest,omitempty"`
	Stations  int            `json:"stations"`
	Lines     int            `json:"lines"`
	Waypoints int            `json:"waypoints"`
	X         *network.Range `json:"x,omitempty"`
	Z         *network.Range `json:"z,omitempty"`
}

// StationView is a station with the lines serving it.
type StationView struct {
	Name  string        `json:"name"`
	Slug  string        `json:"slug"`
	ID    string        `json:"id"`
	X     int           `json:"x"`
	Z     int           `json:"z"`
	Notes string        `json:"notes,omitempty"`
	Lines []ServiceView `json:"lines"`
}

// ServiceView is one line calling at a station.
type ServiceView struct {
	Number  int    `json:"number"`
	Name    string `json:"name"`
	Landing string `json:"landing,omitempty"`
}

// LineView is a line with its labels resolved and its stops in order.
type LineView struct {
	Number    int        `json:"number"`
	Name      string     `json:"name"`
	Direction string     `json:"direction"`
	Flow      string     `json:"flow"`
	Level     string     `json:"level"`
	Type      string     `json:"type"`
	TypeLabel string     `json:"type_label"`
	Color     string     `json:"color"`
	Down      string     `json:"down"`
	Up        string     `json:"up"`
	Notes     string     `json:"notes,omitempty"`
	Stops     []StopView `json:"stops"`
}

// StopView is one stop. Waypoints have no station name.
type StopView struct {
	Station  string `json:"station,omitempty"`
	Slug     string `json:"slug,omitempty"`
	Landing  string `json:"landing,omitempty"`
	X        int    `json:"x"`
	Z        int    `json:"z"`
	Waypoint bool   `json:"waypoint,omitempty"`
}

func summarize(net *network.Network, digest string) NetworkView {
	v := NetworkView{
		Name:      net.Name(),
		Digest:    digest,
		Stations:  net.StationCount(),
		Lines:     net.LineCount(),
		Waypoints: net.WaypointCount(),
	}
	if r, ok := net.XRange(); ok {
		v.X = &r
	}
	if r, ok := net.ZRange(); ok {
		v.Z = &r
	}
	return v
}

func stationView(st *network.Station) StationView {
	v := StationView{
		Name:  st.Name(),
		Slug:  st.Slug(),
		ID:    st.HTMLID(),
		X:     st.X(),
		Z:     st.Z(),
		Notes: st.Notes(),
		Lines: []ServiceView{},
	}
	for ln, landing := range st.Lines() {
		v.Lines = append(v.Lines, ServiceView{Number: ln.Number(), Name: ln.Name(), Landing: landing})
	}
	return v
}

func lineView(ln *network.Line) (LineView, error) {
	v := LineView{
		Number:    ln.Number(),
		Name:      ln.Name(),
		Direction: ln.Direction().String(),
		Flow:      ln.Flow().String(),
		Level:     ln.Level().String(),
		Type:      ln.Type().String(),
		Notes:     ln.Notes(),
		Stops:     make([]StopView, 0, ln.StopCount()),
	}
	var err error
	if v.TypeLabel, err = ln.TypeLabel(); err != nil {
		return LineView{}, err
	}
	if v.Color, err = ln.Color(); err != nil {
		return LineView{}, err
	}
	if v.Down, err = ln.DownDirection(); err != nil {
		return LineView{}, err
	}
	if v.Up, err = ln.UpDirection(); err != nil {
		return LineView{}, err
	}
	for st, landing := range ln.Stops() {
		stop := StopView{Landing: landing, X: st.X(), Z: st.Z(), Waypoint: st.IsWaypoint()}
		if !st.IsWaypoint() {
			stop.Station, stop.Slug = st.Name(), st.Slug()
		}
		v.Stops = append(v.Stops, stop)
	}
	return v, nil
}
