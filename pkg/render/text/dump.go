// Package text writes the plain-text listing of a rail network.
package text

import (
	"bufio"
	"fmt"
	"io"

	"github.com/leafstorm/railgen/pkg/network"
)

// Absent is printed in place of a missing landing or notes.
const Absent = "-"

// Dump writes every line, then every station, to w:
//
//	== Metro ==
//	1 - Red (line-1)
//	  ↓ = Eastbound, ↑ = Westbound
//	  Central (x = 0, z = 0, Platform 1)
//	  Harbour (x = 120, z = -40, -)
//
//	Central (station-central)
//	  Interchange with the ferry
//	  1 - Red (Platform 1)
//
// Waypoints appear in line listings as "(waypoint)".
func Dump(w io.Writer, net *network.Network) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "== %s ==\n", net.Name())

	for ln := range net.Lines() {
		down, err := ln.DownDirection()
		if err != nil {
			return err
		}
		up, err := ln.UpDirection()
		if err != nil {
			return err
		}
		fmt.Fprintf(bw, "%s (%s)\n", ln, ln.HTMLID())
		fmt.Fprintf(bw, "  ↓ = %s, ↑ = %s\n", down, up)
		for st, landing := range ln.Stops() {
			name := st.Name()
			if st.IsWaypoint() {
				name = "(waypoint)"
			}
			fmt.Fprintf(bw, "  %s (%s, %s)\n", name, st.Coords(), orAbsent(landing))
		}
		bw.WriteString("\n")
	}

	for st := range net.Stations() {
		fmt.Fprintf(bw, "%s (%s)\n", st.Name(), st.HTMLID())
		fmt.Fprintf(bw, "  %s\n", orAbsent(st.Notes()))
		for ln, landing := range st.Lines() {
			fmt.Fprintf(bw, "  %s (%s)\n", ln, orAbsent(landing))
		}
		bw.WriteString("\n")
	}
	return bw.Flush()
}

func orAbsent(s string) string {
	if s == "" {
		return Absent
	}
	return s
}
