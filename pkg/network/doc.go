// Package network provides the in-memory graph of a rail network: its
// stations, its lines and the ordered stops that connect them.
//
// # Overview
//
// A [Network] owns two keyed collections: stations by name and lines by
// number. Cross references between them are stored as keys rather than
// pointers. A line's path is a list of (station name, landing) pairs and a
// station keeps (line number, landing) back-references. The network
// resolves keys on enumeration, so entities never point at each other.
//
// # Construction
//
// Networks are built once through a [Builder] and are read-only afterwards:
//
//	b := network.NewBuilder("Metro", network.WithXRange(-500, 500))
//	b.AddStation("Central", 0, 0, "")
//	b.AddStation("Harbour", 120, -40, "")
//	b.AddLine(1, "Red", vocab.East, vocab.TwoWay, vocab.Underground, vocab.Trunk, "")
//	b.AddStop(1, network.Named("Central", "Platform 1"))
//	b.AddStop(1, network.Named("Harbour", ""))
//	net, err := b.Build()
//
// Every mutator lives on the builder. A built *Network has no exported way
// to change it, so one network can be handed to any number of concurrent
// readers.
//
// # Enumeration
//
// Renderers traverse a network through four restartable iterators:
//
//   - [Network.Stations]: stations in ascending name order
//   - [Network.Lines]: lines in ascending number order
//   - [Line.Stops]: (station, landing) pairs in path order
//   - [Station.Lines]: (line, landing) pairs in ascending line number order
//
// # Waypoints
//
// A stop may be an anonymous waypoint that only carries coordinates. The
// builder synthesises a private [Station] for it so the path has a point to
// draw through. Waypoints are never registered: they do not appear in
// [Network.Stations] and cannot be looked up by name.
//
// # Consistency
//
// For every stop (S, l) on line L, station S carries the back-reference
// (L, l), and every back-reference corresponds to a stop. [Builder.Build]
// verifies this with [Network.Validate] before returning.
package network
