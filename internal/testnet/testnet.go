// Package testnet builds small fixed networks for tests across the module.
package testnet

import (
	"testing"

	"github.com/leafstorm/railgen/pkg/network"
	"github.com/leafstorm/railgen/pkg/vocab"
)

// Metro returns a three-station network:
//
//	line 1 Red (east, two-way, trunk):  Old Town [Platform 2] -> Central [Platform 1] -> waypoint (60, -20) -> Harbour
//	line 2 Harbour Shuttle (out, one-way, portal link): Central -> Harbour
//	line 3 Circle (dextro, loop, major loop): Central -> Old Town -> Harbour
//
// The x bound is [-500, 500] and the z bound [-400, 400].
func Metro(tb testing.TB) *network.Network {
	tb.Helper()
	b := network.NewBuilder("Metro", network.WithXRange(-500, 500), network.WithZRange(-400, 400))
	must := func(_ any, err error) {
		tb.Helper()
		if err != nil {
			tb.Fatalf("build metro: %v", err)
		}
	}
	must(b.AddStation("Central", 0, 0, "Interchange with the ferry"))
	must(b.AddStation("Harbour", 120, -40, ""))
	must(b.AddStation("Old Town", -80, 35, ""))

	must(b.AddLine(1, "Red", vocab.East, vocab.TwoWay, vocab.Underground, vocab.Trunk, "Runs every five minutes"))
	stops(tb, b, 1,
		network.Named("Old Town", "Platform 2"),
		network.Named("Central", "Platform 1"),
		network.Waypoint(60, -20),
		network.Named("Harbour", ""),
	)

	must(b.AddLine(2, "Harbour Shuttle", vocab.Out, vocab.OneWay, vocab.Elevated, vocab.PortalLink, ""))
	stops(tb, b, 2, network.Named("Central", ""), network.Named("Harbour", ""))

	must(b.AddLine(3, "Circle", vocab.Dextro, vocab.Loop, vocab.Surface, vocab.MajorLoop, ""))
	stops(tb, b, 3, network.Named("Central", ""), network.Named("Old Town", ""), network.Named("Harbour", ""))

	net, err := b.Build()
	if err != nil {
		tb.Fatalf("build metro: %v", err)
	}
	return net
}

func stops(tb testing.TB, b *network.Builder, number int, refs ...network.StopRef) {
	tb.Helper()
	for _, ref := range refs {
		if err := b.AddStop(number, ref); err != nil {
			tb.Fatalf("build metro: line %d stop %s: %v", number, ref, err)
		}
	}
}
