// Package snapshot is the portable wire form of a loaded network.
//
// A [Snapshot] wraps a [loader.Document] rebuilt from a finished network
// together with an identifier, a content digest and a timestamp. The same
// value is written as indented JSON by `railgen export -f json`, returned by
// the HTTP API and stored as a BSON document by the MongoDB store.
//
// Round trip:
//
//	snap := snapshot.New(net)
//	data, _ := snapshot.Marshal(snap)
//	back, _ := snapshot.Unmarshal(data)
//	net2, _ := back.Network(loader.Options{})
//
// net2 has the same stations, lines, stops and bounds as net.
package snapshot
