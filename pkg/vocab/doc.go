// Package vocab holds the closed vocabularies a rail network document may
// use for its line metadata, together with their display tables.
//
// # Enumerations
//
// Four enums describe a line:
//
//   - [Direction]: which way the "down" run of a line travels
//     (north, east, south, west, out, in, dextro, levo)
//   - [Flow]: the topology of the line (twoway, oneway, loop, onewayloop)
//   - [Level]: vertical placement (underground, el, surface)
//   - [Type]: service category (trunk, majorloop, local, citylink,
//     portallink, branch)
//
// Text from a document is converted with the Parse functions, which fail
// with UNKNOWN_VOCABULARY for anything outside the closed set:
//
//	dir, err := vocab.ParseDirection("north")
//	down, up, _ := dir.Labels() // "Northbound", "Southbound"
//
// # Tables
//
// Each enum has display tables that are initialised once and never
// mutated. A lookup for a value without a table entry fails with
// MISSING_VOCABULARY rather than returning an empty label. [CheckTables]
// verifies that every member of every enum has its entries; the loader
// runs it before building any line so the type vocabulary and colour
// table cannot drift apart unnoticed.
package vocab
