// Package store provides key-value persistence for captured attribution
// parameters.
//
// Two implementations back the same Store interface:
//   - SQLite (via modernc.org/sqlite) for durable mode, where captured
//     parameters survive process restarts until explicit clear or expiry
//   - an in-memory map for session mode, where parameters live only for
//     the lifetime of the process
//
// Design decision: We use SQLite instead of a flat JSON file for the
// durable store because:
//  1. Writes are atomic without rename dances
//  2. The store is shared territory: other tools on the same machine can
//     keep their own keys alongside ours without a format negotiation
//  3. CGO-free implementation allows easy cross-compilation
package store
