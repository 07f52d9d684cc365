// Package state owns the client's view of the crown.
//
// Controller is the single writer of the mirror: the poller calls Tick,
// the UI calls Claim and reads Snapshot on its own refresh schedule.
//
//	Poller:              Controller:                     UI:
//	Tick() ───────────→  seq++ → Fetch → apply(seq)  ←── Snapshot()
//	                     Claim → Submit → refresh    ←── Claim(msg)
//
// # Update Semantics
//
// A successful fetch replaces the mirror outright; the remote snapshot is
// total, so nothing is merged. A failed fetch leaves the mirror untouched
// and only bumps ConsecutiveFailures and LastError. There is no failed
// phase: the next tick is the retry.
//
// Completions are ordered by start sequence, not arrival. With fetches A
// then B in flight, if B lands first A is dropped when it arrives.
//
// # Claims
//
// At most one claim is pending. Claim refuses immediately, without
// touching the network, when one is in flight, the mirror is unknown, the
// message is invalid, or the session is signed out. The pending flag is
// cleared on every outcome.
package state
