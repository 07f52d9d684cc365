// Package journal keeps a local history for the events panel: every reign
// the client has observed and every claim it has attempted.
//
// The history is advisory. It records what this client saw, so reigns that
// started and ended between two polls never appear, and an accepted claim
// means only that the signer broadcast it.
package journal
