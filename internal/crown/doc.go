// Package crown holds the domain of the contested resource: the State
// snapshot, claim validation, the read and write paths against the
// contract, and the coded errors the claim path reports.
package crown
