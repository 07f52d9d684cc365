package crown

import "time"

// MicroPerUnit is the number of micro-units in one whole unit of the
// ledger's native currency.
const MicroPerUnit = 1_000_000

// State is one snapshot of the contested resource as read from the ledger.
// Values are only ever produced by DecodeState; the client never builds one
// from guesses.
type State struct {
	Holder  string // account identifier of the current holder
	Price   uint64 // micro-units a challenger pays the holder
	Message string // set by the holder at claim time
}

// Equal reports whether two snapshots carry the same holder, price and message.
func (s State) Equal(other State) bool {
	return s.Holder == other.Holder && s.Price == other.Price && s.Message == other.Message
}

// ClaimRequest is a user-authored claim. Payer and Price are filled in by
// the caller from the signed-in account and the last known mirror.
type ClaimRequest struct {
	Message string
	Payer   string
	Price   uint64
}

// SubmissionHandle acknowledges that a transaction was accepted for
// broadcast. It does not imply confirmation.
type SubmissionHandle struct {
	TxID string
}

// ClaimStatus is the outcome of one claim attempt as far as this client can
// know it: broadcast or not.
type ClaimStatus string

const (
	ClaimAccepted  ClaimStatus = "accepted"
	ClaimRejected  ClaimStatus = "rejected"
	ClaimCancelled ClaimStatus = "cancelled"
)

// ClaimAttempt is a submitted claim and what became of it.
type ClaimAttempt struct {
	Message string
	Payer   string
	Price   uint64
	TxID    string // set when Status is ClaimAccepted
	Error   string // set otherwise
	Status  ClaimStatus
	At      time.Time
}
