package crown

import (
	"context"

	"github.com/five82/crown/internal/clarity"
	"github.com/five82/crown/internal/stacks"
)

// Contract function names.
const (
	FunctionGetKingInfo = "get-king-info"
	FunctionClaimCrown  = "claim-crown"
)

// Fetcher reads the current crown state. *Reader implements it.
type Fetcher interface {
	Fetch(ctx context.Context) (State, error)
}

var _ Fetcher = (*Reader)(nil)

// Reader queries get-king-info and decodes the result. It keeps no state
// between calls and is safe for concurrent use.
type Reader struct {
	caller   stacks.ReadOnlyCaller
	contract clarity.Principal
}

// NewReader builds a Reader for contract, which must carry a contract name.
func NewReader(caller stacks.ReadOnlyCaller, contract clarity.Principal) *Reader {
	return &Reader{caller: caller, contract: contract}
}

// Fetch performs one read. Every failure (transport, decode, shape) is a
// QUERY_FAILED error; Fetch never retries.
func (r *Reader) Fetch(ctx context.Context) (State, error) {
	value, err := r.caller.CallReadOnly(ctx, stacks.ReadOnlyCall{
		Contract: r.contract,
		Function: FunctionGetKingInfo,
	})
	if err != nil {
		return State{}, Wrap(CodeQueryFailed, "fetch crown state", err)
	}
	st, err := DecodeState(clarity.Native(value))
	if err != nil {
		return State{}, Wrap(CodeQueryFailed, "decode crown state", err)
	}
	return st, nil
}
