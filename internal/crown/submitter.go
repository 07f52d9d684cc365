package crown

import (
	"context"
	"errors"
	"strconv"

	"github.com/five82/crown/internal/clarity"
	"github.com/five82/crown/internal/wallet"
)

// Session is the authentication boundary: who, if anyone, can sign.
type Session interface {
	IsSignedIn() bool
	SignIn(ctx context.Context) error
	SignOut(ctx context.Context) error
	CurrentAccount() string
}

var _ Session = (*wallet.Session)(nil)

// Signer signs and broadcasts a contract call, returning the transaction id.
type Signer interface {
	ContractCall(ctx context.Context, call wallet.ContractCall) (string, error)
}

var _ Signer = (*wallet.Bridge)(nil)

// Claimer submits claims. *Submitter implements it.
type Claimer interface {
	Submit(ctx context.Context, req ClaimRequest) (SubmissionHandle, error)
}

var _ Claimer = (*Submitter)(nil)

// SubmitterOptions configure a Submitter.
type SubmitterOptions struct {
	Signer         Signer
	Session        Session
	Contract       clarity.Principal
	Network        string                   // "mainnet" or "testnet"
	PostConditions wallet.PostConditionMode // deny unless explicitly allowed
}

// Submitter builds claim-crown calls and hands them to the signer. It does
// not deduplicate: every successful Submit broadcasts one transaction.
type Submitter struct {
	signer   Signer
	session  Session
	contract clarity.Principal
	network  string
	mode     wallet.PostConditionMode
}

// NewSubmitter builds a Submitter.
func NewSubmitter(opts SubmitterOptions) *Submitter {
	mode := opts.PostConditions
	if mode != wallet.PostConditionAllow {
		mode = wallet.PostConditionDeny
	}
	network := opts.Network
	if network == "" {
		network = "mainnet"
	}
	return &Submitter{
		signer:   opts.Signer,
		session:  opts.Session,
		contract: opts.Contract,
		network:  network,
		mode:     mode,
	}
}

// Submit checks the preconditions, then resolves as soon as the signer
// accepts the transaction for broadcast. It never waits for confirmation.
func (s *Submitter) Submit(ctx context.Context, req ClaimRequest) (SubmissionHandle, error) {
	if s.session == nil || !s.session.IsSignedIn() {
		return SubmissionHandle{}, ErrNotAuthenticated
	}
	message, err := ValidateMessage(req.Message)
	if err != nil {
		return SubmissionHandle{}, err
	}
	payer := req.Payer
	if payer == "" {
		payer = s.session.CurrentAccount()
	}

	call, err := s.buildCall(message, payer, req.Price)
	if err != nil {
		return SubmissionHandle{}, Wrap(CodeInvalidInput, "build claim transaction", err)
	}

	txid, err := s.signer.ContractCall(ctx, call)
	if err != nil {
		rejected := Wrap(CodeSubmissionRejected, "broadcast refused", err)
		if errors.Is(err, wallet.ErrCancelled) {
			rejected.Message = "signing cancelled"
			rejected.Cancelled = true
		}
		return SubmissionHandle{}, rejected
	}
	return SubmissionHandle{TxID: txid}, nil
}

func (s *Submitter) buildCall(message, payer string, price uint64) (wallet.ContractCall, error) {
	arg, err := clarity.EncodeHex(clarity.StringUTF8(message))
	if err != nil {
		return wallet.ContractCall{}, err
	}
	call := wallet.ContractCall{
		ContractAddress:   s.contract.Address(),
		ContractName:      s.contract.Contract,
		FunctionName:      FunctionClaimCrown,
		FunctionArgs:      []string{arg},
		Network:           s.network,
		AnchorMode:        "any",
		PostConditionMode: s.mode,
		PostConditions:    []wallet.PostCondition{},
	}
	if s.mode == wallet.PostConditionDeny {
		// Caps the payment at the price the user saw; a raised price
		// aborts on-ledger instead of charging more.
		call.PostConditions = append(call.PostConditions, wallet.PostCondition{
			Type:      "stx",
			Principal: payer,
			Condition: "lte",
			Amount:    strconv.FormatUint(price, 10),
		})
	}
	return call, nil
}
