package crown

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/five82/crown/internal/wallet"
)

type fakeSession struct {
	account string
}

func (f *fakeSession) IsSignedIn() bool              { return f.account != "" }
func (f *fakeSession) SignIn(context.Context) error  { return nil }
func (f *fakeSession) SignOut(context.Context) error { return nil }
func (f *fakeSession) CurrentAccount() string        { return f.account }

type fakeSigner struct {
	txid  string
	err   error
	calls []wallet.ContractCall
}

func (f *fakeSigner) ContractCall(_ context.Context, call wallet.ContractCall) (string, error) {
	f.calls = append(f.calls, call)
	return f.txid, f.err
}

func newTestSubmitter(t *testing.T, signer *fakeSigner, session *fakeSession, mode wallet.PostConditionMode) *Submitter {
	t.Helper()
	return NewSubmitter(SubmitterOptions{
		Signer:         signer,
		Session:        session,
		Contract:       testContract(t),
		Network:        "mainnet",
		PostConditions: mode,
	})
}

func TestSubmitter_BuildsClaimCall(t *testing.T) {
	signer := &fakeSigner{txid: "tx123"}
	s := newTestSubmitter(t, signer, &fakeSession{account: holder}, "")

	handle, err := s.Submit(context.Background(), ClaimRequest{Message: " new reign ", Price: 5000000})
	if err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	if handle.TxID != "tx123" {
		t.Fatalf("TxID = %q, want tx123", handle.TxID)
	}
	if len(signer.calls) != 1 {
		t.Fatalf("signer calls = %d, want 1", len(signer.calls))
	}
	call := signer.calls[0]
	if call.ContractAddress != "SP2QNSNKR3NRDWNTX0Q7R4T8WGBJ8RE8RA516AKZP" || call.ContractName != "centrifuge-king" {
		t.Fatalf("contract = %s.%s", call.ContractAddress, call.ContractName)
	}
	if call.FunctionName != FunctionClaimCrown {
		t.Fatalf("function = %q, want %q", call.FunctionName, FunctionClaimCrown)
	}
	if len(call.FunctionArgs) != 1 || call.FunctionArgs[0] != "0x0e000000096e657720726569676e" {
		t.Fatalf("args = %v", call.FunctionArgs)
	}
	if call.PostConditionMode != wallet.PostConditionDeny {
		t.Fatalf("mode = %q, want deny by default", call.PostConditionMode)
	}
	want := wallet.PostCondition{Type: "stx", Principal: holder, Condition: "lte", Amount: "5000000"}
	if len(call.PostConditions) != 1 || call.PostConditions[0] != want {
		t.Fatalf("post conditions = %+v, want [%+v]", call.PostConditions, want)
	}
}

func TestSubmitter_AllowModeSkipsPostConditions(t *testing.T) {
	signer := &fakeSigner{txid: "tx1"}
	s := newTestSubmitter(t, signer, &fakeSession{account: holder}, wallet.PostConditionAllow)

	if _, err := s.Submit(context.Background(), ClaimRequest{Message: "hi", Price: 1}); err != nil {
		t.Fatalf("Submit returned error: %v", err)
	}
	call := signer.calls[0]
	if call.PostConditionMode != wallet.PostConditionAllow || len(call.PostConditions) != 0 {
		t.Fatalf("mode=%q conditions=%+v, want allow with none", call.PostConditionMode, call.PostConditions)
	}
}

func TestSubmitter_PreconditionsSkipSigner(t *testing.T) {
	tests := []struct {
		name    string
		account string
		message string
		want    error
	}{
		{name: "signed out", account: "", message: "hi", want: ErrNotAuthenticated},
		{name: "empty message", account: holder, message: "", want: ErrInvalidInput},
		{name: "too long", account: holder, message: strings.Repeat("x", MaxMessageLength+1), want: ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &fakeSigner{txid: "tx"}
			s := newTestSubmitter(t, signer, &fakeSession{account: tt.account}, "")
			_, err := s.Submit(context.Background(), ClaimRequest{Message: tt.message, Price: 1})
			if !errors.Is(err, tt.want) {
				t.Fatalf("Submit error = %v, want %v", err, tt.want)
			}
			if len(signer.calls) != 0 {
				t.Fatalf("signer called %d times, want 0", len(signer.calls))
			}
		})
	}
}

func TestSubmitter_SignerFailures(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		cancelled bool
	}{
		{name: "cancelled", err: wallet.ErrCancelled, cancelled: true},
		{name: "refused", err: errors.New("bridge: NotEnoughFunds")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			signer := &fakeSigner{err: tt.err}
			s := newTestSubmitter(t, signer, &fakeSession{account: holder}, "")
			_, err := s.Submit(context.Background(), ClaimRequest{Message: "hi", Price: 1})
			if !errors.Is(err, ErrSubmissionRejected) {
				t.Fatalf("Submit error = %v, want ErrSubmissionRejected", err)
			}
			if IsCancelled(err) != tt.cancelled {
				t.Fatalf("IsCancelled = %v, want %v", !tt.cancelled, tt.cancelled)
			}
			if !errors.Is(err, tt.err) {
				t.Fatalf("cause %v not preserved in %v", tt.err, err)
			}
		})
	}
}
