package state

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/five82/crown/internal/crown"
)

type fetchStep struct {
	state crown.State
	err   error
	gate  chan struct{} // when set, Fetch blocks until it is closed
}

// scriptedReader returns steps in call order and reports each call on started.
type scriptedReader struct {
	mu      sync.Mutex
	steps   []fetchStep
	calls   int
	started chan int
}

func newScriptedReader(steps ...fetchStep) *scriptedReader {
	return &scriptedReader{steps: steps, started: make(chan int, 16)}
}

func (r *scriptedReader) Fetch(ctx context.Context) (crown.State, error) {
	r.mu.Lock()
	idx := r.calls
	r.calls++
	var step fetchStep
	if idx < len(r.steps) {
		step = r.steps[idx]
	} else {
		step = fetchStep{err: errors.New("no scripted response")}
	}
	r.mu.Unlock()

	r.started <- idx
	if step.gate != nil {
		<-step.gate
	}
	return step.state, step.err
}

func (r *scriptedReader) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls
}

type fakeSubmitter struct {
	mu      sync.Mutex
	calls   []crown.ClaimRequest
	handle  crown.SubmissionHandle
	err     error
	gate    chan struct{}
	entered chan struct{}
}

func (s *fakeSubmitter) Submit(ctx context.Context, req crown.ClaimRequest) (crown.SubmissionHandle, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	s.mu.Unlock()
	if s.entered != nil {
		s.entered <- struct{}{}
	}
	if s.gate != nil {
		<-s.gate
	}
	return s.handle, s.err
}

func (s *fakeSubmitter) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

type fakeSession struct{ account string }

func (f *fakeSession) IsSignedIn() bool              { return f.account != "" }
func (f *fakeSession) SignIn(context.Context) error  { return nil }
func (f *fakeSession) SignOut(context.Context) error { return nil }
func (f *fakeSession) CurrentAccount() string        { return f.account }

type fakeRecorder struct {
	mu     sync.Mutex
	reigns []crown.State
	claims []crown.ClaimAttempt
}

func (f *fakeRecorder) RecordReign(_ context.Context, st crown.State, _ time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reigns = append(f.reigns, st)
	return nil
}

func (f *fakeRecorder) RecordClaim(_ context.Context, attempt crown.ClaimAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.claims = append(f.claims, attempt)
	return nil
}

var (
	reignOld = crown.State{Holder: "SP1HOLDER", Price: 5000000, Message: "old"}
	reignNew = crown.State{Holder: "SP2HOLDER", Price: 7000000, Message: "new reign"}
)

func TestController_InitializeThenClaimRefreshesMirror(t *testing.T) {
	reader := newScriptedReader(fetchStep{state: reignOld}, fetchStep{state: reignNew})
	submitter := &fakeSubmitter{handle: crown.SubmissionHandle{TxID: "tx123"}}
	c := New(Options{Reader: reader, Submitter: submitter, Session: &fakeSession{account: "SP2HOLDER"}})

	if snap := c.Snapshot(); snap.Known || snap.Phase != PhaseUninitialized {
		t.Fatalf("initial snapshot = %+v, want unknown and uninitialized", snap)
	}
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	if snap := c.Snapshot(); snap.Mirror != reignOld || snap.Phase != PhaseReady {
		t.Fatalf("after Initialize mirror=%+v phase=%v", snap.Mirror, snap.Phase)
	}

	handle, err := c.Claim(context.Background(), "new reign")
	if err != nil {
		t.Fatalf("Claim returned error: %v", err)
	}
	if handle.TxID != "tx123" {
		t.Fatalf("TxID = %q, want tx123", handle.TxID)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("Submit calls = %d, want 1", submitter.callCount())
	}
	if got := submitter.calls[0]; got.Price != 5000000 || got.Payer != "SP2HOLDER" || got.Message != "new reign" {
		t.Fatalf("ClaimRequest = %+v", got)
	}

	snap := c.Snapshot()
	if snap.Mirror != reignNew {
		t.Fatalf("mirror = %+v, want %+v", snap.Mirror, reignNew)
	}
	if snap.Pending {
		t.Fatal("Pending = true after claim settled")
	}
	if reader.callCount() != 2 {
		t.Fatalf("Fetch calls = %d, want 2 (initial + post-claim)", reader.callCount())
	}
}

func TestController_InitializeFailureKeepsUnknown(t *testing.T) {
	reader := newScriptedReader(fetchStep{err: crown.Wrap(crown.CodeQueryFailed, "fetch crown state", errors.New("down"))})
	c := New(Options{Reader: reader})

	err := c.Initialize(context.Background())
	if !errors.Is(err, crown.ErrQuery) {
		t.Fatalf("Initialize error = %v, want ErrQuery", err)
	}
	snap := c.Snapshot()
	if snap.Known || snap.Phase != PhaseLoading {
		t.Fatalf("snapshot = %+v, want unknown and loading", snap)
	}
	if snap.ConsecutiveFailures != 1 || snap.LastError == nil {
		t.Fatalf("failures=%d lastErr=%v", snap.ConsecutiveFailures, snap.LastError)
	}
}

func TestController_TickFailureLeavesMirror(t *testing.T) {
	reader := newScriptedReader(
		fetchStep{state: reignOld},
		fetchStep{err: errors.New("fail 1")},
		fetchStep{err: errors.New("fail 2")},
		fetchStep{state: reignNew},
	)
	c := New(Options{Reader: reader})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	before := c.Snapshot()

	c.Tick(context.Background())
	snap := c.Snapshot()
	if snap.Mirror != before.Mirror || !snap.Known {
		t.Fatalf("mirror changed on failure: got %+v want %+v", snap.Mirror, before.Mirror)
	}
	if !snap.LastUpdated.Equal(before.LastUpdated) {
		t.Fatalf("LastUpdated moved on failure")
	}
	if snap.ConsecutiveFailures != 1 || snap.IsOffline() {
		t.Fatalf("failures = %d offline=%v, want 1 and online", snap.ConsecutiveFailures, snap.IsOffline())
	}

	c.Tick(context.Background())
	if snap := c.Snapshot(); !snap.IsOffline() || snap.Mirror != reignOld {
		t.Fatalf("after second failure offline=%v mirror=%+v", snap.IsOffline(), snap.Mirror)
	}

	c.Tick(context.Background())
	snap = c.Snapshot()
	if snap.Mirror != reignNew || snap.ConsecutiveFailures != 0 || snap.LastError != nil {
		t.Fatalf("after success snapshot = %+v", snap)
	}
}

func TestController_OlderFetchNeverOverwritesNewer(t *testing.T) {
	gate := make(chan struct{})
	reader := newScriptedReader(
		fetchStep{state: reignOld, gate: gate},
		fetchStep{state: reignNew},
	)
	c := New(Options{Reader: reader})

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()
	<-reader.started // first fetch holds sequence 1

	c.Tick(context.Background())
	if snap := c.Snapshot(); snap.Mirror != reignNew {
		t.Fatalf("mirror = %+v, want newer fetch applied", snap.Mirror)
	}

	close(gate)
	<-done
	if snap := c.Snapshot(); snap.Mirror != reignNew {
		t.Fatalf("mirror = %+v, stale completion overwrote newer result", snap.Mirror)
	}
}

func TestController_CloseDiscardsLateCompletion(t *testing.T) {
	gate := make(chan struct{})
	reader := newScriptedReader(fetchStep{state: reignOld, gate: gate})
	c := New(Options{Reader: reader})

	done := make(chan struct{})
	go func() {
		c.Tick(context.Background())
		close(done)
	}()
	<-reader.started
	c.Close()
	close(gate)
	<-done

	if snap := c.Snapshot(); snap.Known {
		t.Fatalf("mirror applied after Close: %+v", snap.Mirror)
	}
	c.Tick(context.Background())
	if reader.callCount() != 1 {
		t.Fatalf("Fetch calls after Close = %d, want 1", reader.callCount())
	}
}

func TestController_ConcurrentClaimIsRejected(t *testing.T) {
	reader := newScriptedReader(fetchStep{state: reignOld}, fetchStep{state: reignNew})
	submitter := &fakeSubmitter{
		handle:  crown.SubmissionHandle{TxID: "tx1"},
		gate:    make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	c := New(Options{Reader: reader, Submitter: submitter, Session: &fakeSession{account: "SP2"}})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	errc := make(chan error, 1)
	go func() {
		_, err := c.Claim(context.Background(), "first")
		errc <- err
	}()
	<-submitter.entered

	if snap := c.Snapshot(); !snap.Pending {
		t.Fatal("Pending = false while submission in flight")
	}
	if _, err := c.Claim(context.Background(), "second"); !errors.Is(err, crown.ErrClaimInFlight) {
		t.Fatalf("second Claim error = %v, want ErrClaimInFlight", err)
	}

	close(submitter.gate)
	if err := <-errc; err != nil {
		t.Fatalf("first Claim returned error: %v", err)
	}
	if submitter.callCount() != 1 {
		t.Fatalf("Submit calls = %d, want 1", submitter.callCount())
	}
	if c.Snapshot().Pending {
		t.Fatal("Pending = true after claim settled")
	}
}

func TestController_ClaimPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		account string
		init    bool
		message string
		want    error
	}{
		{name: "empty message", account: "SP2", init: true, message: "", want: crown.ErrInvalidInput},
		{name: "over length", account: "SP2", init: true, message: strings.Repeat("a", 101), want: crown.ErrInvalidInput},
		{name: "signed out", account: "", init: true, message: "valid", want: crown.ErrNotAuthenticated},
		{name: "mirror unknown", account: "SP2", init: false, message: "valid", want: crown.ErrStateUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reader := newScriptedReader(fetchStep{state: reignOld})
			submitter := &fakeSubmitter{}
			c := New(Options{Reader: reader, Submitter: submitter, Session: &fakeSession{account: tt.account}})
			if tt.init {
				if err := c.Initialize(context.Background()); err != nil {
					t.Fatalf("Initialize returned error: %v", err)
				}
			}

			_, err := c.Claim(context.Background(), tt.message)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Claim error = %v, want %v", err, tt.want)
			}
			if submitter.callCount() != 0 {
				t.Fatalf("Submit calls = %d, want 0", submitter.callCount())
			}
			if c.Snapshot().Pending {
				t.Fatal("Pending = true after rejected claim")
			}
		})
	}
}

func TestController_RejectedClaimClearsPendingWithoutRefresh(t *testing.T) {
	reader := newScriptedReader(fetchStep{state: reignOld})
	rejected := crown.Wrap(crown.CodeSubmissionRejected, "signing cancelled", errors.New("cancelled"))
	rejected.Cancelled = true
	submitter := &fakeSubmitter{err: rejected}
	recorder := &fakeRecorder{}
	c := New(Options{Reader: reader, Submitter: submitter, Session: &fakeSession{account: "SP2"}, Recorder: recorder})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}

	_, err := c.Claim(context.Background(), "hi")
	if !errors.Is(err, crown.ErrSubmissionRejected) {
		t.Fatalf("Claim error = %v, want ErrSubmissionRejected", err)
	}
	if c.Snapshot().Pending {
		t.Fatal("Pending = true after rejection")
	}
	if reader.callCount() != 1 {
		t.Fatalf("Fetch calls = %d, want no refresh after rejection", reader.callCount())
	}
	if len(recorder.claims) != 1 || recorder.claims[0].Status != crown.ClaimCancelled {
		t.Fatalf("recorded claims = %+v, want one cancelled", recorder.claims)
	}
}

func TestController_RecordsOnlyReignChanges(t *testing.T) {
	reader := newScriptedReader(
		fetchStep{state: reignOld},
		fetchStep{state: reignOld},
		fetchStep{state: reignNew},
	)
	recorder := &fakeRecorder{}
	c := New(Options{Reader: reader, Recorder: recorder})
	if err := c.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize returned error: %v", err)
	}
	c.Tick(context.Background())
	c.Tick(context.Background())

	if len(recorder.reigns) != 2 || recorder.reigns[0] != reignOld || recorder.reigns[1] != reignNew {
		t.Fatalf("recorded reigns = %+v, want [old new]", recorder.reigns)
	}
}
