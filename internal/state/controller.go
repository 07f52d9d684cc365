package state

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/five82/crown/internal/crown"
)

var tracer = otel.Tracer("github.com/five82/crown/internal/state")

// ErrClosed is returned by fetches attempted after Close.
var ErrClosed = errors.New("state: controller closed")

// Recorder receives reign changes and claim outcomes. Errors are logged and
// never affect the mirror.
type Recorder interface {
	RecordReign(ctx context.Context, st crown.State, observedAt time.Time) error
	RecordClaim(ctx context.Context, attempt crown.ClaimAttempt) error
}

// Options wires a Controller to its collaborators. Recorder may be nil.
type Options struct {
	Reader    crown.Fetcher
	Submitter crown.Claimer
	Session   crown.Session
	Recorder  Recorder
}

// Controller owns the local mirror of the crown and the pending-claim flag.
// Every fetch is numbered when it starts; a completion is applied only when
// its number is above the last applied one, so a slow fetch can never
// overwrite the result of a fetch that started after it.
type Controller struct {
	reader    crown.Fetcher
	submitter crown.Claimer
	session   crown.Session
	recorder  Recorder

	mu         sync.Mutex
	snapshot   Snapshot
	nextSeq    uint64
	appliedSeq uint64
	closed     bool
}

// New builds a Controller in PhaseUninitialized with an unknown mirror.
func New(opts Options) *Controller {
	return &Controller{
		reader:    opts.Reader,
		submitter: opts.Submitter,
		session:   opts.Session,
		recorder:  opts.Recorder,
	}
}

// Initialize performs the first fetch. On failure the mirror stays unknown
// and the regular poll cycle is the only recovery; the error is returned
// for callers that want to report it.
func (c *Controller) Initialize(ctx context.Context) error {
	c.mu.Lock()
	if c.snapshot.Phase == PhaseUninitialized {
		c.snapshot.Phase = PhaseLoading
	}
	c.mu.Unlock()
	_, err := c.refresh(ctx, "initialize")
	return err
}

// Tick is the poll callback. Failures are logged and leave the mirror as it was.
func (c *Controller) Tick(ctx context.Context) {
	_, _ = c.refresh(ctx, "tick")
}

// Claim submits message against the last known price. It is refused without
// any network call while another claim is pending, while the mirror is
// unknown, when the message is invalid, or when nobody is signed in. After
// an accepted submission the mirror is refreshed before Claim returns.
func (c *Controller) Claim(ctx context.Context, message string) (crown.SubmissionHandle, error) {
	c.mu.Lock()
	if c.snapshot.Pending {
		c.mu.Unlock()
		return crown.SubmissionHandle{}, crown.ErrClaimInFlight
	}
	if !c.snapshot.Known {
		c.mu.Unlock()
		return crown.SubmissionHandle{}, crown.ErrStateUnknown
	}
	msg, err := crown.ValidateMessage(message)
	if err != nil {
		c.mu.Unlock()
		return crown.SubmissionHandle{}, err
	}
	if c.session == nil || !c.session.IsSignedIn() {
		c.mu.Unlock()
		return crown.SubmissionHandle{}, crown.ErrNotAuthenticated
	}
	req := crown.ClaimRequest{
		Message: msg,
		Payer:   c.session.CurrentAccount(),
		Price:   c.snapshot.Mirror.Price,
	}
	c.snapshot.Pending = true
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "state.Claim")
	defer span.End()
	span.SetAttributes(attribute.Int64("crown.price", int64(req.Price)))

	handle, err := c.submitter.Submit(ctx, req)

	c.mu.Lock()
	c.snapshot.Pending = false
	c.mu.Unlock()

	c.recordClaim(ctx, req, handle, err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		log.Printf("claim rejected: %v", err)
		return crown.SubmissionHandle{}, err
	}
	log.Printf("claim broadcast: txid=%s price=%d", handle.TxID, req.Price)

	// Best effort: the transaction is usually not confirmed yet, in which
	// case this shows the old reign until a later tick.
	_, _ = c.refresh(ctx, "post-claim")
	return handle, nil
}

// Snapshot returns a copy of the current view state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot
}

// Close marks the controller torn down. Fetches completing afterwards are
// discarded and no new fetches start.
func (c *Controller) Close() {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
}

func (c *Controller) refresh(ctx context.Context, reason string) (crown.State, error) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return crown.State{}, ErrClosed
	}
	c.nextSeq++
	seq := c.nextSeq
	c.mu.Unlock()

	ctx, span := tracer.Start(ctx, "state.Refresh")
	defer span.End()
	span.SetAttributes(
		attribute.String("crown.refresh_reason", reason),
		attribute.Int64("crown.seq", int64(seq)),
	)

	st, err := c.reader.Fetch(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		c.applyFailure(seq, reason, err)
		return crown.State{}, err
	}

	applied, changed, at := c.applySuccess(seq, st)
	span.SetAttributes(attribute.Bool("crown.applied", applied))
	if changed && c.recorder != nil {
		if err := c.recorder.RecordReign(ctx, st, at); err != nil {
			log.Printf("journal: record reign: %v", err)
		}
	}
	return st, nil
}

func (c *Controller) applySuccess(seq uint64, st crown.State) (applied, changed bool, at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq <= c.appliedSeq {
		return false, false, time.Time{}
	}
	c.appliedSeq = seq
	changed = !c.snapshot.Known || !c.snapshot.Mirror.Equal(st)

	at = time.Now()
	c.snapshot.Phase = PhaseReady
	c.snapshot.Mirror = st
	c.snapshot.Known = true
	c.snapshot.LastError = nil
	c.snapshot.LastUpdated = at
	c.snapshot.ConsecutiveFailures = 0
	return true, changed, at
}

func (c *Controller) applyFailure(seq uint64, reason string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq <= c.appliedSeq {
		return
	}
	c.snapshot.LastError = err
	c.snapshot.ConsecutiveFailures++
	log.Printf("crown refresh (%s) failed (%d in a row): %v", reason, c.snapshot.ConsecutiveFailures, err)
}

func (c *Controller) recordClaim(ctx context.Context, req crown.ClaimRequest, handle crown.SubmissionHandle, err error) {
	if c.recorder == nil {
		return
	}
	attempt := crown.ClaimAttempt{
		Message: req.Message,
		Payer:   req.Payer,
		Price:   req.Price,
		At:      time.Now(),
	}
	switch {
	case err == nil:
		attempt.Status = crown.ClaimAccepted
		attempt.TxID = handle.TxID
	case crown.IsCancelled(err):
		attempt.Status = crown.ClaimCancelled
		attempt.Error = err.Error()
	default:
		attempt.Status = crown.ClaimRejected
		attempt.Error = err.Error()
	}
	if rerr := c.recorder.RecordClaim(ctx, attempt); rerr != nil {
		log.Printf("journal: record claim: %v", rerr)
	}
}
