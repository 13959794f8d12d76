// Package nav coordinates directory requests: it mints request and operation
// identifiers, tracks which request is current, and cancels superseded work.
package nav

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
)

// Canceller is the slice of the directory provider the coordinator needs:
// best-effort cancellation of an in-flight operation by id.
type Canceller interface {
	Cancel(operationID string) error
}

// Request identifies one navigation request. Requests are superseded, never
// mutated; exactly one is current at any time.
type Request struct {
	ID          int64
	OperationID string
	Path        string
	StartedAt   time.Time
}

// Coordinator mints monotonically increasing request ids with a fresh
// operation id each, and answers the one question every asynchronous
// continuation must ask before touching shared state: am I still current?
type Coordinator struct {
	canceller Canceller

	mu      sync.Mutex
	nextID  int64
	current *Request

	// onReset, when set, is invoked with the new operation id at request
	// start so the stream buffer can reset its first-chunk latch.
	onReset func(operationID string)
}

// New creates a coordinator. canceller may be nil (no cancellation signals
// are sent; currency checks still protect all state).
func New(canceller Canceller) *Coordinator {
	return &Coordinator{canceller: canceller}
}

// OnRequestStart registers a callback run for each new request with its
// operation id, before StartRequest returns.
func (c *Coordinator) OnRequestStart(fn func(operationID string)) {
	c.mu.Lock()
	c.onReset = fn
	c.mu.Unlock()
}

// StartRequest supersedes any in-flight request and mints a new id pair.
// The previous operation, if any, is sent for cancellation fire-and-forget:
// the signal is advisory and its failure is swallowed, because correctness
// comes from IsCurrent checks at every consumption point.
func (c *Coordinator) StartRequest(path string) Request {
	c.mu.Lock()

	var stale *Request
	if c.current != nil {
		stale = c.current
	}

	c.nextID++
	req := Request{
		ID:          c.nextID,
		OperationID: uuid.NewString(),
		Path:        path,
		StartedAt:   time.Now(),
	}
	c.current = &req
	reset := c.onReset
	c.mu.Unlock()

	if stale != nil && c.canceller != nil {
		op := stale.OperationID
		go func() {
			if err := c.canceller.Cancel(op); err != nil {
				// Operation may have already completed; that is fine.
				debug.Log(debug.NAV, "cancel op=%s: %v", op, err)
			}
		}()
	}

	if reset != nil {
		reset(req.OperationID)
	}

	debug.Log(debug.NAV, "StartRequest: id=%d op=%s path=%q", req.ID, req.OperationID, path)
	return req
}

// IsCurrent reports whether requestID is still the current request. Every
// asynchronous continuation calls this before mutating shared view state; a
// stale continuation must log and return without visible effect.
func (c *Coordinator) IsCurrent(requestID int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current != nil && c.current.ID == requestID
}

// Current returns the current request, if any.
func (c *Coordinator) Current() (Request, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return Request{}, false
	}
	return *c.current, true
}

// FinishRequest clears bookkeeping for requestID if it is still current.
// A completion arriving after being superseded is a no-op so it cannot
// clobber the newer request's bookkeeping.
func (c *Coordinator) FinishRequest(requestID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil || c.current.ID != requestID {
		debug.Log(debug.NAV, "FinishRequest: id=%d is stale, ignoring", requestID)
		return
	}
	debug.Log(debug.NAV, "FinishRequest: id=%d", requestID)
	c.current = nil
}
