package render

import (
	"fmt"
	"sync"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// Options configures one render session.
type Options struct {
	ShowHidden bool
	Sort       SortKey
	Ascending  bool
	// Highlight is the query substring to emphasize in names, for search
	// result sessions. Empty for plain directory sessions.
	Highlight string
}

// Session is one render pass over an authoritative entry list. Its token is
// the invalidation key: any asynchronous continuation must recheck that the
// token is still current before touching the renderer.
type Session struct {
	Token       int64
	Items       []provider.Entry // filtered and sorted
	Cursor      int              // count of items already painted
	Virtualized bool
}

// Engine owns the current render session and decides, by cardinality,
// whether to paint eagerly in frame-aligned batches or lazily through a
// viewport sentinel.
type Engine struct {
	renderer Renderer
	tracker  VisibilityTracker
	sched    FrameScheduler
	sorter   *Sorter

	batchSize          int
	virtualizeAt       int
	hugeWarnAt         int
	onWarning          func(count int)
	onSessionComplete  func(token int64)

	mu      sync.Mutex
	token   int64 // strictly increasing across the engine's lifetime
	session *Session

	// paintMu serializes renderer mutations. Every clear or append
	// re-checks session currency while holding it, so a continuation
	// preempted before painting cannot touch the output of a session
	// that superseded it. Always acquired before mu, never under it.
	paintMu sync.Mutex
}

// Config carries the engine's tunables.
type Config struct {
	BatchSize            int
	VirtualizeThreshold  int
	HugeDirectoryWarning int
	Locale               string
}

// NewEngine creates a render engine painting through renderer, revealing
// virtualized batches via tracker, and scheduling eager batches on sched.
func NewEngine(renderer Renderer, tracker VisibilityTracker, sched FrameScheduler, cfg Config) *Engine {
	return &Engine{
		renderer:     renderer,
		tracker:      tracker,
		sched:        sched,
		sorter:       NewSorter(cfg.Locale),
		batchSize:    cfg.BatchSize,
		virtualizeAt: cfg.VirtualizeThreshold,
		hugeWarnAt:   cfg.HugeDirectoryWarning,
	}
}

// OnWarning registers a non-blocking callback raised for very large
// directories. It does not alter the render path.
func (e *Engine) OnWarning(fn func(count int)) { e.onWarning = fn }

// OnSessionComplete registers a callback fired with the session token once
// every item of that session has been painted.
func (e *Engine) OnSessionComplete(fn func(token int64)) { e.onSessionComplete = fn }

// CurrentToken returns the token of the live session, or the last issued
// token if no session is live.
func (e *Engine) CurrentToken() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.token
}

// Render starts a new session over entries, superseding any session in
// flight, and returns its token. Filtering and sorting run synchronously;
// painting is spread over scheduled batches.
func (e *Engine) Render(entries []provider.Entry, opts Options) int64 {
	filtered := entries
	if !opts.ShowHidden {
		filtered = make([]provider.Entry, 0, len(entries))
		for _, en := range entries {
			if !en.Hidden {
				filtered = append(filtered, en)
			}
		}
	}
	sorted := e.sorter.Sort(filtered, opts.Sort, opts.Ascending)

	e.mu.Lock()
	if e.session != nil {
		e.tracker.Unobserve(sentinelHandle(e.session.Token))
	}
	e.token++
	token := e.token
	session := &Session{
		Token:       token,
		Items:       sorted,
		Virtualized: len(sorted) >= e.virtualizeAt,
	}
	e.session = session
	e.mu.Unlock()

	if e.hugeWarnAt > 0 && len(sorted) >= e.hugeWarnAt && e.onWarning != nil {
		e.onWarning(len(sorted))
	}

	e.paintMu.Lock()
	if e.stale(token) {
		// Another Render ran between minting the token and reaching the
		// clear; its output is authoritative and must not be wiped.
		e.paintMu.Unlock()
		debug.Log(debug.RENDER, "Render: token=%d superseded before first paint", token)
		return token
	}
	e.renderer.ClearAll()
	e.renderer.SetHighlight(opts.Highlight)

	if len(sorted) == 0 {
		debug.Log(debug.RENDER, "Render: token=%d empty after filter", token)
		e.renderer.ShowEmptyState()
		e.paintMu.Unlock()
		e.complete(token)
		return token
	}
	e.paintMu.Unlock()

	debug.Log(debug.RENDER, "Render: token=%d items=%d virtualized=%v",
		token, len(sorted), session.Virtualized)

	if session.Virtualized {
		// Paint only the first batch now; the rest reveal as the
		// sentinel scrolls into view.
		e.paintBatch(token)
	} else {
		e.sched.Schedule(func() { e.eagerStep(token) })
	}
	return token
}

// Reset invalidates the live session, detaches the sentinel, and clears the
// output surface. Used when navigating to the synthetic home view.
func (e *Engine) Reset() {
	e.mu.Lock()
	if e.session != nil {
		e.tracker.Unobserve(sentinelHandle(e.session.Token))
		e.session = nil
	}
	e.token++
	e.mu.Unlock()
	e.paintMu.Lock()
	e.renderer.ClearAll()
	e.paintMu.Unlock()
}

// Snapshot returns a copy of the live session state, for callers that need
// cursor or virtualization info (and for tests).
func (e *Engine) Snapshot() (Session, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.session == nil {
		return Session{}, false
	}
	return *e.session, true
}

// eagerStep paints one batch and schedules the next, keeping the host
// responsive during bulk creation of small-to-medium listings.
func (e *Engine) eagerStep(token int64) {
	if !e.paintBatch(token) {
		return
	}
	e.mu.Lock()
	more := e.session != nil && e.session.Token == token && e.session.Cursor < len(e.session.Items)
	e.mu.Unlock()
	if more {
		e.sched.Schedule(func() { e.eagerStep(token) })
	}
}

// paintBatch appends the next batch for token. It returns false when the
// session was superseded mid-paint, in which case nothing was painted.
// The currency check and the append run under paintMu as one step.
func (e *Engine) paintBatch(token int64) bool {
	e.paintMu.Lock()
	e.mu.Lock()
	s := e.session
	if s == nil || s.Token != token {
		e.mu.Unlock()
		e.paintMu.Unlock()
		debug.Log(debug.RENDER_BATCH, "paintBatch: token=%d stale, stopping", token)
		return false
	}
	start := s.Cursor
	end := start + e.batchSize
	if end > len(s.Items) {
		end = len(s.Items)
	}
	batch := s.Items[start:end]
	s.Cursor = end
	done := end == len(s.Items)
	virtualized := s.Virtualized
	e.mu.Unlock()

	if len(batch) > 0 {
		e.renderer.AppendItems(batch)
	}
	e.paintMu.Unlock()
	debug.Log(debug.RENDER_BATCH, "paintBatch: token=%d painted %d..%d", token, start, end)

	if done {
		e.complete(token)
		return true
	}
	if virtualized {
		// Re-observe the sentinel for the next reveal.
		e.tracker.Observe(sentinelHandle(token), func() { e.sentinelVisible(token) })
	}
	return true
}

// sentinelVisible is the viewport continuation: reveal one more batch if the
// session is still current.
func (e *Engine) sentinelVisible(token int64) {
	if e.stale(token) {
		debug.Log(debug.RENDER, "sentinelVisible: token=%d stale, ignoring", token)
		return
	}
	e.paintBatch(token)
}

// stale reports whether token no longer identifies the live session.
func (e *Engine) stale(token int64) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.session == nil || e.session.Token != token
}

func (e *Engine) complete(token int64) {
	debug.Log(debug.RENDER, "session complete: token=%d", token)
	if e.onSessionComplete != nil {
		e.onSessionComplete(token)
	}
}

func sentinelHandle(token int64) string {
	return fmt.Sprintf("sentinel/%d", token)
}
