// Package render turns an authoritative entry list into paint operations
// against a host-agnostic renderer, switching between eager frame-batched
// painting and viewport-driven virtualization by list size.
package render

import (
	"sync"
	"time"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// Renderer is the host output surface. The streaming and virtualization
// logic depends only on this interface, so the same core drives a GUI, a
// terminal UI, or a headless test harness.
type Renderer interface {
	// AppendItems adds entries to the end of the live output.
	AppendItems(entries []provider.Entry)
	// ClearAll removes all rendered output.
	ClearAll()
	// ShowEmptyState displays an explicit empty indicator instead of a
	// blank surface.
	ShowEmptyState()
	// SetHighlight installs the substring to emphasize in rendered names
	// (search results). Empty clears it.
	SetHighlight(query string)
}

// VisibilityTracker abstracts viewport intersection. A handle's callback
// fires once when the handle becomes visible; observers re-observe to be
// notified again. In non-GUI contexts an always-visible stub suffices.
type VisibilityTracker interface {
	Observe(handle string, onVisible func())
	Unobserve(handle string)
}

// FrameScheduler runs callbacks at the host's next paint opportunity. It
// bounds paint work to the display refresh rate regardless of how bursty
// the producers are.
type FrameScheduler interface {
	Schedule(fn func())
}

// AlwaysVisible is a VisibilityTracker whose handles are visible the moment
// they are observed. Callbacks fire synchronously inside Observe.
type AlwaysVisible struct{}

func (AlwaysVisible) Observe(handle string, onVisible func()) { onVisible() }
func (AlwaysVisible) Unobserve(handle string)                 {}

// SyncScheduler runs scheduled callbacks immediately. Test and terminal
// hosts use it; a GUI host supplies its own frame-aligned scheduler.
type SyncScheduler struct{}

func (SyncScheduler) Schedule(fn func()) { fn() }

// IntervalScheduler coalesces scheduled callbacks and runs them on a fixed
// tick, approximating an animation-frame loop for hosts without one.
type IntervalScheduler struct {
	mu      sync.Mutex
	queue   []func()
	stop    chan struct{}
	stopped bool
}

// NewIntervalScheduler starts a scheduler ticking at the given interval.
func NewIntervalScheduler(interval time.Duration) *IntervalScheduler {
	s := &IntervalScheduler{stop: make(chan struct{})}
	go s.run(interval)
	return s
}

func (s *IntervalScheduler) run(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-s.stop:
			return
		case <-ticker.C:
			s.mu.Lock()
			batch := s.queue
			s.queue = nil
			s.mu.Unlock()
			for _, fn := range batch {
				fn()
			}
		}
	}
}

// Schedule queues fn for the next tick. After Stop, calls are dropped.
func (s *IntervalScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return
	}
	s.queue = append(s.queue, fn)
}

// Stop halts the tick loop. Queued callbacks that have not run are dropped.
func (s *IntervalScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		s.stopped = true
		close(s.stop)
	}
}
