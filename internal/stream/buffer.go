// Package stream absorbs progressively-arriving directory entry batches and
// coalesces them into paint-aligned flushes, decoupling provider chattiness
// from display refresh rate.
package stream

import (
	"sync"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
	"github.com/BurntToasters/IYERIS-sub000/internal/render"
)

// Buffer accepts chunks tagged with an operation id and appends them to the
// renderer in whole-queue slices, at most one flush outstanding at a time.
// Chunks from operations other than the registered one are dropped: they
// belong to a cancelled request.
type Buffer struct {
	renderer render.Renderer
	sched    render.FrameScheduler

	mu             sync.Mutex
	opID           string
	pending        []provider.Entry
	flushScheduled bool
	firstFlushDone bool
	appended       int
	droppedChunks  int
}

// NewBuffer creates a buffer flushing to renderer on sched's paint cadence.
func NewBuffer(renderer render.Renderer, sched render.FrameScheduler) *Buffer {
	return &Buffer{renderer: renderer, sched: sched}
}

// ResetStreamedState registers opID as the streaming operation and rearms
// the first-chunk latch. The coordinator calls this at request start;
// pending entries from the previous operation are discarded.
func (b *Buffer) ResetStreamedState(opID string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	debug.Log(debug.STREAM, "ResetStreamedState: op=%s (was %s, %d pending dropped)",
		opID, b.opID, len(b.pending))
	b.opID = opID
	b.pending = nil
	b.firstFlushDone = false
	b.appended = 0
}

// OnChunk queues entries for the next flush if opID matches the registered
// streaming operation; otherwise the chunk is silently dropped.
func (b *Buffer) OnChunk(opID string, entries []provider.Entry) {
	b.mu.Lock()
	if opID == "" || opID != b.opID {
		b.droppedChunks++
		b.mu.Unlock()
		debug.Log(debug.STREAM_CHUNK, "OnChunk: dropping %d entries for stale op=%s", len(entries), opID)
		return
	}
	b.pending = append(b.pending, entries...)
	schedule := !b.flushScheduled
	if schedule {
		b.flushScheduled = true
	}
	b.mu.Unlock()

	debug.Log(debug.STREAM_CHUNK, "OnChunk: op=%s +%d entries", opID, len(entries))
	if schedule {
		b.sched.Schedule(b.flush)
	}
}

// flush drains the entire pending queue in one slice and appends it to the
// live output. The whole drain-and-paint runs under b.mu so a reset for the
// next operation cannot interleave between the drain and the append; a flush
// scheduled before a reset finds an empty queue and leaves the first-flush
// latch untouched.
func (b *Buffer) flush() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.flushScheduled = false
	if len(b.pending) == 0 {
		return
	}

	first := !b.firstFlushDone
	batch := b.pending
	b.pending = nil
	b.appended += len(batch)

	if first {
		// First chunk for this operation: clear the superseded output
		// exactly once before streaming begins.
		b.firstFlushDone = true
		b.renderer.ClearAll()
	}
	b.renderer.AppendItems(batch)
	debug.Log(debug.STREAM, "flush: appended %d entries (first=%v)", len(batch), first)
}

// AppendedCount reports how many entries have been painted for the current
// streaming operation.
func (b *Buffer) AppendedCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.appended
}

// DroppedChunks reports how many chunks were discarded as stale.
func (b *Buffer) DroppedChunks() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.droppedChunks
}
