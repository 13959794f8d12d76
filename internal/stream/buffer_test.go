package stream

import (
	"fmt"
	"sync"
	"testing"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

type fakeRenderer struct {
	mu     sync.Mutex
	items  []provider.Entry
	clears int
}

func (f *fakeRenderer) AppendItems(entries []provider.Entry) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = append(f.items, entries...)
}

func (f *fakeRenderer) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.items = nil
	f.clears++
}

func (f *fakeRenderer) ShowEmptyState()       {}
func (f *fakeRenderer) SetHighlight(q string) {}

func (f *fakeRenderer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.items)
}

// stepScheduler queues flushes until the test steps them, so chunk arrival
// and paint opportunities can interleave deterministically.
type stepScheduler struct {
	mu    sync.Mutex
	queue []func()
}

func (s *stepScheduler) Schedule(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue = append(s.queue, fn)
}

func (s *stepScheduler) step() bool {
	s.mu.Lock()
	if len(s.queue) == 0 {
		s.mu.Unlock()
		return false
	}
	fn := s.queue[0]
	s.queue = s.queue[1:]
	s.mu.Unlock()
	fn()
	return true
}

func (s *stepScheduler) pendingFlushes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

func chunk(n, offset int) []provider.Entry {
	entries := make([]provider.Entry, n)
	for i := range entries {
		entries[i] = provider.Entry{Name: fmt.Sprintf("e%04d", offset+i)}
	}
	return entries
}

func TestChunksCoalesceIntoOneFlush(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	b.ResetStreamedState("op1")
	// Three bursts before any paint opportunity: exactly one flush
	// scheduled, draining everything in one slice.
	b.OnChunk("op1", chunk(10, 0))
	b.OnChunk("op1", chunk(10, 10))
	b.OnChunk("op1", chunk(10, 20))

	if got := sched.pendingFlushes(); got != 1 {
		t.Fatalf("%d flushes scheduled, want 1", got)
	}
	sched.step()
	if got := r.count(); got != 30 {
		t.Errorf("painted %d entries, want 30", got)
	}
	if b.AppendedCount() != 30 {
		t.Errorf("AppendedCount = %d, want 30", b.AppendedCount())
	}
}

func TestFirstFlushClearsPreviousOutput(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	// Leftover output from the previous view.
	r.AppendItems(chunk(5, 0))

	b.ResetStreamedState("op1")
	b.OnChunk("op1", chunk(3, 0))
	sched.step()

	if r.clears != 1 {
		t.Fatalf("ClearAll called %d times, want exactly 1", r.clears)
	}
	if got := r.count(); got != 3 {
		t.Errorf("painted %d entries, want only the streamed 3", got)
	}

	// Subsequent flushes of the same operation must not clear again.
	b.OnChunk("op1", chunk(2, 3))
	sched.step()
	if r.clears != 1 {
		t.Errorf("ClearAll called %d times after second flush, want 1", r.clears)
	}
	if got := r.count(); got != 5 {
		t.Errorf("painted %d entries, want 5", got)
	}
}

func TestLateChunkForSupersededOperationIsDropped(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	// op1 streams two chunks of 50.
	b.ResetStreamedState("op1")
	b.OnChunk("op1", chunk(50, 0))
	sched.step()
	b.OnChunk("op1", chunk(50, 50))
	sched.step()
	if got := b.AppendedCount(); got != 100 {
		t.Fatalf("op1 painted %d entries, want 100", got)
	}

	// op2 supersedes; a late chunk3 tagged op1 arrives.
	b.ResetStreamedState("op2")
	b.OnChunk("op1", chunk(50, 100))
	if sched.pendingFlushes() != 0 {
		t.Error("stale chunk scheduled a flush")
	}
	if b.DroppedChunks() != 1 {
		t.Errorf("DroppedChunks = %d, want 1", b.DroppedChunks())
	}
	if b.AppendedCount() != 0 {
		t.Errorf("AppendedCount = %d after reset, want 0", b.AppendedCount())
	}
}

func TestChunkWithNoRegisteredOperationIsDropped(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	b.OnChunk("op1", chunk(10, 0))
	if sched.pendingFlushes() != 0 || b.DroppedChunks() != 1 {
		t.Errorf("unregistered chunk not dropped: flushes=%d dropped=%d",
			sched.pendingFlushes(), b.DroppedChunks())
	}
}

func TestFlushReschedulesOnlyWhenMoreArrived(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	b.ResetStreamedState("op1")
	b.OnChunk("op1", chunk(5, 0))
	sched.step()
	if got := sched.pendingFlushes(); got != 0 {
		t.Fatalf("flush rescheduled with empty queue: %d pending", got)
	}

	// New arrivals after an idle flush schedule exactly one more.
	b.OnChunk("op1", chunk(5, 5))
	b.OnChunk("op1", chunk(5, 10))
	if got := sched.pendingFlushes(); got != 1 {
		t.Fatalf("%d flushes pending, want 1", got)
	}
	sched.step()
	if got := r.count(); got != 15 {
		t.Errorf("painted %d entries, want 15", got)
	}
}

func TestResetDiscardsPendingEntries(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	b.ResetStreamedState("op1")
	b.OnChunk("op1", chunk(10, 0))
	// Superseded before the flush ran: pending entries must not leak
	// into the new operation's output.
	b.ResetStreamedState("op2")
	sched.step()

	if got := r.count(); got != 0 {
		t.Errorf("painted %d stale entries, want 0", got)
	}
}

func TestStaleFlushDoesNotConsumeFirstFlushLatch(t *testing.T) {
	r := &fakeRenderer{}
	sched := &stepScheduler{}
	b := NewBuffer(r, sched)

	// Output from the previous view that op2's first flush must clear.
	r.AppendItems(chunk(5, 0))

	b.ResetStreamedState("op1")
	b.OnChunk("op1", chunk(10, 0))
	b.ResetStreamedState("op2")

	// The flush scheduled for op1 runs after the reset. It must paint
	// nothing and must not fire the clear that belongs to op2's first
	// real flush.
	sched.step()
	if r.clears != 0 {
		t.Fatalf("stale flush cleared the display %d times, want 0", r.clears)
	}

	b.OnChunk("op2", chunk(3, 0))
	sched.step()
	if r.clears != 1 {
		t.Errorf("ClearAll called %d times for op2's first flush, want 1", r.clears)
	}
	if got := r.count(); got != 3 {
		t.Errorf("painted %d entries, want only op2's 3", got)
	}
}
