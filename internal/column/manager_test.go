package column

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// fakeDirectory serves canned listings, optionally blocking selected paths
// until the test releases them.
type fakeDirectory struct {
	mu       sync.Mutex
	listings map[string][]provider.Entry
	errs     map[string]error
	blocked  map[string]chan struct{}
	ops      map[string]string // path -> last operation id

	started   chan string
	cancelled chan string
}

func newFakeDirectory() *fakeDirectory {
	return &fakeDirectory{
		listings:  make(map[string][]provider.Entry),
		errs:      make(map[string]error),
		blocked:   make(map[string]chan struct{}),
		ops:       make(map[string]string),
		started:   make(chan string, 32),
		cancelled: make(chan string, 32),
	}
}

func (d *fakeDirectory) List(ctx context.Context, path string, opts provider.ListOptions) ([]provider.Entry, error) {
	d.mu.Lock()
	gate := d.blocked[path]
	err := d.errs[path]
	entries := d.listings[path]
	d.ops[path] = opts.OperationID
	d.mu.Unlock()

	d.started <- path
	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (d *fakeDirectory) Cancel(opID string) error {
	d.cancelled <- opID
	return nil
}

func (d *fakeDirectory) waitCancelled(t *testing.T, n int) map[string]bool {
	t.Helper()
	got := make(map[string]bool, n)
	for len(got) < n {
		select {
		case op := <-d.cancelled:
			got[op] = true
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d cancellations", len(got), n)
		}
	}
	return got
}

func (d *fakeDirectory) opFor(path string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.ops[path]
}

// noMoreCancels fails the test if any further cancellation arrives.
func (d *fakeDirectory) noMoreCancels(t *testing.T) {
	t.Helper()
	select {
	case op := <-d.cancelled:
		t.Fatalf("unexpected cancellation of operation %s", op)
	case <-time.After(100 * time.Millisecond):
	}
}

// inFlight reports how many pane fetches the manager is tracking.
func (m *Manager) inFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.activeOps)
}

func waitInFlight(t *testing.T, m *Manager, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for m.inFlight() != want {
		if time.Now().After(deadline) {
			t.Fatalf("in-flight operations never reached %d (have %d)", want, m.inFlight())
		}
		time.Sleep(time.Millisecond)
	}
}

func entries(names ...string) []provider.Entry {
	out := make([]provider.Entry, len(names))
	for i, name := range names {
		out[i] = provider.Entry{Name: name, IsDir: true}
	}
	return out
}

func panePaths(panes []Pane) []string {
	out := make([]string, len(panes))
	for i, p := range panes {
		out[i] = p.Path
	}
	return out
}

func TestRenderBuildsPaneChain(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs", "pics")
	dir.listings["/home/user/docs"] = entries("drafts")

	m := NewManager(dir, "/home", false)
	var committed []Pane
	m.OnCommit(func(panes []Pane) { committed = panes })

	if err := m.Render(context.Background(), "/home/user/docs"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	want := []string{"/home", "/home/user", "/home/user/docs"}
	got := panePaths(committed)
	if len(got) != len(want) {
		t.Fatalf("pane paths %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pane paths %v, want %v", got, want)
		}
	}
	for i, p := range committed {
		wantActive := i == len(committed)-1
		if p.Active != wantActive {
			t.Errorf("pane %d Active = %v, want %v", i, p.Active, wantActive)
		}
		if p.Index != i {
			t.Errorf("pane %d Index = %d", i, p.Index)
		}
	}
	if got := len(committed[1].Entries); got != 2 {
		t.Errorf("pane /home/user has %d entries, want 2", got)
	}
}

func TestRenderOutsideRootShowsSinglePane(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/tmp"] = entries("scratch")

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/tmp"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	panes := m.Panes()
	if len(panes) != 1 || panes[0].Path != "/tmp" {
		t.Errorf("panes = %v, want single /tmp pane", panePaths(panes))
	}
}

func TestRenderRecordsPerPaneError(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.errs["/home/user"] = errors.New("permission denied")

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("Render returned %v, want per-pane error only", err)
	}
	panes := m.Panes()
	if len(panes) != 2 {
		t.Fatalf("%d panes, want 2", len(panes))
	}
	if panes[0].Err != nil {
		t.Errorf("pane /home Err = %v, want nil", panes[0].Err)
	}
	if panes[1].Err == nil {
		t.Error("pane /home/user Err = nil, want recorded error")
	}
}

func TestSupersededRenderIsNotCommitted(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	dir.listings["/home/user/docs"] = entries("drafts")
	gate := make(chan struct{})
	dir.blocked["/home/user/docs"] = gate

	m := NewManager(dir, "/home", false)
	commits := make(chan []Pane, 4)
	m.OnCommit(func(panes []Pane) { commits <- panes })

	first := make(chan error, 1)
	go func() { first <- m.Render(context.Background(), "/home/user/docs") }()

	// Wait until the first render is held inside the blocked fetch.
	deadline := time.After(2 * time.Second)
	held := false
	for !held {
		select {
		case path := <-dir.started:
			held = path == "/home/user/docs"
		case <-deadline:
			t.Fatal("first render never reached the blocked fetch")
		}
	}

	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("second Render: %v", err)
	}
	committed := <-commits

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first Render: %v", err)
	}
	select {
	case panes := <-commits:
		t.Fatalf("superseded render committed %v", panePaths(panes))
	case <-time.After(100 * time.Millisecond):
	}

	got := panePaths(m.Panes())
	want := panePaths(committed)
	if len(got) != 2 || got[len(got)-1] != "/home/user" {
		t.Errorf("final panes %v, want %v", got, want)
	}
}

func TestRenderCancelsOnlyInFlightOperations(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	gate := make(chan struct{})
	dir.blocked["/home/user"] = gate

	m := NewManager(dir, "/home", false)
	first := make(chan error, 1)
	go func() { first <- m.Render(context.Background(), "/home/user") }()

	// Both fetches start; /home completes and drops out of tracking,
	// leaving only the blocked /home/user fetch in flight.
	for i := 0; i < 2; i++ {
		select {
		case <-dir.started:
		case <-time.After(2 * time.Second):
			t.Fatal("pane fetches never started")
		}
	}
	waitInFlight(t, m, 1)

	if err := m.Render(context.Background(), "/home"); err != nil {
		t.Fatalf("second Render: %v", err)
	}
	cancelled := dir.waitCancelled(t, 1)
	if !cancelled[dir.opFor("/home/user")] {
		t.Error("in-flight /home/user fetch not cancelled")
	}
	// The finished /home fetch must not be re-cancelled.
	dir.noMoreCancels(t)

	close(gate)
	if err := <-first; err != nil {
		t.Fatalf("first Render: %v", err)
	}
}

func TestCompletedFetchesLeaveNoTrackedOperations(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	dir.listings["/home/user/docs"] = entries("drafts")

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := m.ExpandAt(context.Background(), 1, "/home/user/docs"); err != nil {
		t.Fatalf("ExpandAt: %v", err)
	}
	if got := m.inFlight(); got != 0 {
		t.Fatalf("%d operations still tracked after completion, want 0", got)
	}

	// With nothing in flight, a fresh render has nothing to cancel.
	if err := m.Render(context.Background(), "/home"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	dir.noMoreCancels(t)
}

func TestExpandAtAppendsPane(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	dir.listings["/home/user/docs"] = entries("drafts")

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := m.ExpandAt(context.Background(), 1, "/home/user/docs"); err != nil {
		t.Fatalf("ExpandAt: %v", err)
	}

	panes := m.Panes()
	want := []string{"/home", "/home/user", "/home/user/docs"}
	got := panePaths(panes)
	if len(got) != len(want) {
		t.Fatalf("pane paths %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("pane paths %v, want %v", got, want)
		}
	}
	for i, p := range panes {
		wantActive := i == len(panes)-1
		if p.Active != wantActive {
			t.Errorf("pane %d Active = %v, want %v", i, p.Active, wantActive)
		}
	}
}

func TestExpandAtCancelsOnlyRightPanes(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	dir.listings["/home/user/docs"] = entries("drafts")
	dir.listings["/home/other"] = entries("misc")
	gate := make(chan struct{})
	dir.blocked["/home/user/docs"] = gate

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	// Hold an expansion to the right in flight.
	expand := make(chan error, 1)
	go func() { expand <- m.ExpandAt(context.Background(), 1, "/home/user/docs") }()
	deadline := time.After(2 * time.Second)
	for held := false; !held; {
		select {
		case path := <-dir.started:
			held = path == "/home/user/docs"
		case <-deadline:
			t.Fatal("expansion never reached the blocked fetch")
		}
	}

	if err := m.ExpandAt(context.Background(), 0, "/home/other"); err != nil {
		t.Fatalf("ExpandAt: %v", err)
	}
	cancelled := dir.waitCancelled(t, 1)
	if !cancelled[dir.opFor("/home/user/docs")] {
		t.Error("in-flight fetch right of the expansion not cancelled")
	}
	// Surviving and already-finished panes keep their operations.
	dir.noMoreCancels(t)

	close(gate)
	if err := <-expand; err != nil {
		t.Fatalf("first ExpandAt: %v", err)
	}

	got := panePaths(m.Panes())
	if len(got) != 2 || got[1] != "/home/other" {
		t.Errorf("panes = %v, want [/home /home/other]", got)
	}
}

func TestExpandAtSupersededByRender(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")
	dir.listings["/home/user"] = entries("docs")
	dir.listings["/home/user/docs"] = entries("drafts")
	gate := make(chan struct{})
	dir.blocked["/home/user/docs"] = gate

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home/user"); err != nil {
		t.Fatalf("Render: %v", err)
	}

	expand := make(chan error, 1)
	go func() { expand <- m.ExpandAt(context.Background(), 1, "/home/user/docs") }()
	deadline := time.After(2 * time.Second)
	for held := false; !held; {
		select {
		case path := <-dir.started:
			held = path == "/home/user/docs"
		case <-deadline:
			t.Fatal("expansion never reached the blocked fetch")
		}
	}

	if err := m.Render(context.Background(), "/home"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	close(gate)
	if err := <-expand; err != nil {
		t.Fatalf("ExpandAt: %v", err)
	}

	got := panePaths(m.Panes())
	if len(got) != 1 || got[0] != "/home" {
		t.Errorf("panes = %v, want [/home]", got)
	}
}

func TestExpandAtOutOfRange(t *testing.T) {
	dir := newFakeDirectory()
	dir.listings["/home"] = entries("user")

	m := NewManager(dir, "/home", false)
	if err := m.Render(context.Background(), "/home"); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if err := m.ExpandAt(context.Background(), 5, "/home/user"); err != nil {
		t.Fatalf("ExpandAt: %v", err)
	}
	if got := panePaths(m.Panes()); len(got) != 1 {
		t.Errorf("panes = %v, want unchanged single pane", got)
	}
}

func TestSegmentChain(t *testing.T) {
	m := NewManager(newFakeDirectory(), "/home", false)
	tests := []struct {
		path string
		want []string
	}{
		{"/home", []string{"/home"}},
		{"/home/user", []string{"/home", "/home/user"}},
		{"/home/user/docs/", []string{"/home", "/home/user", "/home/user/docs"}},
		{"/etc", []string{"/etc"}},
	}
	for _, tt := range tests {
		got := m.segmentChain(tt.path)
		if len(got) != len(tt.want) {
			t.Errorf("segmentChain(%q) = %v, want %v", tt.path, got, tt.want)
			continue
		}
		for i := range tt.want {
			if got[i] != tt.want[i] {
				t.Errorf("segmentChain(%q) = %v, want %v", tt.path, got, tt.want)
				break
			}
		}
	}
}
