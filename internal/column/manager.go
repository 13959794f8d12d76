// Package column manages the Miller-column view: one independently
// navigable pane per path segment, fetched concurrently and committed only
// when still current.
package column

import (
	"context"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// Pane is one visible directory level, indexed left to right. Panes right
// of a newly expanded pane are destroyed and their operations cancelled.
type Pane struct {
	Index       int
	Path        string
	OperationID string
	Active      bool
	Entries     []provider.Entry
	Err         error
}

// Manager coordinates concurrent pane fetches for the column view. A
// generation counter serializes overlapping invocations: a render that
// finishes after being superseded observes the newer generation and exits
// without committing.
type Manager struct {
	dir        provider.Directory
	root       string
	showHidden bool

	mu         sync.Mutex
	generation int64
	panes      []Pane
	// activeOps tracks in-flight pane fetches by operation id, mapped to
	// the pane index being fetched. An entry is removed as soon as its
	// fetch returns, so cancellation only ever targets live operations.
	activeOps map[string]int

	onCommit func(panes []Pane)
}

// NewManager creates a column manager rooted at root.
func NewManager(dir provider.Directory, root string, showHidden bool) *Manager {
	if root == "" {
		root = string(filepath.Separator)
	}
	return &Manager{dir: dir, root: root, showHidden: showHidden, activeOps: make(map[string]int)}
}

// OnCommit registers the callback receiving the committed pane set.
func (m *Manager) OnCommit(fn func(panes []Pane)) { m.onCommit = fn }

// Panes returns a copy of the committed pane set.
func (m *Manager) Panes() []Pane {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Pane, len(m.panes))
	copy(out, m.panes)
	return out
}

// Render rebuilds the full pane chain for path: every outstanding pane
// fetch is cancelled, the segment chain from root to path is computed, and
// all panes are fetched concurrently. The result is committed only if no
// newer render or expansion has started meanwhile.
func (m *Manager) Render(ctx context.Context, path string) error {
	m.mu.Lock()
	m.generation++
	gen := m.generation
	m.cancelOpsLocked()

	chain := m.segmentChain(path)
	panes := make([]Pane, len(chain))
	for i, p := range chain {
		panes[i] = Pane{
			Index:       i,
			Path:        p,
			OperationID: uuid.NewString(),
			Active:      i == len(chain)-1,
		}
		m.activeOps[panes[i].OperationID] = i
	}
	m.mu.Unlock()

	debug.Log(debug.COLUMN, "Render: path=%q panes=%d gen=%d", path, len(panes), gen)

	// Fetch all panes concurrently; per-pane errors are recorded, not
	// fatal, so one unreadable level does not blank the whole view.
	g, gctx := errgroup.WithContext(ctx)
	for i := range panes {
		i := i
		g.Go(func() error {
			p := &panes[i]
			entries, err := m.dir.List(gctx, p.Path, provider.ListOptions{
				OperationID: p.OperationID,
				ShowHidden:  m.showHidden,
			})
			m.opDone(p.OperationID)
			if err != nil {
				if !provider.IsCancelled(err) {
					p.Err = err
				}
				return nil
			}
			p.Entries = entries
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		debug.Log(debug.COLUMN, "Render: gen=%d superseded by %d, not committing", gen, m.generation)
		return nil
	}
	m.panes = panes
	m.commitLocked()
	return nil
}

// ExpandAt handles a click on a directory inside pane i: panes right of i
// are destroyed and their operations cancelled, and exactly one new pane
// for path is fetched and appended. An O(1) incremental operation compared
// to a full Render.
func (m *Manager) ExpandAt(ctx context.Context, i int, path string) error {
	m.mu.Lock()
	if i < 0 || i >= len(m.panes) {
		m.mu.Unlock()
		debug.Log(debug.COLUMN, "ExpandAt: pane %d out of range", i)
		return nil
	}
	m.generation++
	gen := m.generation

	// Cancel only in-flight fetches for panes being destroyed.
	for op, idx := range m.activeOps {
		if idx > i {
			delete(m.activeOps, op)
			op := op
			go func() { _ = m.dir.Cancel(op) }()
		}
	}
	m.panes = m.panes[:i+1]
	for j := range m.panes {
		m.panes[j].Active = false
	}

	pane := Pane{
		Index:       i + 1,
		Path:        path,
		OperationID: uuid.NewString(),
		Active:      true,
	}
	m.activeOps[pane.OperationID] = pane.Index
	m.mu.Unlock()

	debug.Log(debug.COLUMN, "ExpandAt: pane=%d path=%q gen=%d", i+1, path, gen)

	entries, err := m.dir.List(ctx, path, provider.ListOptions{
		OperationID: pane.OperationID,
		ShowHidden:  m.showHidden,
	})
	m.opDone(pane.OperationID)
	if err != nil && !provider.IsCancelled(err) {
		pane.Err = err
	} else {
		pane.Entries = entries
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.generation != gen {
		debug.Log(debug.COLUMN, "ExpandAt: gen=%d superseded by %d, not committing", gen, m.generation)
		return nil
	}
	m.panes = append(m.panes, pane)
	m.commitLocked()
	return nil
}

// cancelOpsLocked fires best-effort cancellation for every in-flight
// operation. Caller holds the lock.
func (m *Manager) cancelOpsLocked() {
	for op := range m.activeOps {
		op := op
		go func() { _ = m.dir.Cancel(op) }()
	}
	m.activeOps = make(map[string]int)
}

// opDone removes a finished fetch from the in-flight set.
func (m *Manager) opDone(op string) {
	m.mu.Lock()
	delete(m.activeOps, op)
	m.mu.Unlock()
}

func (m *Manager) commitLocked() {
	if m.onCommit == nil {
		return
	}
	out := make([]Pane, len(m.panes))
	copy(out, m.panes)
	m.onCommit(out)
}

// segmentChain computes pane paths from the root to path, plus the active
// directory itself (whose children fill the rightmost pane).
func (m *Manager) segmentChain(path string) []string {
	path = filepath.Clean(path)
	root := filepath.Clean(m.root)

	rel, err := filepath.Rel(root, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		// Outside the root: show just the target directory.
		return []string{path}
	}

	chain := []string{root}
	if rel == "." {
		return chain
	}
	cur := root
	for _, seg := range strings.Split(rel, string(filepath.Separator)) {
		cur = filepath.Join(cur, seg)
		chain = append(chain, cur)
	}
	return chain
}
