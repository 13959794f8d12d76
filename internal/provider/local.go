package provider

import (
	"context"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/charlievieth/fastwalk"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
)

// Local lists directories on the local filesystem using fastwalk.
// Listings larger than ChunkSize entries are streamed to the progress
// callback in arrival-order batches.
type Local struct {
	// ChunkSize is the number of entries accumulated before a progress
	// batch is emitted. Zero means no streaming (final result only).
	ChunkSize int

	mu  sync.Mutex
	ops map[string]context.CancelFunc
}

// NewLocal creates a local directory provider streaming in chunkSize batches.
func NewLocal(chunkSize int) *Local {
	return &Local{
		ChunkSize: chunkSize,
		ops:       make(map[string]context.CancelFunc),
	}
}

// List reads the direct children of path. If opts.OnProgress is set and the
// directory is large, batches are reported while the walk runs; the returned
// slice is always the complete, authoritative set.
func (l *Local) List(ctx context.Context, path string, opts ListOptions) ([]Entry, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if opts.OperationID != "" {
		l.mu.Lock()
		l.ops[opts.OperationID] = cancel
		l.mu.Unlock()
		defer func() {
			l.mu.Lock()
			delete(l.ops, opts.OperationID)
			l.mu.Unlock()
		}()
	}

	debug.Log(debug.PROVIDER, "List: path=%q op=%s hidden=%v", path, opts.OperationID, opts.ShowHidden)

	var (
		resultMu sync.Mutex
		result   []Entry
		pending  []Entry
		loaded   int
	)

	flushPending := func() {
		if opts.OnProgress == nil || len(pending) == 0 {
			return
		}
		batch := pending
		pending = nil
		loaded += len(batch)
		opts.OnProgress(Progress{
			OperationID: opts.OperationID,
			Path:        path,
			LoadedCount: loaded,
			Entries:     batch,
		})
	}

	conf := &fastwalk.Config{
		Follow: true, // Follow symlinks to get target info
	}

	pathLen := len(path)

	err := fastwalk.Walk(conf, path, func(fullPath string, d fs.DirEntry, err error) error {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err != nil {
			debug.Log(debug.PROVIDER, "List: walk error at %q: %v", fullPath, err)
			return nil // Skip errors, continue walking
		}

		// Skip the root directory itself
		if fullPath == path {
			return nil
		}

		// Only process direct children (depth 1).
		// fullPath starts with path, so check whether the remainder has
		// any separators instead of calling filepath.Rel.
		relStart := pathLen
		if relStart < len(fullPath) && (fullPath[relStart] == '/' || fullPath[relStart] == '\\') {
			relStart++
		}
		rel := fullPath[relStart:]
		if strings.ContainsAny(rel, "/\\") {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		hidden := strings.HasPrefix(d.Name(), ".")
		if hidden && !opts.ShowHidden {
			if d.IsDir() {
				return fastwalk.SkipDir
			}
			return nil
		}

		info, err := fastwalk.StatDirEntry(fullPath, d)
		if err != nil {
			// Fall back to lstat for broken symlinks
			info, err = os.Lstat(fullPath)
			if err != nil {
				debug.Log(debug.PROVIDER, "List: skipping %q: stat error: %v", d.Name(), err)
				return nil
			}
		}

		entry := Entry{
			Name:      d.Name(),
			Path:      fullPath,
			IsDir:     info.IsDir(),
			IsRegular: info.Mode().IsRegular(),
			Size:      info.Size(),
			ModTime:   info.ModTime(),
			Hidden:    hidden,
		}

		resultMu.Lock()
		result = append(result, entry)
		if opts.OnProgress != nil && l.ChunkSize > 0 {
			pending = append(pending, entry)
			if len(pending) >= l.ChunkSize {
				flushPending()
			}
		}
		resultMu.Unlock()

		// Single level only
		if d.IsDir() {
			return fastwalk.SkipDir
		}
		return nil
	})

	if ctx.Err() != nil {
		debug.Log(debug.PROVIDER, "List: cancelled op=%s", opts.OperationID)
		return nil, ErrCancelled
	}
	if err != nil {
		debug.Log(debug.PROVIDER, "List: walk error: %v", err)
		return nil, err
	}

	resultMu.Lock()
	flushPending()
	resultMu.Unlock()

	// fastwalk visits entries in an unspecified order when it parallelizes;
	// return a deterministic base order and let the view sort for display.
	sort.Slice(result, func(i, j int) bool { return result[i].Name < result[j].Name })

	debug.Log(debug.PROVIDER, "List: path=%q entries=%d", path, len(result))
	return result, nil
}

// Cancel stops the listing registered under operationID, if still running.
func (l *Local) Cancel(operationID string) error {
	l.mu.Lock()
	cancel, ok := l.ops[operationID]
	if ok {
		delete(l.ops, operationID)
	}
	l.mu.Unlock()

	if !ok {
		return ErrUnknownOperation
	}
	debug.Log(debug.PROVIDER, "Cancel: op=%s", operationID)
	cancel()
	return nil
}
