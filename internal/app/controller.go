package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/BurntToasters/IYERIS-sub000/internal/column"
	"github.com/BurntToasters/IYERIS-sub000/internal/config"
	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/nav"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
	"github.com/BurntToasters/IYERIS-sub000/internal/render"
	"github.com/BurntToasters/IYERIS-sub000/internal/search"
	"github.com/BurntToasters/IYERIS-sub000/internal/stream"
	"github.com/BurntToasters/IYERIS-sub000/internal/thumb"
)

// Controller coordinates one file-browser view. It owns the ViewState and is
// the only component that mutates it; every asynchronous continuation passes
// through a currency check before its result becomes visible.
type Controller struct {
	cfg config.Config

	dir     provider.Directory
	coord   *nav.Coordinator
	buffer  *stream.Buffer
	engine  *render.Engine
	thumbs  *thumb.Pipeline
	columns *column.Manager
	finder  *search.Finder

	state *ViewState

	// commitMu serializes request starts and listing commits. A stale
	// completion that passed its currency check before a newer request
	// existed would otherwise commit and paint over the newer result;
	// holding one lock across check, commit, and render removes the
	// window.
	commitMu sync.Mutex

	ctx    context.Context
	cancel context.CancelFunc

	// onError receives provider failures for the primary content request.
	// Enhancement failures (thumbnails) never arrive here.
	onError func(path string, err error)
	// onLoaded fires after a listing commits, with its render token.
	onLoaded func(path string, token int64)
}

// Deps bundles the host-supplied collaborators.
type Deps struct {
	Directory provider.Directory
	Media     provider.Media
	Renderer  render.Renderer
	Tracker   render.VisibilityTracker
	Scheduler render.FrameScheduler
}

// NewController wires the full pipeline from config and host collaborators.
func NewController(cfg config.Config, deps Deps) *Controller {
	ctx, cancel := context.WithCancel(context.Background())

	coord := nav.New(deps.Directory)
	buffer := stream.NewBuffer(deps.Renderer, deps.Scheduler)
	coord.OnRequestStart(buffer.ResetStreamedState)

	engine := render.NewEngine(deps.Renderer, deps.Tracker, deps.Scheduler, render.Config{
		BatchSize:            cfg.View.BatchSize,
		VirtualizeThreshold:  cfg.View.VirtualizeThreshold,
		HugeDirectoryWarning: cfg.View.HugeDirectoryWarning,
		Locale:               cfg.View.Locale,
	})

	thumbs := thumb.NewPipeline(deps.Media, deps.Tracker, thumb.Config{
		Concurrency:         cfg.Thumbnail.Concurrency,
		CacheCapacity:       cfg.Thumbnail.CacheCapacity,
		MaxPixels:           cfg.Thumbnail.MaxPixels,
		MaxImageBytes:       cfg.Thumbnail.MaxImageBytes,
		VideoCaptureTimeout: cfg.Thumbnail.VideoCaptureTimeout.Std(),
	})

	columns := column.NewManager(deps.Directory, "", cfg.View.ShowHidden)

	return &Controller{
		cfg:     cfg,
		dir:     deps.Directory,
		coord:   coord,
		buffer:  buffer,
		engine:  engine,
		thumbs:  thumbs,
		columns: columns,
		finder:  search.NewFinder(deps.Media),
		state:   newViewState(render.ParseSortKey(cfg.View.DefaultSort), cfg.View.SortAscending, cfg.View.ShowHidden),
		ctx:     ctx,
		cancel:  cancel,
	}
}

// OnError registers the primary-request failure callback.
func (c *Controller) OnError(fn func(path string, err error)) { c.onError = fn }

// OnLoaded registers the listing-committed callback.
func (c *Controller) OnLoaded(fn func(path string, token int64)) { c.onLoaded = fn }

// OnWarning registers the huge-directory performance notice callback.
func (c *Controller) OnWarning(fn func(count int)) { c.engine.OnWarning(fn) }

// Engine exposes the render engine (for hosts managing viewport reveals).
func (c *Controller) Engine() *render.Engine { return c.engine }

// Thumbnails exposes the thumbnail pipeline.
func (c *Controller) Thumbnails() *thumb.Pipeline { return c.thumbs }

// Columns exposes the column view manager.
func (c *Controller) Columns() *column.Manager { return c.columns }

// Snapshot returns the current view state.
func (c *Controller) Snapshot() Snapshot { return c.state.snapshot() }

// Close cancels all background work.
func (c *Controller) Close() { c.cancel() }

// Navigate records path in history and requests its listing. Any request in
// flight is superseded.
func (c *Controller) Navigate(path string) {
	c.state.pushHistory(path)
	c.requestDir(path)
}

// Back navigates to the previous history entry, if any.
func (c *Controller) Back() {
	if path, ok := c.state.stepHistory(-1); ok {
		c.requestDir(path)
	}
}

// Forward navigates to the next history entry, if any.
func (c *Controller) Forward() {
	if path, ok := c.state.stepHistory(1); ok {
		c.requestDir(path)
	}
}

// Refresh re-requests the current directory without touching history. The
// watcher uses this when the directory changes underneath the view.
func (c *Controller) Refresh() {
	if path := c.state.currentPathLocked(); path != "" {
		c.requestDir(path)
	}
}

// requestDir starts a coordinated listing for path. Progress chunks stream
// through the ingestion buffer; the final result renders only if the
// request is still current when it lands.
func (c *Controller) requestDir(path string) {
	// Starting a request supersedes older ones; taking commitMu here
	// orders the start against any commit in progress.
	c.commitMu.Lock()
	req := c.coord.StartRequest(path)
	showHidden := c.state.snapshot().ShowHidden
	c.commitMu.Unlock()

	go func() {
		entries, err := c.dir.List(c.ctx, path, provider.ListOptions{
			OperationID: req.OperationID,
			ShowHidden:  showHidden,
			OnProgress: func(p provider.Progress) {
				c.buffer.OnChunk(p.OperationID, p.Entries)
			},
		})
		c.handleListResult(req, path, entries, err)
	}()
}

// handleListResult is the single consumption point for listing completions.
// The currency check and the commit it guards run under commitMu as one
// step, so a newer request cannot start or commit between them.
func (c *Controller) handleListResult(req nav.Request, path string, entries []provider.Entry, err error) {
	c.commitMu.Lock()
	defer c.commitMu.Unlock()

	if !c.coord.IsCurrent(req.ID) {
		// Stale result: completed correctly but after being superseded.
		// Not an error; discard without visible mutation.
		debug.Log(debug.APP, "listing for %q (req %d) is stale, discarding %d entries",
			path, req.ID, len(entries))
		return
	}

	if err != nil {
		c.coord.FinishRequest(req.ID)
		if provider.IsCancelled(err) {
			// Expected outcome of supersession; never reported as failure.
			debug.Log(debug.APP, "listing for %q cancelled", path)
			return
		}
		debug.Log(debug.APP, "listing for %q failed: %v", path, err)
		if c.onError != nil {
			c.onError(path, fmt.Errorf("list %s: %w", path, err))
		}
		return
	}

	c.state.commitEntries(path, entries)
	c.coord.FinishRequest(req.ID)

	token := c.engine.Render(entries, c.state.renderOptions())
	debug.Log(debug.APP, "committed %q: %d entries, token=%d", path, len(entries), token)
	if c.onLoaded != nil {
		c.onLoaded(path, token)
	}
}

// Search filters the retained snapshot with a directive query and renders
// the matches as a search result. The underlying snapshot is kept, so
// clearing the query restores the full listing without refetching.
func (c *Controller) Search(query string) int64 {
	q := search.Parse(query)
	if q.IsEmpty() {
		return c.ClearSearch()
	}
	matches := c.finder.Filter(c.state.rawCopy(), q)
	return c.RenderFiles(matches, q.NameNeedle())
}

// ClearSearch leaves search-result mode and re-renders the full listing.
func (c *Controller) ClearSearch() int64 {
	c.state.clearSearch()
	entries := c.state.entriesCopy()
	return c.engine.Render(entries, c.state.renderOptions())
}

// RenderFiles renders an externally supplied entry set (search results),
// highlighting highlightQuery in names. It supersedes the current session
// but does not touch navigation history.
func (c *Controller) RenderFiles(entries []provider.Entry, highlightQuery string) int64 {
	c.state.commitSearch(entries, highlightQuery)
	return c.engine.Render(entries, c.state.renderOptions())
}

// ResetVirtualizedRender invalidates the live render session and clears the
// output, e.g. when navigating to the synthetic home view.
func (c *Controller) ResetVirtualizedRender() {
	c.engine.Reset()
}

// ShowHome destroys the render session and clears the view state.
func (c *Controller) ShowHome() {
	if cur, ok := c.coord.Current(); ok {
		c.coord.FinishRequest(cur.ID)
	}
	c.state.clear()
	c.engine.Reset()
}

// ObserveThumbnailItem registers a painted item for viewport-driven
// thumbnail generation.
func (c *Controller) ObserveThumbnailItem(path string) {
	c.thumbs.Observe(path)
}

// RenderColumnView rebuilds the column view for the current path.
func (c *Controller) RenderColumnView() error {
	path := c.state.currentPathLocked()
	if path == "" {
		return nil
	}
	return c.columns.Render(c.ctx, path)
}

// SetSort changes the sort settings and re-renders from the retained
// snapshot without refetching.
func (c *Controller) SetSort(key render.SortKey, ascending bool) {
	c.state.mu.Lock()
	c.state.sortKey = key
	c.state.sortAsc = ascending
	c.state.mu.Unlock()
	c.rerender()
}

// SetShowHidden toggles hidden-entry visibility and re-renders. The raw
// snapshot keeps hidden entries, so no refetch is needed to reveal them
// only when the provider was asked for them in the first place.
func (c *Controller) SetShowHidden(show bool) {
	c.state.mu.Lock()
	changed := c.state.showHidden != show
	c.state.showHidden = show
	c.state.mu.Unlock()
	if !changed {
		return
	}
	// A provider listing fetched with hidden entries excluded cannot
	// reveal them from the snapshot; refetch in that direction.
	if show {
		c.Refresh()
		return
	}
	c.rerender()
}

func (c *Controller) rerender() {
	entries := c.state.entriesCopy()
	c.engine.Render(entries, c.state.renderOptions())
}
