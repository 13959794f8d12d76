// Package app owns the view state and wires the request coordinator, stream
// buffer, render engine, thumbnail pipeline, and column manager into one
// controller.
package app

import (
	"sync"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
	"github.com/BurntToasters/IYERIS-sub000/internal/render"
)

// ViewState is the single explicit home for what used to be ambient view
// globals: current path, current entries, sort and visibility settings,
// navigation history. It is owned by the Controller and mutated only under
// its mutex.
type ViewState struct {
	mu sync.RWMutex

	currentPath string

	// rawEntries is the unfiltered authoritative snapshot for the current
	// view; sort/visibility toggles re-render from it without refetching.
	rawEntries []provider.Entry

	sortKey    render.SortKey
	sortAsc    bool
	showHidden bool

	// searchEntries is the visible set while a search result is shown;
	// rawEntries survives underneath so clearing the search restores the
	// listing without refetching.
	searchEntries  []provider.Entry
	isSearchResult bool
	searchQuery    string

	history      []string
	historyIndex int
}

// Snapshot is an immutable view of the state for hosts and tests.
type Snapshot struct {
	CurrentPath    string
	EntryCount     int
	SortKey        render.SortKey
	SortAscending  bool
	ShowHidden     bool
	IsSearchResult bool
	SearchQuery    string
	CanBack        bool
	CanForward     bool
}

func newViewState(sortKey render.SortKey, sortAsc, showHidden bool) *ViewState {
	return &ViewState{
		sortKey:      sortKey,
		sortAsc:      sortAsc,
		showHidden:   showHidden,
		historyIndex: -1,
	}
}

// snapshot returns a copy of the displayable state.
func (s *ViewState) snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	visible := s.rawEntries
	if s.isSearchResult {
		visible = s.searchEntries
	}
	return Snapshot{
		CurrentPath:    s.currentPath,
		EntryCount:     len(visible),
		SortKey:        s.sortKey,
		SortAscending:  s.sortAsc,
		ShowHidden:     s.showHidden,
		IsSearchResult: s.isSearchResult,
		SearchQuery:    s.searchQuery,
		CanBack:        s.historyIndex > 0,
		CanForward:     s.historyIndex < len(s.history)-1,
	}
}

// commitEntries replaces the authoritative snapshot for path. Entries from
// the superseded view are discarded wholesale, never merged.
func (s *ViewState) commitEntries(path string, entries []provider.Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPath = path
	s.rawEntries = entries
	s.searchEntries = nil
	s.isSearchResult = false
	s.searchQuery = ""
}

func (s *ViewState) commitSearch(entries []provider.Entry, query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchEntries = entries
	s.isSearchResult = true
	s.searchQuery = query
}

func (s *ViewState) clearSearch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchEntries = nil
	s.isSearchResult = false
	s.searchQuery = ""
}

func (s *ViewState) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentPath = ""
	s.rawEntries = nil
	s.searchEntries = nil
	s.isSearchResult = false
	s.searchQuery = ""
}

// renderOptions derives the engine options for the current settings.
func (s *ViewState) renderOptions() render.Options {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return render.Options{
		ShowHidden: s.showHidden,
		Sort:       s.sortKey,
		Ascending:  s.sortAsc,
		Highlight:  s.searchQuery,
	}
}

// entriesCopy returns a copy of the visible set for re-rendering: search
// matches while a search result is shown, the raw snapshot otherwise.
func (s *ViewState) entriesCopy() []provider.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	src := s.rawEntries
	if s.isSearchResult {
		src = s.searchEntries
	}
	out := make([]provider.Entry, len(src))
	copy(out, src)
	return out
}

// rawCopy returns a copy of the raw snapshot regardless of search mode.
func (s *ViewState) rawCopy() []provider.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]provider.Entry, len(s.rawEntries))
	copy(out, s.rawEntries)
	return out
}

func (s *ViewState) currentPathLocked() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentPath
}

// pushHistory records a navigation, truncating any forward entries.
func (s *ViewState) pushHistory(path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.historyIndex >= 0 && s.historyIndex < len(s.history)-1 {
		s.history = s.history[:s.historyIndex+1]
	}
	s.history = append(s.history, path)
	s.historyIndex = len(s.history) - 1
}

// stepHistory moves by delta and returns the target path, if any.
func (s *ViewState) stepHistory(delta int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx := s.historyIndex + delta
	if idx < 0 || idx >= len(s.history) {
		return "", false
	}
	s.historyIndex = idx
	return s.history[idx], true
}
