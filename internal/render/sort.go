package render

import (
	"bytes"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// SortKey selects the column entries are ordered by.
type SortKey int

const (
	SortByName SortKey = iota
	SortByDate
	SortBySize
	SortByType
)

// ParseSortKey maps a config string to a SortKey, defaulting to name.
func ParseSortKey(s string) SortKey {
	switch s {
	case "date":
		return SortByDate
	case "size":
		return SortBySize
	case "type":
		return SortByType
	default:
		return SortByName
	}
}

// sortItem pairs an entry with its precomputed sort keys so the O(n log n)
// comparisons hit O(1) lookups instead of re-deriving keys each compare.
type sortItem struct {
	entry   provider.Entry
	nameKey []byte
	extKey  []byte
	mtime   int64
}

// Sorter stable-sorts entries directories-first using a locale-aware,
// numeric-aware collator for name and type keys.
type Sorter struct {
	collator *collate.Collator
}

// NewSorter builds a sorter collating names for the given BCP 47 locale.
// Numeric ordering makes "file2" sort before "file10".
func NewSorter(locale string) *Sorter {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}
	return &Sorter{
		collator: collate.New(tag, collate.Numeric, collate.IgnoreCase),
	}
}

// Sort returns a new slice ordered by key, directories before files,
// ascending unless asc is false. The input slice is not modified.
func (s *Sorter) Sort(entries []provider.Entry, key SortKey, asc bool) []provider.Entry {
	items := make([]sortItem, len(entries))
	var buf collate.Buffer
	for i, e := range entries {
		it := sortItem{entry: e, mtime: e.ModTime.UnixNano()}
		if key == SortByName || key == SortByType {
			it.nameKey = append([]byte(nil), s.collator.KeyFromString(&buf, e.Name)...)
			buf.Reset()
		}
		if key == SortByType {
			ext := strings.ToLower(filepath.Ext(e.Name))
			it.extKey = append([]byte(nil), s.collator.KeyFromString(&buf, ext)...)
			buf.Reset()
		}
		items[i] = it
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i], items[j]
		// Directories first, regardless of direction
		if a.entry.IsDir != b.entry.IsDir {
			return a.entry.IsDir
		}
		if !asc {
			a, b = b, a
		}
		return s.less(a, b, key)
	})

	out := make([]provider.Entry, len(items))
	for i, it := range items {
		out[i] = it.entry
	}
	return out
}

func (s *Sorter) less(a, b sortItem, key SortKey) bool {
	switch key {
	case SortByDate:
		if a.mtime != b.mtime {
			return a.mtime < b.mtime
		}
	case SortBySize:
		if a.entry.Size != b.entry.Size {
			return a.entry.Size < b.entry.Size
		}
	case SortByType:
		if c := bytes.Compare(a.extKey, b.extKey); c != 0 {
			return c < 0
		}
	}
	// Name order as primary key for SortByName and as tie-break elsewhere.
	if a.nameKey != nil || b.nameKey != nil {
		return bytes.Compare(a.nameKey, b.nameKey) < 0
	}
	return strings.ToLower(a.entry.Name) < strings.ToLower(b.entry.Name)
}
