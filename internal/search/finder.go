package search

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// maxContentBytes bounds content matching; larger files never match a
// contents directive rather than stalling the filter on a huge read.
const maxContentBytes = 10 * 1024 * 1024

// Finder evaluates queries against listed entries. Content directives read
// through the media provider.
type Finder struct {
	media provider.Media
}

// NewFinder creates a finder reading file contents through media.
func NewFinder(media provider.Media) *Finder {
	return &Finder{media: media}
}

// Filter returns the entries matching every directive of q. An empty query
// matches everything.
func (f *Finder) Filter(entries []provider.Entry, q *Query) []provider.Entry {
	if q.IsEmpty() {
		out := make([]provider.Entry, len(entries))
		copy(out, entries)
		return out
	}

	var out []provider.Entry
	for _, e := range entries {
		if f.matches(e, q) {
			out = append(out, e)
		}
	}
	debug.Log(debug.APP, "search %q: %d of %d entries match", q.Raw, len(out), len(entries))
	return out
}

func (f *Finder) matches(e provider.Entry, q *Query) bool {
	for _, d := range q.Directives {
		if !f.matchDirective(e, d) {
			return false
		}
	}
	return true
}

func (f *Finder) matchDirective(e provider.Entry, d Directive) bool {
	switch d.Kind {
	case MatchName:
		return matchName(strings.ToLower(e.Name), strings.ToLower(d.Text))

	case MatchExt:
		return strings.ToLower(filepath.Ext(e.Name)) == d.Text

	case MatchSize:
		if e.IsDir {
			return false
		}
		return compareInt(e.Size, d.Bytes, d.Op)

	case MatchTime:
		if d.Time.IsZero() {
			return true
		}
		return compareTime(e.ModTime, d.Time, d.Op)

	case MatchContents:
		if !e.IsRegular || f.media == nil {
			return false
		}
		data, err := f.media.ReadFileBytes(e.Path, maxContentBytes)
		if err != nil {
			return false
		}
		return strings.Contains(strings.ToLower(string(data)), strings.ToLower(d.Text))
	}
	return true
}

// matchName does substring matching, or glob matching when the pattern
// carries * wildcards.
func matchName(name, pattern string) bool {
	if !strings.Contains(pattern, "*") {
		return strings.Contains(name, pattern)
	}

	parts := strings.Split(pattern, "*")
	if parts[0] != "" && !strings.HasPrefix(name, parts[0]) {
		return false
	}
	if last := parts[len(parts)-1]; last != "" && !strings.HasSuffix(name, last) {
		return false
	}
	pos := len(parts[0])
	for _, part := range parts[1 : len(parts)-1] {
		if part == "" {
			continue
		}
		idx := strings.Index(name[pos:], part)
		if idx < 0 {
			return false
		}
		pos += idx + len(part)
	}
	return true
}

func compareInt(val, target int64, op Op) bool {
	switch op {
	case OpGreater:
		return val > target
	case OpLess:
		return val < target
	case OpGreaterEq:
		return val >= target
	case OpLessEq:
		return val <= target
	}
	return val == target
}

func compareTime(val, target time.Time, op Op) bool {
	switch op {
	case OpGreater:
		return val.After(target)
	case OpLess:
		return val.Before(target)
	case OpGreaterEq:
		return !val.Before(target)
	case OpLessEq:
		return !val.After(target)
	}
	vy, vm, vd := val.Date()
	ty, tm, td := target.Date()
	return vy == ty && vm == tm && vd == td
}
