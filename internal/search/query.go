// Package search filters directory listings with a small directive query
// language. Bare terms match entry names; prefixed directives match
// extension, size, modification time, or file contents.
package search

import (
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// Kind identifies what aspect of an entry a directive tests.
type Kind int

const (
	MatchName Kind = iota
	MatchContents
	MatchExt
	MatchSize
	MatchTime
)

// Op is the comparison for size and time directives.
type Op int

const (
	OpEquals Op = iota
	OpGreater
	OpLess
	OpGreaterEq
	OpLessEq
)

// Directive is one parsed query term. All directives of a query must match
// for an entry to be included.
type Directive struct {
	Kind  Kind
	Text  string
	Op    Op
	Bytes int64
	Time  time.Time
}

// Query is a parsed search input.
type Query struct {
	Raw        string
	Directives []Directive
}

// Parse splits input into directives. Terms are space-separated; quotes
// protect embedded spaces. Examples:
//
//	report            name contains "report"
//	ext:go            extension is .go
//	size:>1MB         larger than 1 MB
//	modified:>2026-01-01
//	contents:"error budget"
func Parse(input string) *Query {
	q := &Query{Raw: input}
	for _, term := range splitTerms(strings.TrimSpace(input)) {
		q.Directives = append(q.Directives, parseTerm(term))
	}
	return q
}

// IsEmpty reports whether the query has no directives.
func (q *Query) IsEmpty() bool { return len(q.Directives) == 0 }

// NeedsContents reports whether any directive reads file contents.
func (q *Query) NeedsContents() bool {
	for _, d := range q.Directives {
		if d.Kind == MatchContents {
			return true
		}
	}
	return false
}

// NameNeedle returns the first name term, for highlighting matches.
func (q *Query) NameNeedle() string {
	for _, d := range q.Directives {
		if d.Kind == MatchName {
			return d.Text
		}
	}
	return ""
}

func splitTerms(s string) []string {
	var (
		terms []string
		cur   strings.Builder
		quote rune
	)
	for _, r := range s {
		switch {
		case quote == 0 && (r == '"' || r == '\''):
			quote = r
		case r == quote:
			quote = 0
		case r == ' ' && quote == 0:
			if cur.Len() > 0 {
				terms = append(terms, cur.String())
				cur.Reset()
			}
		default:
			cur.WriteRune(r)
		}
	}
	if cur.Len() > 0 {
		terms = append(terms, cur.String())
	}
	return terms
}

func parseTerm(term string) Directive {
	idx := strings.Index(term, ":")
	if idx <= 0 {
		return Directive{Kind: MatchName, Text: term}
	}
	value := strings.Trim(term[idx+1:], `"'`)

	switch strings.ToLower(term[:idx]) {
	case "name", "filename", "file":
		return Directive{Kind: MatchName, Text: value}

	case "contents", "content", "text":
		return Directive{Kind: MatchContents, Text: value}

	case "ext", "extension":
		if !strings.HasPrefix(value, ".") {
			value = "." + value
		}
		return Directive{Kind: MatchExt, Text: strings.ToLower(value)}

	case "size":
		op, rest := parseOp(value)
		bytes, err := humanize.ParseBytes(rest)
		if err != nil {
			bytes = 0
		}
		return Directive{Kind: MatchSize, Text: value, Op: op, Bytes: int64(bytes)}

	case "modified", "mtime", "date":
		op, rest := parseOp(value)
		return Directive{Kind: MatchTime, Text: value, Op: op, Time: parseDate(rest)}
	}

	// Unknown prefixes are treated as literal name terms, colon included.
	return Directive{Kind: MatchName, Text: term}
}

func parseOp(s string) (Op, string) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasPrefix(s, ">="):
		return OpGreaterEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, "<="):
		return OpLessEq, strings.TrimSpace(s[2:])
	case strings.HasPrefix(s, ">"):
		return OpGreater, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "<"):
		return OpLess, strings.TrimSpace(s[1:])
	case strings.HasPrefix(s, "="):
		return OpEquals, strings.TrimSpace(s[1:])
	}
	return OpEquals, s
}

// parseDate accepts absolute dates and the relative keywords today,
// yesterday, week, month, year. Unparseable input yields the zero time,
// which matches everything.
func parseDate(s string) time.Time {
	s = strings.ToLower(strings.TrimSpace(s))
	now := time.Now()

	switch s {
	case "today":
		y, m, d := now.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "yesterday":
		y, m, d := now.AddDate(0, 0, -1).Date()
		return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	case "week":
		return now.AddDate(0, 0, -7)
	case "month":
		return now.AddDate(0, -1, 0)
	case "year":
		return now.AddDate(-1, 0, 0)
	}

	for _, layout := range []string{"2006-01-02", "2006-01", "2006/01/02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
