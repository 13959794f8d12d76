package main

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
)

// termRenderer writes directory rows to a terminal. It implements
// render.Renderer; virtualization and streaming both paint through it.
type termRenderer struct {
	out   io.Writer
	width int

	mu        sync.Mutex
	rows      int
	highlight string
}

func newTermRenderer(out io.Writer, fd int) *termRenderer {
	width := 80
	if w, _, err := term.GetSize(fd); err == nil && w > 0 {
		width = w
	}
	return &termRenderer{out: out, width: width}
}

func (r *termRenderer) AppendItems(entries []provider.Entry) {
	r.mu.Lock()
	defer r.mu.Unlock()

	nameWidth := r.width - 32
	if nameWidth < 16 {
		nameWidth = 16
	}

	for _, e := range entries {
		name := e.Name
		if e.IsDir {
			name += "/"
		}
		if r.highlight != "" {
			name = emphasize(name, r.highlight)
		}
		name = truncateName(name, nameWidth)

		size := "-"
		if !e.IsDir {
			size = humanize.IBytes(uint64(e.Size))
		}
		fmt.Fprintf(r.out, "%-*s %10s  %s\n", nameWidth, name, size, e.ModTime.Format("2006-01-02 15:04"))
		r.rows++
	}
}

func (r *termRenderer) ClearAll() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.rows > 0 {
		fmt.Fprintln(r.out)
	}
	r.rows = 0
}

func (r *termRenderer) ShowEmptyState() {
	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(r.out, "(empty directory)")
}

func (r *termRenderer) SetHighlight(query string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.highlight = query
}

// emphasize upper-cases the first occurrence of query in name; a terminal
// stand-in for search-result highlighting.
func emphasize(name, query string) string {
	idx := strings.Index(strings.ToLower(name), strings.ToLower(query))
	if idx < 0 {
		return name
	}
	return name[:idx] + strings.ToUpper(name[idx:idx+len(query)]) + name[idx+len(query):]
}

// truncateName caps name at width columns, cutting on rune boundaries so
// multi-byte names never produce invalid UTF-8.
func truncateName(name string, width int) string {
	runes := []rune(name)
	if len(runes) <= width {
		return name
	}
	return string(runes[:width-1]) + "…"
}
