//go:build debug

// Package debug provides a centralized, categorized debug logging system.
// Build with -tags debug to enable logging.
package debug

import (
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
)

// Enabled indicates whether debug logging is active
const Enabled = true

// Category represents a debug logging category
type Category string

const (
	// Core categories
	APP      Category = "APP"      // Controller orchestration, navigation, view state
	NAV      Category = "NAV"      // Request coordination, ids, cancellation
	STREAM   Category = "STREAM"   // Progressive chunk ingestion and flushes
	RENDER   Category = "RENDER"   // Sort, batching, virtualization
	THUMB    Category = "THUMB"    // Thumbnail pipeline and cache
	COLUMN   Category = "COLUMN"   // Column view pane management
	PROVIDER Category = "PROVIDER" // Directory/media provider operations
	WATCH    Category = "WATCH"    // Filesystem change watching

	// Detailed subcategories (use sparingly - can be verbose)
	STREAM_CHUNK Category = "STREAM_CHUNK" // Per-chunk accounting (very verbose)
	RENDER_BATCH Category = "RENDER_BATCH" // Per-batch paint decisions
	THUMB_TASK   Category = "THUMB_TASK"   // Individual thumbnail task lifecycle
)

var (
	// enabledCategories controls which categories are active
	// By default, all main categories are enabled
	enabledCategories = map[Category]bool{
		APP:      true,
		NAV:      true,
		STREAM:   true,
		RENDER:   true,
		THUMB:    true,
		COLUMN:   true,
		PROVIDER: true,
		WATCH:    true,
		// Verbose categories disabled by default
		STREAM_CHUNK: false,
		RENDER_BATCH: false,
		THUMB_TASK:   false,
	}
	categoryMu sync.RWMutex

	// Output destination
	logger = log.New(os.Stderr, "", log.Ltime|log.Lmicroseconds)
)

func init() {
	// Check environment variable for category overrides
	// Format: IYERIS_DEBUG=NAV,STREAM,RENDER or IYERIS_DEBUG=all or IYERIS_DEBUG=none
	if env := os.Getenv("IYERIS_DEBUG"); env != "" {
		categoryMu.Lock()
		defer categoryMu.Unlock()

		env = strings.ToUpper(env)
		switch env {
		case "ALL":
			for cat := range enabledCategories {
				enabledCategories[cat] = true
			}
		case "NONE":
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
		default:
			// Disable all first, then enable specified
			for cat := range enabledCategories {
				enabledCategories[cat] = false
			}
			for _, cat := range strings.Split(env, ",") {
				cat = strings.TrimSpace(cat)
				enabledCategories[Category(cat)] = true
			}
		}
	}
}

// Log logs a debug message for the specified category
func Log(cat Category, format string, args ...interface{}) {
	categoryMu.RLock()
	enabled := enabledCategories[cat]
	categoryMu.RUnlock()

	if !enabled {
		return
	}

	msg := fmt.Sprintf(format, args...)
	logger.Printf("[%s] %s", cat, msg)
}

// Enable enables a debug category
func Enable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = true
	categoryMu.Unlock()
}

// Disable disables a debug category
func Disable(cat Category) {
	categoryMu.Lock()
	enabledCategories[cat] = false
	categoryMu.Unlock()
}

// IsEnabled returns whether a category is enabled
func IsEnabled(cat Category) bool {
	categoryMu.RLock()
	defer categoryMu.RUnlock()
	return enabledCategories[cat]
}

// EnableAll enables all debug categories including verbose ones
func EnableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = true
	}
	categoryMu.Unlock()
}

// DisableAll disables all debug categories
func DisableAll() {
	categoryMu.Lock()
	for cat := range enabledCategories {
		enabledCategories[cat] = false
	}
	categoryMu.Unlock()
}
