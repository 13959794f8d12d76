// Package provider defines the directory and media collaborator boundaries
// consumed by the view core, plus local filesystem implementations.
package provider

import (
	"context"
	"errors"
	"image"
	"time"
)

// Entry is an immutable snapshot of one directory entry as reported by a
// provider. Entries from a superseded listing are discarded wholesale,
// never merged into a newer one.
type Entry struct {
	Name      string
	Path      string
	IsDir     bool
	IsRegular bool
	Size      int64
	ModTime   time.Time
	Hidden    bool
}

// Progress is an out-of-band batch of entries reported while a listing is
// still in flight. Consumers match OperationID against the operation they
// are tracking and drop batches from superseded operations.
type Progress struct {
	OperationID string
	Path        string
	LoadedCount int
	Entries     []Entry
}

// ListOptions carries the per-listing parameters.
type ListOptions struct {
	OperationID string
	ShowHidden  bool
	// OnProgress, when non-nil, may be invoked zero or more times before
	// List returns. Calls happen on the listing goroutine.
	OnProgress func(Progress)
}

// Directory lists directory contents. Implementations may stream partial
// results through ListOptions.OnProgress before returning the final,
// authoritative set.
type Directory interface {
	List(ctx context.Context, path string, opts ListOptions) ([]Entry, error)
	// Cancel requests best-effort cancellation of an in-flight operation.
	// It may fail or arrive too late; callers must not rely on it stopping
	// progress callbacks.
	Cancel(operationID string) error
}

// Media supplies raw content for thumbnail generation.
type Media interface {
	// ReadFileBytes reads a file, refusing files larger than maxBytes.
	ReadFileBytes(path string, maxBytes int64) ([]byte, error)
	// CaptureVideoFrame decodes one representative frame from a video file.
	CaptureVideoFrame(ctx context.Context, path string) (image.Image, error)
}

var (
	// ErrCancelled marks an operation stopped by explicit cancellation.
	// It is an expected outcome, not a failure.
	ErrCancelled = errors.New("provider: operation cancelled")

	// ErrTooLarge is returned by ReadFileBytes for files over the limit.
	ErrTooLarge = errors.New("provider: file exceeds size limit")

	// ErrUnknownOperation is returned by Cancel for an id that is not
	// (or no longer) in flight.
	ErrUnknownOperation = errors.New("provider: unknown operation id")
)

// IsCancelled reports whether err represents cancellation, either the
// provider's own sentinel or a context cancellation it wrapped.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrCancelled) || errors.Is(err, context.Canceled)
}
