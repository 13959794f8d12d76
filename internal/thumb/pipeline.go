package thumb

import (
	"bytes"
	"context"
	"image"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/BurntToasters/IYERIS-sub000/internal/debug"
	"github.com/BurntToasters/IYERIS-sub000/internal/provider"
	"github.com/BurntToasters/IYERIS-sub000/internal/render"
)

// Kind classifies what kind of media a task generates a thumbnail for.
type Kind int

const (
	KindImage Kind = iota
	KindVideo
)

// Task is one pending thumbnail generation.
type Task struct {
	Path string
	Kind Kind
}

// KindForPath infers the media kind from the file extension. The bool is
// false for files no thumbnail can be generated for.
func KindForPath(path string) (Kind, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg", ".png", ".gif":
		return KindImage, true
	case ".mp4", ".mkv", ".avi", ".webm", ".mov":
		return KindVideo, true
	}
	return 0, false
}

// Config carries the pipeline's tunables.
type Config struct {
	Concurrency         int
	CacheCapacity       int
	MaxPixels           int
	MaxImageBytes       int64
	VideoCaptureTimeout time.Duration
}

// Pipeline runs thumbnail generation with at most Concurrency tasks in
// flight; excess submissions wait in a FIFO queue. Tasks are submitted when
// an observed item first intersects the viewport. Failure never propagates:
// the item degrades to a static icon.
type Pipeline struct {
	media   provider.Media
	tracker render.VisibilityTracker
	cache   *Cache
	cfg     Config
	sem     *semaphore.Weighted

	mu       sync.Mutex
	queue    []Task // FIFO overflow beyond the concurrency budget
	observed map[string]bool
	inFlight int

	// onReady and onFallback deliver outcomes to the host; both optional.
	onReady    func(path string, img image.Image)
	onFallback func(path string)
}

// NewPipeline creates a pipeline reading content through media and tracking
// viewport visibility through tracker.
func NewPipeline(media provider.Media, tracker render.VisibilityTracker, cfg Config) *Pipeline {
	return &Pipeline{
		media:    media,
		tracker:  tracker,
		cache:    NewCache(cfg.CacheCapacity),
		cfg:      cfg,
		sem:      semaphore.NewWeighted(int64(cfg.Concurrency)),
		observed: make(map[string]bool),
	}
}

// OnReady registers the success callback.
func (p *Pipeline) OnReady(fn func(path string, img image.Image)) { p.onReady = fn }

// OnFallback registers the degraded-to-icon callback.
func (p *Pipeline) OnFallback(fn func(path string)) { p.onFallback = fn }

// Cache exposes the result cache for synchronous reads.
func (p *Pipeline) Cache() *Cache { return p.cache }

// Observe registers a painted item for visibility tracking. On first
// intersection with the viewport it is unobserved and submitted. Items with
// a cached representation or an unsupported extension are delivered or
// skipped immediately.
func (p *Pipeline) Observe(path string) {
	kind, ok := KindForPath(path)
	if !ok {
		return
	}
	if img, ok := p.cache.Get(path); ok {
		if p.onReady != nil {
			p.onReady(path, img)
		}
		return
	}

	p.mu.Lock()
	if p.observed[path] {
		p.mu.Unlock()
		return
	}
	p.observed[path] = true
	p.mu.Unlock()

	p.tracker.Observe(path, func() {
		p.tracker.Unobserve(path)
		p.mu.Lock()
		delete(p.observed, path)
		p.mu.Unlock()
		p.Submit(Task{Path: path, Kind: kind})
	})
}

// Unobserve detaches an item that left the view before becoming visible.
func (p *Pipeline) Unobserve(path string) {
	p.mu.Lock()
	tracked := p.observed[path]
	delete(p.observed, path)
	p.mu.Unlock()
	if tracked {
		p.tracker.Unobserve(path)
	}
}

// Submit executes the task now if a concurrency slot is free, otherwise
// enqueues it FIFO. No task is ever rejected for being queued.
func (p *Pipeline) Submit(task Task) {
	p.mu.Lock()
	if !p.sem.TryAcquire(1) {
		p.queue = append(p.queue, task)
		debug.Log(debug.THUMB_TASK, "queued %s (%d waiting)", task.Path, len(p.queue))
		p.mu.Unlock()
		return
	}
	p.inFlight++
	p.mu.Unlock()
	go p.run(task)
}

// InFlight reports how many tasks are currently executing.
func (p *Pipeline) InFlight() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.inFlight
}

// QueueLen reports how many tasks are waiting for a slot.
func (p *Pipeline) QueueLen() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// run executes one task, then hands its slot to the next queued task.
func (p *Pipeline) run(task Task) {
	img, err := p.generate(task)

	if err != nil {
		// Enhancement layer: degrade to an icon, stay silent otherwise.
		debug.Log(debug.THUMB, "generate %s failed: %v", task.Path, err)
		if p.onFallback != nil {
			p.onFallback(task.Path)
		}
	} else {
		p.cache.Put(task.Path, img)
		if p.onReady != nil {
			p.onReady(task.Path, img)
		}
	}

	// Completion hands the slot to the next queued task, if any.
	p.mu.Lock()
	p.inFlight--
	var next Task
	var have bool
	if len(p.queue) > 0 {
		next, p.queue = p.queue[0], p.queue[1:]
		p.inFlight++
		have = true
	} else {
		p.sem.Release(1)
	}
	p.mu.Unlock()

	if have {
		go p.run(next)
	}
}

// generate produces the scaled representation for one task.
func (p *Pipeline) generate(task Task) (image.Image, error) {
	var src image.Image

	switch task.Kind {
	case KindVideo:
		ctx, cancel := context.WithTimeout(context.Background(), p.cfg.VideoCaptureTimeout)
		defer cancel()
		frame, err := p.media.CaptureVideoFrame(ctx, task.Path)
		if err != nil {
			return nil, err
		}
		src = frame
	default:
		data, err := p.media.ReadFileBytes(task.Path, p.cfg.MaxImageBytes)
		if err != nil {
			// Oversized files fall back to an icon without attempting
			// generation, same as any other failure.
			return nil, err
		}
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		src = img
	}

	return letterbox(src, p.cfg.MaxPixels)
}
