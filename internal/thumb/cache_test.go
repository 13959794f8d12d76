package thumb

import (
	"fmt"
	"image"
	"testing"
)

func testImage(w int) image.Image {
	return image.NewRGBA(image.Rect(0, 0, w, w))
}

func TestCachePutGet(t *testing.T) {
	c := NewCache(10)
	img := testImage(4)
	c.Put("/a.png", img)

	got, ok := c.Get("/a.png")
	if !ok {
		t.Fatal("Get missed a stored entry")
	}
	if got != img {
		t.Error("Get returned a different image")
	}
	if _, ok := c.Get("/missing.png"); ok {
		t.Error("Get hit for a path never stored")
	}
}

func TestCacheBoundedByCapacity(t *testing.T) {
	c := NewCache(5)
	for i := 0; i < 20; i++ {
		c.Put(fmt.Sprintf("/f%02d.png", i), testImage(2))
	}
	if got := c.Len(); got != 5 {
		t.Errorf("Len = %d after 20 inserts into capacity 5, want 5", got)
	}
}

func TestCacheEvictsOldestInserted(t *testing.T) {
	c := NewCache(3)
	c.Put("/a.png", testImage(2))
	c.Put("/b.png", testImage(2))
	c.Put("/c.png", testImage(2))
	c.Put("/d.png", testImage(2))

	if _, ok := c.Get("/a.png"); ok {
		t.Error("oldest entry /a.png survived eviction")
	}
	for _, path := range []string{"/b.png", "/c.png", "/d.png"} {
		if _, ok := c.Get(path); !ok {
			t.Errorf("%s evicted, want kept", path)
		}
	}
}

func TestCacheReinsertRefreshesPosition(t *testing.T) {
	c := NewCache(3)
	c.Put("/a.png", testImage(2))
	c.Put("/b.png", testImage(2))
	c.Put("/c.png", testImage(2))

	// Re-insert /a.png: it moves to the back, so /b.png is now oldest.
	fresh := testImage(8)
	c.Put("/a.png", fresh)
	c.Put("/d.png", testImage(2))

	if _, ok := c.Get("/b.png"); ok {
		t.Error("/b.png survived, want evicted as oldest")
	}
	got, ok := c.Get("/a.png")
	if !ok {
		t.Fatal("/a.png evicted after refresh")
	}
	if got != fresh {
		t.Error("re-insert kept the stale image")
	}
	if c.Len() != 3 {
		t.Errorf("Len = %d, want 3", c.Len())
	}
}

func TestCacheClear(t *testing.T) {
	c := NewCache(3)
	c.Put("/a.png", testImage(2))
	c.Put("/b.png", testImage(2))
	c.Clear()
	if c.Len() != 0 {
		t.Errorf("Len = %d after Clear, want 0", c.Len())
	}
	if _, ok := c.Get("/a.png"); ok {
		t.Error("Get hit after Clear")
	}
}
