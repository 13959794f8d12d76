package thumb

import (
	"image"
	"image/color"
	"testing"
)

func TestLetterboxExtremeAspectRatios(t *testing.T) {
	tests := []struct {
		name string
		w, h int
	}{
		{"very wide", 1000, 1},
		{"very tall", 1, 1000},
		{"square", 64, 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Solid white source, so scaled pixels are distinguishable
			// from the black canvas.
			src := image.NewRGBA(image.Rect(0, 0, tt.w, tt.h))
			for y := 0; y < tt.h; y++ {
				for x := 0; x < tt.w; x++ {
					src.Set(x, y, color.White)
				}
			}

			out, err := letterbox(src, 32)
			if err != nil {
				t.Fatalf("letterbox: %v", err)
			}
			b := out.Bounds()
			if b.Dx() != 32 || b.Dy() != 32 {
				t.Fatalf("bounds %v, want 32x32", b)
			}

			lit := 0
			for y := b.Min.Y; y < b.Max.Y; y++ {
				for x := b.Min.X; x < b.Max.X; x++ {
					r, g, bl, _ := out.At(x, y).RGBA()
					if r > 0 || g > 0 || bl > 0 {
						lit++
					}
				}
			}
			if lit == 0 {
				t.Error("no source pixels survived scaling")
			}
		})
	}
}

func TestLetterboxEmptySource(t *testing.T) {
	if _, err := letterbox(image.NewRGBA(image.Rect(0, 0, 0, 0)), 32); err == nil {
		t.Error("no error for empty source")
	}
}
