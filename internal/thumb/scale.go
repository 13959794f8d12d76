package thumb

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"
)

// letterbox scales src into a square target-sized canvas, centered on a
// black background so aspect ratio is preserved.
func letterbox(src image.Image, target int) (image.Image, error) {
	srcBounds := src.Bounds()
	srcW, srcH := srcBounds.Dx(), srcBounds.Dy()
	if srcW == 0 || srcH == 0 {
		return nil, fmt.Errorf("empty source image %dx%d", srcW, srcH)
	}

	dst := image.NewRGBA(image.Rect(0, 0, target, target))
	draw.Draw(dst, dst.Bounds(), &image.Uniform{image.Black}, image.Point{}, draw.Src)

	var scaledW, scaledH int
	ratio := float64(srcW) / float64(srcH)
	if ratio > 1 {
		// Landscape or square
		scaledW = target
		scaledH = int(float64(target) / ratio)
	} else {
		// Portrait
		scaledH = target
		scaledW = int(float64(target) * ratio)
	}
	// Extreme aspect ratios round the short side down to zero, which
	// would leave an empty target rect and an all-black thumbnail.
	if scaledW < 1 {
		scaledW = 1
	}
	if scaledH < 1 {
		scaledH = 1
	}

	xBase := (target - scaledW) / 2
	yBase := (target - scaledH) / 2
	targetRect := image.Rect(xBase, yBase, xBase+scaledW, yBase+scaledH)

	// ApproxBiLinear for speed; thumbnails do not need exact filtering.
	draw.ApproxBiLinear.Scale(dst, targetRect, src, srcBounds, draw.Over, nil)
	return dst, nil
}
