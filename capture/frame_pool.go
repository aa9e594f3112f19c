package capture

import (
	"image"
	"sync"
)

// Reusable gray raster pool. Every cycle captures the same handful of region
// sizes, so recycling their backing slices keeps the worker from churning the
// heap at loop speed. Rasters that are never recycled are simply collected.

var grayPool sync.Pool // stores *image.Gray

// acquireGray returns a gray raster sized w x h anchored at the origin. The
// Pix length exactly matches w*h and Stride is w.
func acquireGray(w, h int) *image.Gray {
	rect := image.Rect(0, 0, w, h)
	if w <= 0 || h <= 0 {
		return &image.Gray{Rect: rect}
	}
	needed := w * h
	var img *image.Gray
	if v := grayPool.Get(); v != nil {
		img = v.(*image.Gray)
	}
	if img == nil || cap(img.Pix) < needed {
		return &image.Gray{Pix: make([]byte, needed), Stride: w, Rect: rect}
	}
	img.Stride = w
	img.Rect = rect
	img.Pix = img.Pix[:needed]
	return img
}

// Recycle returns a raster to the pool. The caller must not touch img
// afterwards.
func Recycle(img *image.Gray) {
	if img == nil || img.Pix == nil {
		return
	}
	grayPool.Put(img)
}
