package vision

import (
	"image"
	"sync"

	"golang.org/x/image/draw"
)

// LinearScales returns n factors evenly spaced over [min, max] inclusive,
// ascending. n == 1 yields just min.
func LinearScales(min, max float64, n int) []float64 {
	if n <= 0 || min <= 0 || max < min {
		return nil
	}
	if n == 1 {
		return []float64{min}
	}
	out := make([]float64, n)
	step := (max - min) / float64(n-1)
	for i := range out {
		out[i] = min + float64(i)*step
	}
	out[n-1] = max
	return out
}

// resample scales a template by factor with bilinear interpolation. Results
// smaller than 2x2 are rejected.
func resample(src *image.Gray, factor float64) *image.Gray {
	if src == nil || factor <= 0 {
		return nil
	}
	b := src.Bounds()
	w := int(float64(b.Dx()) * factor)
	h := int(float64(b.Dy()) * factor)
	if w < 2 || h < 2 {
		return nil
	}
	if w == b.Dx() && h == b.Dy() {
		return src
	}
	dst := image.NewGray(image.Rect(0, 0, w, h))
	draw.BiLinear.Scale(dst, dst.Rect, src, b, draw.Src, nil)
	return dst
}

// scaleKey identifies one scaled rendition of one template image. Keying by
// image identity keeps same-sized templates of different cards apart.
type scaleKey struct {
	tmpl *image.Gray
	idx  int
}

// scaleCache memoises scaled template precomputations. Entries are
// immutable once stored.
type scaleCache struct {
	mu sync.RWMutex
	m  map[scaleKey]*templatePrecomp
}

func newScaleCache() *scaleCache {
	return &scaleCache{m: make(map[scaleKey]*templatePrecomp)}
}

// get returns the precomputation of tmpl at scales[idx]; nil when the scaled
// template is degenerate.
func (c *scaleCache) get(tmpl *image.Gray, idx int, factor float64) *templatePrecomp {
	key := scaleKey{tmpl: tmpl, idx: idx}
	c.mu.RLock()
	pc, ok := c.m[key]
	c.mu.RUnlock()
	if ok {
		return pc
	}
	pc = newTemplatePrecomp(resample(tmpl, factor))
	c.mu.Lock()
	// Keep the first insert so concurrent builders converge on one value.
	if existing, ok := c.m[key]; ok {
		pc = existing
	} else {
		c.m[key] = pc
	}
	c.mu.Unlock()
	return pc
}

func (c *scaleCache) len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
