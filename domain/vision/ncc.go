package vision

import (
	"image"
	"math"
)

// framePrecomp stores per-raster intensities and their summed-area tables
// (integral images). The integrals allow O(1) window sum and variance
// queries. It is built once per raster and only read afterwards, so it can
// be shared by concurrent template scans.
type framePrecomp struct {
	gray       []float64 // per pixel intensity (length W*H)
	integral   []float64 // summed-area table of intensity
	integralSq []float64 // summed-area table of intensity squared
	W, H       int
}

// templatePrecomp caches intensities and summary statistics for a template
// (or a scaled version of it).
type templatePrecomp struct {
	gray  []float64
	sumT  float64
	sumT2 float64
	W, H  int
	meanT float64
	stdT  float64
}

// precompute builds the intensity table and integrals for a raster.
func precompute(raster *image.Gray) *framePrecomp {
	if raster == nil {
		return nil
	}
	b := raster.Bounds()
	W, H := b.Dx(), b.Dy()
	need := W * H
	p := &framePrecomp{
		gray:       make([]float64, need),
		integral:   make([]float64, need),
		integralSq: make([]float64, need),
		W:          W,
		H:          H,
	}
	for y := 0; y < H; y++ {
		var rowSum, rowSum2 float64
		row := raster.Pix[raster.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < W; x++ {
			v := float64(row[x])
			off := y*W + x
			p.gray[off] = v
			rowSum += v
			rowSum2 += v * v
			if y == 0 {
				p.integral[off] = rowSum
				p.integralSq[off] = rowSum2
			} else {
				p.integral[off] = p.integral[(y-1)*W+x] + rowSum
				p.integralSq[off] = p.integralSq[(y-1)*W+x] + rowSum2
			}
		}
	}
	return p
}

// newTemplatePrecomp computes intensities and statistics for a template.
func newTemplatePrecomp(tmpl *image.Gray) *templatePrecomp {
	if tmpl == nil {
		return nil
	}
	b := tmpl.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}
	gray := make([]float64, w*h)
	var sumT, sumT2 float64
	for y := 0; y < h; y++ {
		row := tmpl.Pix[tmpl.PixOffset(b.Min.X, b.Min.Y+y):]
		for x := 0; x < w; x++ {
			v := float64(row[x])
			gray[y*w+x] = v
			sumT += v
			sumT2 += v * v
		}
	}
	n := float64(w * h)
	meanT := sumT / n
	varT := (sumT2 - sumT*sumT/n) / n
	stdT := 0.0
	if varT > 0 {
		stdT = math.Sqrt(varT)
	}
	return &templatePrecomp{gray: gray, sumT: sumT, sumT2: sumT2, W: w, H: h, meanT: meanT, stdT: stdT}
}

// crossSum returns the sum of frame*template over the window at (x, y).
func (f *framePrecomp) crossSum(t *templatePrecomp, x, y int) float64 {
	var sum float64
	for py := 0; py < t.H; py++ {
		frow := f.gray[(y+py)*f.W+x : (y+py)*f.W+x+t.W]
		trow := t.gray[py*t.W : (py+1)*t.W]
		for px, tv := range trow {
			sum += frow[px] * tv
		}
	}
	return sum
}

// bestNCC scans every window position and returns the peak zero-mean
// normalised cross-correlation and its location. Windows and templates with
// no variance carry no shape and never score. A template that does not fit
// scores -1.
func (f *framePrecomp) bestNCC(t *templatePrecomp) (float64, image.Point) {
	best, at := -1.0, image.Point{}
	if f == nil || t == nil || t.W > f.W || t.H > f.H || t.stdT <= 1e-9 {
		return best, at
	}
	n := float64(t.W * t.H)
	for y := 0; y <= f.H-t.H; y++ {
		for x := 0; x <= f.W-t.W; x++ {
			sumF := integralSum(f.integral, f.W, x, y, x+t.W-1, y+t.H-1)
			sumF2 := integralSum(f.integralSq, f.W, x, y, x+t.W-1, y+t.H-1)
			varF := (sumF2 - sumF*sumF/n) / n
			if varF <= 1e-9 {
				continue
			}
			numer := f.crossSum(t, x, y) - sumF*t.meanT
			denom := n * math.Sqrt(varF) * t.stdT
			if denom <= 0 {
				continue
			}
			if score := numer / denom; score > best {
				best, at = score, image.Pt(x, y)
			}
		}
	}
	return best, at
}

// minSqDiffNormed scans every window position and returns the lowest
// normalised squared difference sum((T-I)^2) / sqrt(sum(T^2) * sum(I^2)) and
// its location. A template that does not fit scores 1 (no match).
func (f *framePrecomp) minSqDiffNormed(t *templatePrecomp) (float64, image.Point) {
	best, at := math.Inf(1), image.Point{}
	if f == nil || t == nil || t.W > f.W || t.H > f.H {
		return 1, at
	}
	for y := 0; y <= f.H-t.H; y++ {
		for x := 0; x <= f.W-t.W; x++ {
			sumF2 := integralSum(f.integralSq, f.W, x, y, x+t.W-1, y+t.H-1)
			cross := f.crossSum(t, x, y)
			diff := t.sumT2 - 2*cross + sumF2
			if diff < 0 {
				diff = 0
			}
			denom := math.Sqrt(t.sumT2 * sumF2)
			var score float64
			switch {
			case denom > 0:
				score = diff / denom
			case diff == 0:
				score = 0 // both black
			default:
				score = 1
			}
			if score < best {
				best, at = score, image.Pt(x, y)
			}
		}
	}
	return best, at
}

// integralSum returns the inclusive sum over rectangle [x0..x1] x [y0..y1]
// from an integral image stored in row-major order with width W.
func integralSum(I []float64, W int, x0, y0, x1, y1 int) float64 {
	if x0 > x1 || y0 > y1 {
		return 0
	}
	A := func(x, y int) float64 {
		if x < 0 || y < 0 {
			return 0
		}
		return I[y*W+x]
	}
	return A(x1, y1) - A(x0-1, y1) - A(x1, y0-1) + A(x0-1, y0-1)
}
