//go:build gocv

package vision

import (
	"image"
	"log/slog"

	"gocv.io/x/gocv"

	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/templates"
)

// CVMatcher is the OpenCV rendition of CardMatcher. It follows the same
// scale order and first-acceptable-scale rule, using TM_CCOEFF_NORMED.
type CVMatcher struct {
	opts   MatchOptions
	logger *slog.Logger
}

func NewCVMatcher(opts MatchOptions, logger *slog.Logger) *CVMatcher {
	base := NewCardMatcher(opts, logger)
	return &CVMatcher{opts: base.opts, logger: logger}
}

// NewDefaultMatcher selects the OpenCV backend in gocv builds.
func NewDefaultMatcher(opts MatchOptions, logger *slog.Logger) Matcher {
	if logger != nil {
		logger.Info("matcher backend", "backend", "gocv")
	}
	return NewCVMatcher(opts, logger)
}

func (m *CVMatcher) Match(raster *image.Gray, cards []*templates.Card) card.Set {
	set := card.NewSet()
	if raster == nil || raster.Rect.Empty() {
		return set
	}
	src, err := gocv.ImageGrayToMatGray(raster)
	if err != nil {
		if m.logger != nil {
			m.logger.Warn("gocv raster conversion failed", "error", err)
		}
		return set
	}
	defer src.Close()
	rw, rh := raster.Rect.Dx(), raster.Rect.Dy()

	for _, c := range cards {
		if c == nil || c.Image == nil {
			continue
		}
		tb := c.Image.Bounds()
		if tb.Dx() > rw || tb.Dy() > rh {
			continue
		}
		if m.matchOne(src, rw, rh, c.Image) {
			set.Add(c.Code)
		}
	}
	return set
}

func (m *CVMatcher) matchOne(src gocv.Mat, rw, rh int, tmpl *image.Gray) bool {
	base, err := gocv.ImageGrayToMatGray(tmpl)
	if err != nil {
		return false
	}
	defer base.Close()
	tb := tmpl.Bounds()
	for _, s := range m.opts.Scales {
		w, h := int(float64(tb.Dx())*s), int(float64(tb.Dy())*s)
		if w < 2 || h < 2 || w > rw || h > rh {
			continue
		}
		scaled := gocv.NewMat()
		gocv.Resize(base, &scaled, image.Pt(w, h), 0, 0, gocv.InterpolationLinear)
		score := matchPeak(src, scaled, gocv.TmCcoeffNormed, true)
		scaled.Close()
		if score >= m.opts.Threshold {
			return true
		}
	}
	return false
}

// matchPeak runs MatchTemplate and returns the maximum (or minimum) score.
func matchPeak(src, tmpl gocv.Mat, mode gocv.TemplateMatchMode, useMax bool) float64 {
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()
	gocv.MatchTemplate(src, tmpl, &result, mode, mask)
	minVal, maxVal, _, _ := gocv.MinMaxLoc(result)
	if useMax {
		return float64(maxVal)
	}
	return float64(minVal)
}

// CVSquaredDiff returns the minimum TM_SQDIFF_NORMED score of tmpl in raster.
func CVSquaredDiff(raster, tmpl *image.Gray) (float64, bool) {
	if raster == nil || tmpl == nil {
		return 1, false
	}
	if tmpl.Rect.Dx() > raster.Rect.Dx() || tmpl.Rect.Dy() > raster.Rect.Dy() {
		return 1, false
	}
	src, err := gocv.ImageGrayToMatGray(raster)
	if err != nil {
		return 1, false
	}
	defer src.Close()
	t, err := gocv.ImageGrayToMatGray(tmpl)
	if err != nil {
		return 1, false
	}
	defer t.Close()
	return matchPeak(src, t, gocv.TmSqdiffNormed, false), true
}
