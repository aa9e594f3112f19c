package vision

import (
	"image"

	"github.com/soocke/poker-pixel-bot/domain/templates"
)

// DefaultStatusThreshold is the normalised squared difference below which a
// status indicator counts as present.
const DefaultStatusThreshold = 0.1

// StatusDetector reports whether a status template appears in a raster at
// its native size.
type StatusDetector struct {
	threshold float64
}

func NewStatusDetector(threshold float64) *StatusDetector {
	if threshold <= 0 {
		threshold = DefaultStatusThreshold
	}
	return &StatusDetector{threshold: threshold}
}

// Score returns the best (lowest) normalised squared difference. ok is false
// when the template does not fit inside the raster.
func (d *StatusDetector) Score(raster *image.Gray, tmpl *templates.Status) (score float64, ok bool) {
	if raster == nil || tmpl == nil || tmpl.Image == nil {
		return 1, false
	}
	tb := tmpl.Image.Bounds()
	if tb.Dx() > raster.Rect.Dx() || tb.Dy() > raster.Rect.Dy() {
		return 1, false
	}
	score, _ = precompute(raster).minSqDiffNormed(newTemplatePrecomp(tmpl.Image))
	return score, true
}

// Present reports whether the best score is strictly below the threshold.
func (d *StatusDetector) Present(raster *image.Gray, tmpl *templates.Status) bool {
	score, ok := d.Score(raster, tmpl)
	return ok && score < d.threshold
}
