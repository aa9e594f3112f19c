package vision

import (
	"image"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soocke/poker-pixel-bot/domain/templates"
)

func TestStatusPresent(t *testing.T) {
	tmpl := &templates.Status{Name: "start", Image: noise(16, 6, 1)}
	raster := noise(40, 20, 2)
	paste(raster, tmpl.Image, image.Pt(11, 7))

	d := NewStatusDetector(0)
	score, ok := d.Score(raster, tmpl)
	require.True(t, ok)
	require.InDelta(t, 0, score, 1e-9)
	require.True(t, d.Present(raster, tmpl))
}

func TestStatusAbsent(t *testing.T) {
	tmpl := &templates.Status{Name: "pause", Image: noise(16, 6, 1)}
	d := NewStatusDetector(DefaultStatusThreshold)
	require.False(t, d.Present(noise(40, 20, 3), tmpl))
	require.False(t, d.Present(blank(40, 20, 0), tmpl))
	require.False(t, d.Present(noise(10, 4, 3), tmpl), "template larger than raster")
	require.False(t, d.Present(nil, tmpl))
}

func TestStatusThresholdIsStrict(t *testing.T) {
	tmpl := &templates.Status{Name: "start", Image: noise(8, 4, 9)}
	raster := noise(20, 10, 10)
	score, ok := NewStatusDetector(0).Score(raster, tmpl)
	require.True(t, ok)
	require.Greater(t, score, 0.0)

	require.False(t, NewStatusDetector(score).Present(raster, tmpl))
	require.True(t, NewStatusDetector(score+1e-6).Present(raster, tmpl))
}

func TestSqDiffBothBlack(t *testing.T) {
	tmpl := blank(3, 3, 0)
	score, _ := precompute(blank(5, 5, 0)).minSqDiffNormed(newTemplatePrecomp(tmpl))
	require.Zero(t, score)
}
