package vision

import (
	"image"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/templates"
)

// Matcher decides which card templates appear in a raster.
type Matcher interface {
	Match(raster *image.Gray, cards []*templates.Card) card.Set
}

// MatchOptions tunes multi-scale matching.
type MatchOptions struct {
	Scales    []float64 // ascending; the first scale reaching Threshold wins
	Threshold float64   // minimum NCC score, inclusive
	Workers   int       // templates scanned concurrently; <= 0 means GOMAXPROCS
}

// DefaultMatchOptions returns 18 scales over [0.9, 2.2] with a 0.95 threshold.
func DefaultMatchOptions() MatchOptions {
	return MatchOptions{
		Scales:    LinearScales(0.9, 2.2, 18),
		Threshold: 0.95,
		Workers:   runtime.GOMAXPROCS(0),
	}
}

// Hit is a template accepted by the matcher.
type Hit struct {
	Code  card.Code
	Scale float64
	Score float64
	At    image.Point
}

// CardMatcher is the pure-Go multi-scale normalised cross-correlation
// matcher. Scaled templates are cached per template image and scale, so the
// cost of resampling is paid once per process. Safe for concurrent use.
type CardMatcher struct {
	opts   MatchOptions
	cache  *scaleCache
	logger *slog.Logger
}

// NewCardMatcher returns a matcher using opts; zero fields fall back to the
// defaults.
func NewCardMatcher(opts MatchOptions, logger *slog.Logger) *CardMatcher {
	def := DefaultMatchOptions()
	if len(opts.Scales) == 0 {
		opts.Scales = def.Scales
	}
	if opts.Threshold <= 0 {
		opts.Threshold = def.Threshold
	}
	if opts.Workers <= 0 {
		opts.Workers = def.Workers
	}
	return &CardMatcher{opts: opts, cache: newScaleCache(), logger: logger}
}

// Options returns the effective options.
func (m *CardMatcher) Options() MatchOptions { return m.opts }

// Match implements Matcher.
func (m *CardMatcher) Match(raster *image.Gray, cards []*templates.Card) card.Set {
	set := card.NewSet()
	for _, h := range m.Hits(raster, cards) {
		set.Add(h.Code)
	}
	return set
}

// Hits returns every accepted template in input order. Templates larger than
// the raster at their native size are pruned before any scale is tried.
func (m *CardMatcher) Hits(raster *image.Gray, cards []*templates.Card) []Hit {
	if raster == nil || raster.Rect.Empty() || len(cards) == 0 {
		return nil
	}
	frame := precompute(raster)
	results := make([]*Hit, len(cards))

	var g errgroup.Group
	g.SetLimit(m.opts.Workers)
	for i, c := range cards {
		if c == nil || c.Image == nil {
			continue
		}
		tb := c.Image.Bounds()
		if tb.Dx() > frame.W || tb.Dy() > frame.H {
			continue
		}
		g.Go(func() error {
			results[i] = m.matchOne(frame, c)
			return nil
		})
	}
	_ = g.Wait()

	var hits []Hit
	for _, h := range results {
		if h != nil {
			hits = append(hits, *h)
		}
	}
	if m.logger != nil && len(hits) > 1 {
		m.logger.Debug("ambiguous match", "candidates", len(hits))
	}
	return hits
}

// matchOne tries scales in ascending order and stops at the first one whose
// peak score reaches the threshold.
func (m *CardMatcher) matchOne(frame *framePrecomp, c *templates.Card) *Hit {
	for idx, s := range m.opts.Scales {
		pc := m.cache.get(c.Image, idx, s)
		if pc == nil || pc.W > frame.W || pc.H > frame.H {
			continue
		}
		score, at := frame.bestNCC(pc)
		if score >= m.opts.Threshold {
			return &Hit{Code: c.Code, Scale: s, Score: score, At: at}
		}
	}
	return nil
}
