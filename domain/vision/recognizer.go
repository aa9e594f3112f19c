package vision

import (
	"fmt"
	"log/slog"

	"github.com/soocke/poker-pixel-bot/capture"
	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/region"
	"github.com/soocke/poker-pixel-bot/domain/templates"
)

type slot struct {
	region region.Region
	cards  []*templates.Card
}

// Recognizer captures a fixed list of card regions and matches each against
// its own template set. Board and hand recognizers share one Matcher.
type Recognizer struct {
	name    string
	matcher Matcher
	slots   []slot
	logger  *slog.Logger
}

// NewBoardRecognizer binds every board region to the board templates.
func NewBoardRecognizer(m Matcher, regions *region.Library, lib *templates.Library, logger *slog.Logger) *Recognizer {
	r := &Recognizer{name: "board", matcher: m, logger: logger}
	board := lib.Board()
	for _, reg := range regions.ByRole(region.RoleBoard) {
		r.slots = append(r.slots, slot{region: reg, cards: board})
	}
	return r
}

// NewHandRecognizer binds each hand region to the templates of its side.
func NewHandRecognizer(m Matcher, regions *region.Library, lib *templates.Library, logger *slog.Logger) *Recognizer {
	r := &Recognizer{name: "hand", matcher: m, logger: logger}
	for _, reg := range regions.ByRole(region.RoleHand) {
		r.slots = append(r.slots, slot{region: reg, cards: lib.Hand(reg.Side)})
	}
	return r
}

// Regions returns the region names in capture order.
func (r *Recognizer) Regions() []string {
	out := make([]string, len(r.slots))
	for i, s := range r.slots {
		out[i] = s.region.Name
	}
	return out
}

// Recognize captures and matches every region. The first capture failure
// aborts the pass so the caller can skip the cycle.
func (r *Recognizer) Recognize(c capture.Capturer) (map[string]card.Set, error) {
	out := make(map[string]card.Set, len(r.slots))
	for _, s := range r.slots {
		raster, err := c.Capture(s.region)
		if err != nil {
			return nil, fmt.Errorf("%s recognizer: %w", r.name, err)
		}
		set := r.matcher.Match(raster, s.cards)
		capture.Recycle(raster)
		if r.logger != nil && set.Ambiguous() {
			r.logger.Debug("low confidence region", "region", s.region.Name, "codes", set.String())
		}
		out[s.region.Name] = set
	}
	return out, nil
}

// StatusFlags are the raw indicator readings of one cycle.
type StatusFlags struct {
	Start bool
	Pause bool
}

type probe struct {
	region region.Region
	tmpl   *templates.Status
}

// StatusReader evaluates each status region against its template
// independently.
type StatusReader struct {
	detector *StatusDetector
	probes   []probe
}

// NewStatusReader binds the status regions to their templates. A status
// region without a template is an error.
func NewStatusReader(d *StatusDetector, regions *region.Library, lib *templates.Library) (*StatusReader, error) {
	sr := &StatusReader{detector: d}
	for _, reg := range regions.ByRole(region.RoleStatus) {
		tmpl, ok := lib.Status(reg.Status())
		if !ok {
			return nil, fmt.Errorf("status region %q: no template %q", reg.Name, reg.Status())
		}
		sr.probes = append(sr.probes, probe{region: reg, tmpl: tmpl})
	}
	return sr, nil
}

// Read captures every status region and reports which indicators are shown.
func (s *StatusReader) Read(c capture.Capturer) (StatusFlags, error) {
	var flags StatusFlags
	for _, p := range s.probes {
		raster, err := c.Capture(p.region)
		if err != nil {
			return StatusFlags{}, fmt.Errorf("status reader: %w", err)
		}
		present := s.detector.Present(raster, p.tmpl)
		capture.Recycle(raster)
		switch p.region.Name {
		case region.Start:
			flags.Start = present
		case region.Pause:
			flags.Pause = present
		}
	}
	return flags, nil
}
