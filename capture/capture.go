package capture

import (
	"fmt"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/soocke/poker-pixel-bot/domain/region"
)

// Capturer grabs a screen region as an 8-bit grayscale raster of exactly the
// region's size. Implementations only read the display.
type Capturer interface {
	Capture(r region.Region) (*image.Gray, error)
}

// CaptureError reports a region the platform could not read, e.g. one that
// lies partially off-screen. It is recoverable: the cycle is skipped.
type CaptureError struct {
	Region string
	Rect   image.Rectangle
	Err    error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %q %v: %v", e.Region, e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }

// grabFunc returns RGBA pixels for an on-screen rectangle.
type grabFunc func(image.Rectangle) (*image.RGBA, error)

// boundsFunc returns the current screen rectangle.
type boundsFunc func() (image.Rectangle, error)

// ScreenCapturer reads regions from the live display and keeps capture
// counters for instrumentation. Safe for use from one worker goroutine; the
// counters may be read concurrently.
type ScreenCapturer struct {
	logger   *slog.Logger
	grab     grabFunc
	bounds   boundsFunc
	captures atomic.Uint64
	failures atomic.Uint64
	nanos    atomic.Uint64
	last     atomic.Int64
}

// NewScreenCapturer returns a capturer backed by the platform grab primitive.
func NewScreenCapturer(logger *slog.Logger) *ScreenCapturer {
	return &ScreenCapturer{logger: logger, grab: grabRect, bounds: screenBounds}
}

// Capture implements Capturer. The returned raster comes from the frame pool;
// hand it back with Recycle once the cycle is done with it.
func (s *ScreenCapturer) Capture(r region.Region) (*image.Gray, error) {
	start := time.Now()
	if r.Rect.Empty() {
		return nil, s.fail(&CaptureError{Region: r.Name, Rect: r.Rect, Err: fmt.Errorf("empty rectangle")})
	}
	screen, err := s.bounds()
	if err != nil {
		return nil, s.fail(&CaptureError{Region: r.Name, Rect: r.Rect, Err: err})
	}
	if !r.Rect.In(screen) {
		return nil, s.fail(&CaptureError{Region: r.Name, Rect: r.Rect, Err: fmt.Errorf("outside screen %v", screen)})
	}
	rgba, err := s.grab(r.Rect)
	if err != nil {
		return nil, s.fail(&CaptureError{Region: r.Name, Rect: r.Rect, Err: err})
	}
	if rgba == nil || rgba.Rect.Dx() != r.Width() || rgba.Rect.Dy() != r.Height() {
		return nil, s.fail(&CaptureError{Region: r.Name, Rect: r.Rect, Err: fmt.Errorf("short capture")})
	}
	g := toGray(rgba)
	elapsed := time.Since(start)
	s.nanos.Add(uint64(elapsed.Nanoseconds()))
	s.captures.Add(1)
	s.last.Store(time.Now().UnixNano())
	return g, nil
}

func (s *ScreenCapturer) fail(err *CaptureError) error {
	s.failures.Add(1)
	if s.logger != nil {
		s.logger.Debug("capture failed", "region", err.Region, "error", err.Err)
	}
	return err
}

// Stats summarises capture behaviour.
func (s *ScreenCapturer) Stats() Stats {
	captures := s.captures.Load()
	total := s.nanos.Load()
	var avg time.Duration
	if captures > 0 {
		avg = time.Duration(total / captures)
	}
	var last time.Time
	if ns := s.last.Load(); ns != 0 {
		last = time.Unix(0, ns)
	}
	return Stats{
		Captures:    captures,
		Failures:    s.failures.Load(),
		AvgCapture:  avg,
		LastCapture: last,
	}
}

// toGray converts captured RGBA pixels into a pooled gray raster anchored at
// the origin, using the same luma weights as color.GrayModel.
func toGray(src *image.RGBA) *image.Gray {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	dst := acquireGray(w, h)
	for y := 0; y < h; y++ {
		off := src.PixOffset(b.Min.X, b.Min.Y+y)
		row := src.Pix[off : off+w*4]
		out := dst.Pix[y*dst.Stride : y*dst.Stride+w]
		for x := 0; x < w; x++ {
			i := x * 4
			r := uint32(row[i]) * 0x101
			g := uint32(row[i+1]) * 0x101
			bl := uint32(row[i+2]) * 0x101
			out[x] = uint8((19595*r + 38470*g + 7471*bl + 1<<15) >> 24)
		}
	}
	return dst
}
