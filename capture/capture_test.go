package capture

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/soocke/poker-pixel-bot/domain/region"
)

func fakeScreen(screen image.Rectangle, fill color.RGBA) *ScreenCapturer {
	s := NewScreenCapturer(nil)
	s.bounds = func() (image.Rectangle, error) { return screen, nil }
	s.grab = func(r image.Rectangle) (*image.RGBA, error) {
		img := image.NewRGBA(image.Rect(0, 0, r.Dx(), r.Dy()))
		for i := 0; i < len(img.Pix); i += 4 {
			img.Pix[i], img.Pix[i+1], img.Pix[i+2], img.Pix[i+3] = fill.R, fill.G, fill.B, 255
		}
		return img, nil
	}
	return s
}

func TestCaptureReturnsRegionSizedGray(t *testing.T) {
	s := fakeScreen(image.Rect(0, 0, 200, 100), color.RGBA{R: 255, G: 255, B: 255})
	r := region.Region{Name: "Flop A", Rect: image.Rect(10, 20, 40, 60)}
	g, err := s.Capture(r)
	if err != nil {
		t.Fatalf("capture: %v", err)
	}
	if g.Rect != image.Rect(0, 0, 30, 40) {
		t.Fatalf("unexpected raster bounds %v", g.Rect)
	}
	if g.GrayAt(5, 5).Y != 255 {
		t.Fatalf("expected white, got %d", g.GrayAt(5, 5).Y)
	}
	if st := s.Stats(); st.Captures != 1 || st.Failures != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
	Recycle(g)
}

func TestCaptureOffScreenIsCaptureError(t *testing.T) {
	s := fakeScreen(image.Rect(0, 0, 100, 100), color.RGBA{})
	r := region.Region{Name: "River", Rect: image.Rect(90, 90, 120, 120)}
	_, err := s.Capture(r)
	var ce *CaptureError
	if !errors.As(err, &ce) {
		t.Fatalf("expected CaptureError, got %v", err)
	}
	if ce.Region != "River" {
		t.Fatalf("unexpected region %q", ce.Region)
	}
	if st := s.Stats(); st.Failures != 1 {
		t.Fatalf("expected one failure, got %+v", st)
	}
}

func TestCaptureGrabFailureIsWrapped(t *testing.T) {
	boom := errors.New("bitblt failed")
	s := fakeScreen(image.Rect(0, 0, 100, 100), color.RGBA{})
	s.grab = func(image.Rectangle) (*image.RGBA, error) { return nil, boom }
	_, err := s.Capture(region.Region{Name: "Start", Rect: image.Rect(0, 0, 10, 10)})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped grab error, got %v", err)
	}
}

func TestToGrayLuma(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{G: 255, A: 255})
	g := toGray(src)
	want0 := color.GrayModel.Convert(color.RGBA{R: 255, A: 255}).(color.Gray).Y
	want1 := color.GrayModel.Convert(color.RGBA{G: 255, A: 255}).(color.Gray).Y
	if g.Pix[0] != want0 || g.Pix[1] != want1 {
		t.Fatalf("luma mismatch got %v want %d,%d", g.Pix, want0, want1)
	}
}

func TestAcquireGrayReusesBacking(t *testing.T) {
	a := acquireGray(8, 8)
	Recycle(a)
	b := acquireGray(4, 4)
	if len(b.Pix) != 16 || b.Stride != 4 {
		t.Fatalf("unexpected pooled raster len=%d stride=%d", len(b.Pix), b.Stride)
	}
}

func TestScreenshotNameAndWrite(t *testing.T) {
	at := time.Date(2024, 3, 9, 7, 5, 1, 0, time.Local)
	if got := ScreenshotName(at); got != "screenshot_20240309_070501.png" {
		t.Fatalf("unexpected name %q", got)
	}

	dir := filepath.Join(t.TempDir(), "shots")
	img := image.NewRGBA(image.Rect(0, 0, 4, 3))
	path, err := writePNG(dir, at, img)
	if err != nil {
		t.Fatalf("write: %v", err)
	}
	if want := filepath.Join(dir, "screenshot_20240309_070501.png"); path != want {
		t.Fatalf("path %q want %q", path, want)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer f.Close()
	decoded, err := png.Decode(f)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if decoded.Bounds() != img.Bounds() {
		t.Fatalf("bounds %v want %v", decoded.Bounds(), img.Bounds())
	}
}
