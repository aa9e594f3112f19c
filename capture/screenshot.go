package capture

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"time"
)

// ScreenshotName is the file name used for a full-screen capture taken at t.
func ScreenshotName(t time.Time) string {
	return "screenshot_" + t.Format("20060102_150405") + ".png"
}

// SaveScreenshot grabs the whole screen and writes it as PNG into dir.
// It returns the written path.
func SaveScreenshot(dir string, now time.Time) (string, error) {
	img, err := GrabScreen()
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return writePNG(dir, now, img)
}

func writePNG(dir string, now time.Time, img image.Image) (string, error) {
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	path := filepath.Join(dir, ScreenshotName(now))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("screenshot: encode %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	return path, nil
}
