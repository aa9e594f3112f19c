//go:build !windows

package capture

import (
	"image"

	"github.com/vova616/screenshot"
)

func screenBounds() (image.Rectangle, error) {
	return screenshot.ScreenRect()
}

func grabRect(r image.Rectangle) (*image.RGBA, error) {
	return screenshot.CaptureRect(r)
}

// GrabScreen returns a capture of the whole primary screen.
func GrabScreen() (*image.RGBA, error) {
	return screenshot.CaptureScreen()
}
