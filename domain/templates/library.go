package templates

import (
	"errors"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"io/fs"
	"log/slog"
	"strings"

	_ "golang.org/x/image/bmp"

	"github.com/soocke/poker-pixel-bot/assets"
	"github.com/soocke/poker-pixel-bot/domain/card"
	"github.com/soocke/poker-pixel-bot/domain/region"
)

// Card is a grayscale reference image of one card identity. Hand templates
// carry the side they were captured from; board templates have SideNone.
type Card struct {
	Code  card.Code
	Side  region.Side
	Image *image.Gray
	Path  string
}

// Status is a grayscale reference image of a status indicator.
type Status struct {
	Name  string
	Image *image.Gray
	Path  string
}

// AssetLoadError reports every template that could not be loaded. A session
// cannot start while it is returned.
type AssetLoadError struct {
	Missing []string
	Errs    []error
}

func (e *AssetLoadError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "templates: %d asset(s) failed to load", len(e.Missing))
	for i, p := range e.Missing {
		if i == 5 {
			fmt.Fprintf(&b, " (and %d more)", len(e.Missing)-i)
			break
		}
		b.WriteString("; ")
		b.WriteString(p)
	}
	return b.String()
}

func (e *AssetLoadError) Unwrap() []error { return e.Errs }

// Library holds every template needed by the region table. It is read-only
// once returned; accessors hand out copies of the slices.
type Library struct {
	board  []*Card
	hand   map[region.Side][]*Card
	status map[string]*Status
}

// New assembles a library from already decoded templates.
func New(board []*Card, hand map[region.Side][]*Card, status []*Status) *Library {
	lib := &Library{
		board:  append([]*Card(nil), board...),
		hand:   make(map[region.Side][]*Card, len(hand)),
		status: make(map[string]*Status, len(status)),
	}
	for side, cards := range hand {
		lib.hand[side] = append([]*Card(nil), cards...)
	}
	for _, s := range status {
		lib.status[s.Name] = s
	}
	return lib
}

// Load reads every template required by regions from fsys, laid out as
// described in package assets. Any missing or undecodable file fails the
// whole load with *AssetLoadError.
func Load(fsys fs.FS, regions *region.Library, logger *slog.Logger) (*Library, error) {
	var loadErr AssetLoadError
	read := func(p string) *image.Gray {
		img, err := readGray(fsys, p)
		if err != nil {
			loadErr.Missing = append(loadErr.Missing, p)
			loadErr.Errs = append(loadErr.Errs, err)
			return nil
		}
		return img
	}

	codes := card.All()
	board := make([]*Card, 0, len(codes))
	for _, c := range codes {
		p := assets.BoardPath(c)
		if img := read(p); img != nil {
			board = append(board, &Card{Code: c, Image: img, Path: p})
		}
	}

	hand := make(map[region.Side][]*Card)
	for _, side := range regions.Sides() {
		cards := make([]*Card, 0, len(codes))
		for _, c := range codes {
			p := assets.HandPath(side, c)
			if img := read(p); img != nil {
				cards = append(cards, &Card{Code: c, Side: side, Image: img, Path: p})
			}
		}
		hand[side] = cards
	}

	var status []*Status
	for _, r := range regions.ByRole(region.RoleStatus) {
		name := r.Status()
		if name == "" {
			continue
		}
		p := assets.StatusPath(name)
		if img := read(p); img != nil {
			status = append(status, &Status{Name: name, Image: img, Path: p})
		}
	}

	if len(loadErr.Missing) > 0 {
		if logger != nil {
			logger.Error("template load failed", "missing", len(loadErr.Missing), "first", loadErr.Missing[0])
		}
		return nil, &loadErr
	}
	lib := New(board, hand, status)
	if logger != nil {
		logger.Info("templates loaded", "board", len(board), "hand_sides", len(hand), "status", len(status))
	}
	return lib, nil
}

func readGray(fsys fs.FS, p string) (*image.Gray, error) {
	f, err := fsys.Open(p)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", p, err)
	}
	g := Gray(img)
	if g.Rect.Empty() {
		return nil, fmt.Errorf("decode %s: empty image", p)
	}
	return g, nil
}

// Gray converts img to an 8-bit grayscale raster anchored at the origin.
func Gray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Rect.Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	g := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(g, g.Rect, img, b.Min, draw.Src)
	return g
}

// Board returns the board card templates.
func (l *Library) Board() []*Card { return append([]*Card(nil), l.board...) }

// Hand returns the hand card templates for one side.
func (l *Library) Hand(side region.Side) []*Card { return append([]*Card(nil), l.hand[side]...) }

// Status returns the named status template.
func (l *Library) Status(name string) (*Status, bool) {
	s, ok := l.status[name]
	return s, ok
}

// IsAssetLoadError reports whether err carries an *AssetLoadError.
func IsAssetLoadError(err error) bool {
	var ae *AssetLoadError
	return errors.As(err, &ae)
}
