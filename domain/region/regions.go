package region

import (
	"fmt"
	"image"
)

// Role classifies what a region shows.
type Role int

const (
	RoleBoard Role = iota
	RoleHand
	RoleStatus
)

func (r Role) String() string {
	switch r {
	case RoleBoard:
		return "board"
	case RoleHand:
		return "hand"
	case RoleStatus:
		return "status"
	default:
		return "unknown"
	}
}

// Side distinguishes the two hand card slots; each side has its own template set.
type Side int

const (
	SideNone Side = iota
	SideLeft
	SideRight
)

func (s Side) String() string {
	switch s {
	case SideLeft:
		return "left"
	case SideRight:
		return "right"
	default:
		return "none"
	}
}

// Stable region names.
const (
	FlopA = "Flop A"
	FlopB = "Flop B"
	FlopC = "Flop C"
	Turn  = "Turn"
	River = "River"
	HandA = "Hand A"
	HandB = "Hand B"
	Start = "Start"
	Pause = "Pause"
)

// FlopNames are the board slots consulted by the decision rule.
var FlopNames = [3]string{FlopA, FlopB, FlopC}

// HandNames are the hand slots, left then right.
var HandNames = [2]string{HandA, HandB}

// Region is a named, fixed screen rectangle. Values are copied, never shared.
type Region struct {
	Name string
	Rect image.Rectangle
	Role Role
	Side Side
}

// Width and Height of the rectangle in screen pixels.
func (r Region) Width() int  { return r.Rect.Dx() }
func (r Region) Height() int { return r.Rect.Dy() }

// Status names the status template bound to a status region ("start", "pause").
func (r Region) Status() string {
	switch r.Name {
	case Start:
		return "start"
	case Pause:
		return "pause"
	default:
		return ""
	}
}

// defaultLayout is the table layout at the default window position (1920x1080 client).
var defaultLayout = []Region{
	{Name: FlopA, Rect: image.Rect(742, 418, 742+78, 418+104), Role: RoleBoard},
	{Name: FlopB, Rect: image.Rect(826, 418, 826+78, 418+104), Role: RoleBoard},
	{Name: FlopC, Rect: image.Rect(910, 418, 910+78, 418+104), Role: RoleBoard},
	{Name: Turn, Rect: image.Rect(994, 418, 994+78, 418+104), Role: RoleBoard},
	{Name: River, Rect: image.Rect(1078, 418, 1078+78, 418+104), Role: RoleBoard},
	{Name: HandA, Rect: image.Rect(884, 786, 884+72, 786+96), Role: RoleHand, Side: SideLeft},
	{Name: HandB, Rect: image.Rect(962, 786, 962+72, 786+96), Role: RoleHand, Side: SideRight},
	{Name: Start, Rect: image.Rect(1488, 948, 1488+140, 948+44), Role: RoleStatus},
	{Name: Pause, Rect: image.Rect(1488, 896, 1488+140, 896+44), Role: RoleStatus},
}

// Library is the process-wide region table. It is read-only after construction.
type Library struct {
	regions []Region
	byName  map[string]int
}

// Default returns the built-in layout.
func Default() *Library { return Offset(0, 0) }

// Offset returns the built-in layout translated by (dx, dy), for tables not
// anchored at the screen origin.
func Offset(dx, dy int) *Library {
	regs := make([]Region, len(defaultLayout))
	for i, r := range defaultLayout {
		r.Rect = r.Rect.Add(image.Pt(dx, dy))
		regs[i] = r
	}
	lib, err := New(regs)
	if err != nil {
		panic(err) // built-in table is well formed
	}
	return lib
}

// New validates and indexes a region table: names must be unique and
// rectangles non-empty.
func New(regions []Region) (*Library, error) {
	lib := &Library{regions: make([]Region, len(regions)), byName: make(map[string]int, len(regions))}
	for i, r := range regions {
		if r.Name == "" {
			return nil, fmt.Errorf("region %d: empty name", i)
		}
		if r.Rect.Empty() {
			return nil, fmt.Errorf("region %q: empty rectangle %v", r.Name, r.Rect)
		}
		if _, dup := lib.byName[r.Name]; dup {
			return nil, fmt.Errorf("region %q: duplicate name", r.Name)
		}
		lib.regions[i] = r
		lib.byName[r.Name] = i
	}
	return lib, nil
}

// Get returns the region with the given name.
func (l *Library) Get(name string) (Region, bool) {
	i, ok := l.byName[name]
	if !ok {
		return Region{}, false
	}
	return l.regions[i], true
}

// All returns a copy of every region in table order.
func (l *Library) All() []Region {
	out := make([]Region, len(l.regions))
	copy(out, l.regions)
	return out
}

// ByRole returns the regions with the given role in table order.
func (l *Library) ByRole(role Role) []Region {
	var out []Region
	for _, r := range l.regions {
		if r.Role == role {
			out = append(out, r)
		}
	}
	return out
}

// Sides returns the distinct hand sides present in the table.
func (l *Library) Sides() []Side {
	var out []Side
	seen := map[Side]bool{}
	for _, r := range l.regions {
		if r.Role == RoleHand && !seen[r.Side] {
			seen[r.Side] = true
			out = append(out, r.Side)
		}
	}
	return out
}
