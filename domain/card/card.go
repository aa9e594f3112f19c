package card

import (
	"fmt"
	"sort"
	"strings"
)

// Rank is a card rank character: '2'..'9', 'T', 'J', 'Q', 'K', 'A'.
type Rank byte

// Suit is a suit initial: 'H', 'D', 'C', 'S'.
type Suit byte

// Ranks lists every rank in template load order.
var Ranks = []Rank{'A', '2', '3', '4', '5', '6', '7', '8', '9', 'T', 'J', 'Q', 'K'}

// Suits lists every suit in template load order.
var Suits = []Suit{'H', 'D', 'C', 'S'}

// Placeholder is rendered for a slot without a confident match.
const Placeholder Code = "--"

func (r Rank) String() string { return string(r) }
func (s Suit) String() string { return string(s) }

// Valid reports whether r is one of Ranks.
func (r Rank) Valid() bool {
	for _, v := range Ranks {
		if v == r {
			return true
		}
	}
	return false
}

// Valid reports whether s is one of Suits.
func (s Suit) Valid() bool {
	for _, v := range Suits {
		if v == s {
			return true
		}
	}
	return false
}

// Code is the two character identity of a card, rank then suit initial ("AH", "TD").
type Code string

// NewCode joins a rank and a suit.
func NewCode(r Rank, s Suit) Code { return Code([]byte{byte(r), byte(s)}) }

// ParseCode validates a code string. Lowercase input is accepted.
func ParseCode(s string) (Code, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if len(s) != 2 {
		return "", fmt.Errorf("card: invalid code %q", s)
	}
	c := Code(s)
	if !c.Rank().Valid() || !c.Suit().Valid() {
		return "", fmt.Errorf("card: invalid code %q", s)
	}
	return c, nil
}

// Rank returns the rank part. The placeholder has rank '-'.
func (c Code) Rank() Rank {
	if len(c) != 2 {
		return '-'
	}
	return Rank(c[0])
}

// Suit returns the suit part.
func (c Code) Suit() Suit {
	if len(c) != 2 {
		return '-'
	}
	return Suit(c[1])
}

// IsPlaceholder reports whether c stands for an unresolved slot.
func (c Code) IsPlaceholder() bool { return c == "" || c == Placeholder }

// All returns the 52 codes in rank-major order.
func All() []Code {
	out := make([]Code, 0, len(Ranks)*len(Suits))
	for _, r := range Ranks {
		for _, s := range Suits {
			out = append(out, NewCode(r, s))
		}
	}
	return out
}

// Set is an unordered set of recognized codes for one region.
type Set map[Code]struct{}

// NewSet builds a set from codes.
func NewSet(codes ...Code) Set {
	s := make(Set, len(codes))
	for _, c := range codes {
		s.Add(c)
	}
	return s
}

func (s Set) Add(c Code) { s[c] = struct{}{} }

func (s Set) Has(c Code) bool {
	_, ok := s[c]
	return ok
}

// Sorted returns the members in lexical order.
func (s Set) Sorted() []Code {
	out := make([]Code, 0, len(s))
	for c := range s {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Clone returns an independent copy.
func (s Set) Clone() Set {
	out := make(Set, len(s))
	for c := range s {
		out[c] = struct{}{}
	}
	return out
}

// Resolve returns the single member of s. Empty and overlarge sets resolve
// to Placeholder with ok=false.
func (s Set) Resolve() (Code, bool) {
	if len(s) != 1 {
		return Placeholder, false
	}
	for c := range s {
		return c, true
	}
	return Placeholder, false
}

// Ambiguous reports whether more than one template matched.
func (s Set) Ambiguous() bool { return len(s) > 1 }

// String renders the set for display: sorted codes joined by spaces, or the
// placeholder when empty.
func (s Set) String() string {
	if len(s) == 0 {
		return string(Placeholder)
	}
	codes := s.Sorted()
	parts := make([]string, len(codes))
	for i, c := range codes {
		parts[i] = string(c)
	}
	return strings.Join(parts, " ")
}
