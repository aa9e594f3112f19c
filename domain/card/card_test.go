package card

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseCode(t *testing.T) {
	c, err := ParseCode("ah")
	require.NoError(t, err)
	require.Equal(t, Code("AH"), c)
	require.Equal(t, Rank('A'), c.Rank())
	require.Equal(t, Suit('H'), c.Suit())

	for _, bad := range []string{"", "A", "1H", "AX", "AHH"} {
		_, err := ParseCode(bad)
		require.Error(t, err, bad)
	}
}

func TestAllCodes(t *testing.T) {
	all := All()
	require.Len(t, all, 52)
	seen := NewSet(all...)
	require.Len(t, seen, 52)
	require.True(t, seen.Has("TD"))
}

func TestSetResolve(t *testing.T) {
	c, ok := NewSet().Resolve()
	require.False(t, ok)
	require.Equal(t, Placeholder, c)

	c, ok = NewSet("KD").Resolve()
	require.True(t, ok)
	require.Equal(t, Code("KD"), c)

	amb := NewSet("KD", "KH")
	c, ok = amb.Resolve()
	require.False(t, ok)
	require.True(t, amb.Ambiguous())
	require.True(t, c.IsPlaceholder())
}

func TestSetString(t *testing.T) {
	require.Equal(t, "--", NewSet().String())
	require.Equal(t, "AH KD", NewSet("KD", "AH").String())
}

func TestSetCloneIsIndependent(t *testing.T) {
	s := NewSet("AH")
	c := s.Clone()
	c.Add("2C")
	require.Len(t, s, 1)
	require.Len(t, c, 2)
}
