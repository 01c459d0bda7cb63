package host

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseUint16s(t *testing.T) {
	vals, err := parseUint16s([]string{"10", "0x20", "300"}, 2)
	require.NoError(t, err)
	require.Equal(t, []uint16{10, 0x20, 300}, vals)

	_, err = parseUint16s([]string{"10"}, 2)
	require.Error(t, err)

	_, err = parseUint16s([]string{"10", "70000"}, 2)
	require.Error(t, err)
}

func TestParseFloats(t *testing.T) {
	vals, err := parseFloats([]string{"1.5", "-2"})
	require.NoError(t, err)
	require.Equal(t, [3]float32{1.5, -2, 0}, vals)

	_, err = parseFloats([]string{"x"})
	require.Error(t, err)
}
