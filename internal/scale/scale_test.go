package scale

import (
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	c, err := ParseHex("#fee5d9")
	require.NoError(t, err)
	assert.Equal(t, color.RGBA{R: 0xfe, G: 0xe5, B: 0xd9, A: 0xff}, c)

	c, err = ParseHex("#ccc")
	require.NoError(t, err)
	assert.Equal(t, "#cccccc", Hex(c))

	_, err = ParseHex("orange")
	assert.Error(t, err)
	_, err = ParseHex("#12345")
	assert.Error(t, err)
}

func TestHex_NonRGBA(t *testing.T) {
	assert.Equal(t, "#808080", Hex(color.Gray{Y: 0x80}))
	assert.Equal(t, "#0000ff", Hex(color.NRGBA{B: 0xff, A: 0xff}))
}

func TestExtent(t *testing.T) {
	lo, hi, ok := Extent([]float64{3, -2, 7})
	require.True(t, ok)
	assert.Equal(t, -2.0, lo)
	assert.Equal(t, 7.0, hi)

	_, _, ok = Extent(nil)
	assert.False(t, ok)
}

func TestMaxAbs(t *testing.T) {
	assert.Equal(t, 1200.0, MaxAbs([]float64{-1200, 300}))
	assert.Equal(t, 54600.0, MaxAbs([]float64{-500, 54600}))
	assert.Equal(t, 0.0, MaxAbs(nil))
}

func TestLinear_Endpoints(t *testing.T) {
	s := NewLinear([]float64{100, 562994, 3000}, RGB(MustParseHex("#fee5d9"), MustParseHex("#de2d26")))

	assert.Equal(t, "#fee5d9", s.Color(100))
	assert.Equal(t, "#de2d26", s.Color(562994))
	assert.Equal(t, []float64{100, 562994}, s.Domain())
}

func TestLinear_Degenerate(t *testing.T) {
	s := NewLinear([]float64{7, 7}, RGB(color.RGBA{A: 0xff}, color.RGBA{R: 200, G: 100, B: 50, A: 0xff}))
	assert.Equal(t, 0.5, s.T(7))
	assert.Equal(t, "#643219", s.Color(7))
}

func TestDiverging_Symmetric(t *testing.T) {
	interp, err := RdBu()
	require.NoError(t, err)
	s := NewDiverging([]float64{-1200, 300}, interp)

	assert.Equal(t, []float64{-1200, 0, 1200}, s.Domain())
	assert.Equal(t, 0.0, s.T(-1200))
	assert.Equal(t, 0.5, s.T(0))
	assert.Equal(t, 0.625, s.T(300))

	// Zero change sits on the neutral midpoint.
	assert.Equal(t, "#f7f7f7", s.Color(0))
}

func TestDiverging_PositiveAboveMidpoint(t *testing.T) {
	interp, err := RdBu()
	require.NoError(t, err)
	s := NewDiverging([]float64{-500, 54600}, interp)

	assert.Greater(t, s.T(54600), 0.5)
	assert.Less(t, s.T(-500), 0.5)
	assert.Equal(t, s.Color(54600), s.Color(54600))
}

func TestDiverging_AllZero(t *testing.T) {
	interp, err := RdBu()
	require.NoError(t, err)
	s := NewDiverging([]float64{0, 0}, interp)
	assert.Equal(t, 0.5, s.T(0))
}

func TestSequential_Plasma(t *testing.T) {
	s := NewSequential([]float64{0.4, 0.5, 0.6}, Plasma())

	assert.Equal(t, "#0d0887", s.Color(0.4))
	assert.Equal(t, "#cc4778", s.Color(0.5))
	assert.Equal(t, "#f0f921", s.Color(0.6))
	assert.Equal(t, []float64{0.4, 0.6}, s.Domain())
}

func TestRamp(t *testing.T) {
	r := Ramp([]color.Color{color.RGBA{A: 0xff}, color.RGBA{R: 100, A: 0xff}, color.RGBA{R: 200, A: 0xff}})
	assert.Equal(t, uint8(50), r(0.25).R)
	assert.Equal(t, uint8(200), r(1).R)
	assert.Equal(t, uint8(0), r(-3).R)

	assert.Equal(t, color.RGBA{A: 0xff}, Ramp(nil)(0.5))
}
