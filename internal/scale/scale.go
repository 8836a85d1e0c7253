package scale

import (
	"math"
)

// Scale maps a value to a hex color.
type Scale interface {
	Color(v float64) string
	Domain() []float64
}

// Extent returns the min and max of values. ok is false when values is
// empty.
func Extent(values []float64) (lo, hi float64, ok bool) {
	for _, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if !ok {
			lo, hi, ok = v, v, true
			continue
		}
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return lo, hi, ok
}

// MaxAbs returns max(|lo|, |hi|) of the extent, the half-width of a
// symmetric diverging domain.
func MaxAbs(values []float64) float64 {
	lo, hi, ok := Extent(values)
	if !ok {
		return 0
	}
	return math.Max(math.Abs(lo), math.Abs(hi))
}

// Linear maps [Lo, Hi] onto an interpolator. A degenerate domain maps every
// value to the midpoint.
type Linear struct {
	Lo, Hi float64
	Interp Interpolator
}

// NewLinear returns a Linear scale over the extent of values.
func NewLinear(values []float64, interp Interpolator) *Linear {
	lo, hi, _ := Extent(values)
	return &Linear{Lo: lo, Hi: hi, Interp: interp}
}

// T normalizes v into [0, 1].
func (s *Linear) T(v float64) float64 {
	if s.Hi == s.Lo {
		return 0.5
	}
	return clamp01((v - s.Lo) / (s.Hi - s.Lo))
}

func (s *Linear) Color(v float64) string {
	return Hex(s.Interp(s.T(v)))
}

func (s *Linear) Domain() []float64 {
	return []float64{s.Lo, s.Hi}
}

// Sequential is a Linear scale whose interpolator is a multi-stop ramp.
type Sequential struct {
	Linear
}

// NewSequential returns a Sequential scale over the extent of values.
func NewSequential(values []float64, interp Interpolator) *Sequential {
	return &Sequential{Linear: *NewLinear(values, interp)}
}

// Diverging maps [-Max, 0, +Max] onto [0, 0.5, 1].
type Diverging struct {
	Max    float64
	Interp Interpolator
}

// NewDiverging returns a Diverging scale symmetric about zero that covers
// every value.
func NewDiverging(values []float64, interp Interpolator) *Diverging {
	return &Diverging{Max: MaxAbs(values), Interp: interp}
}

// T normalizes v into [0, 1] with zero at 0.5.
func (s *Diverging) T(v float64) float64 {
	if s.Max == 0 {
		return 0.5
	}
	return clamp01(0.5 + v/(2*s.Max))
}

func (s *Diverging) Color(v float64) string {
	return Hex(s.Interp(s.T(v)))
}

func (s *Diverging) Domain() []float64 {
	return []float64{-s.Max, 0, s.Max}
}
