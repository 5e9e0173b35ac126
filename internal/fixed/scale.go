// Package fixed converts between float weights and the fixed-point integers
// the execution target stores.
//
// Two scales are in use. Q32 multiplies by 2^32 and is the default; E18
// multiplies by 1e18 and is kept for targets deployed with the legacy
// encoding. A model must be encoded with exactly one scale, and the caller
// must know which one the consuming target expects.
package fixed

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// ErrOverflow is returned when a scaled value does not fit in an int64.
var ErrOverflow = errors.New("fixed-point value overflows int64")

// Scale selects a fixed-point scale factor.
type Scale int

// Supported scales.
const (
	Q32 Scale = iota // 2^32
	E18              // 1e18 (legacy)
)

// Factor returns the multiplier applied to real values.
func (s Scale) Factor() float64 {
	switch s {
	case Q32:
		return 1 << 32
	case E18:
		return 1e18
	default:
		panic(fmt.Sprintf("fixed: unknown scale %d", int(s)))
	}
}

// String returns the scale's configuration name.
func (s Scale) String() string {
	switch s {
	case Q32:
		return "q32"
	case E18:
		return "e18"
	default:
		return "unknown"
	}
}

// ParseScale parses "q32" or "e18" (case-insensitive).
func ParseScale(name string) (Scale, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "q32", "":
		return Q32, nil
	case "e18":
		return E18, nil
	default:
		return 0, fmt.Errorf("unknown fixed-point scale %q (want q32 or e18)", name)
	}
}

// ToFixed returns trunc(v * factor).
func (s Scale) ToFixed(v float64) (int64, error) {
	scaled := math.Trunc(v * s.Factor())
	// 2^63 is exactly representable; anything at or beyond it overflows.
	if math.IsNaN(scaled) || scaled >= math.MaxInt64 || scaled < math.MinInt64 {
		return 0, fmt.Errorf("%w: %g at scale %s", ErrOverflow, v, s)
	}
	return int64(scaled), nil
}

// FromFixed converts a fixed-point integer back to a real value.
func (s Scale) FromFixed(v int64) float64 {
	return float64(v) / s.Factor()
}

// Encode converts a slice of float32 weights to fixed-point.
func (s Scale) Encode(values []float32) ([]int64, error) {
	out := make([]int64, len(values))
	for i, v := range values {
		f, err := s.ToFixed(float64(v))
		if err != nil {
			return nil, fmt.Errorf("scalar %d: %w", i, err)
		}
		out[i] = f
	}
	return out, nil
}

// Decode converts fixed-point integers back to real values.
func (s Scale) Decode(values []int64) []float64 {
	out := make([]float64, len(values))
	for i, v := range values {
		out[i] = s.FromFixed(v)
	}
	return out
}
