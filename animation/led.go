package animation

import "math"

// Led holds one pixel as float64 channels in [0,255]. Keeping floats here
// avoids rounding until the platform layer frames the strip data.
type Led struct {
	Red   float64
	Green float64
	Blue  float64
}

// True if all components are zero, false otherwise
func (s Led) IsEmpty() bool {
	return s.Red == 0 && s.Green == 0 && s.Blue == 0
}

// Scale multiplies all channels by factor and clamps them to [0,255].
func (s Led) Scale(factor float64) Led {
	return Led{
		Red:   clampChannel(s.Red * factor),
		Green: clampChannel(s.Green * factor),
		Blue:  clampChannel(s.Blue * factor),
	}
}

func clampChannel(v float64) float64 {
	return math.Max(0, math.Min(255, v))
}
