package animation

import "math"

// Per-LED phase offset so the wave travels along the strip.
const phaseStepPerLed = 0.16

// Modulate computes the scan modulation multiplier for one LED. The result
// is centered around 1.0; its amplitude grows with utilization so the wave
// is subtle when the machine idles and pronounced under load. The sinusoid
// is squared to sharpen the crest into a narrower blip.
//
// The multiplier is not clamped here. Callers clamp the resulting
// brightness downstream.
func Modulate(index int, phase float64, utilPercent float64) float64 {
	utilNorm := math.Max(0.0, math.Min(1.0, utilPercent/100.0))

	p := math.Mod(phase+float64(index)*phaseStepPerLed, 1.0)
	s := (math.Sin(p*2*math.Pi) + 1) / 2
	s = s * s

	strength := 0.6 + 1.4*math.Pow(utilNorm, 1.2)

	return 1.0 + strength*(s-0.5)
}
