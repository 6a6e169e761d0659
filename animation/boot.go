package animation

// Boot animation colors, alternating along the strip.
var (
	bootOrange = Led{Red: 255, Green: 165, Blue: 0}
	bootBlue   = Led{Red: 0, Green: 0, Blue: 255}
)

// Boot fill runs at double the nominal brightness; already filled LEDs
// fall back to a fixed dim level.
const (
	bootBoostFactor = 2.0
	bootDimLevel    = 0.05
)

// BootFrames generates the startup animation: a progressive fill with
// alternating orange/blue where previously filled LEDs fade into a dim
// background, followed by a reverse wipe back to a dark strip. It returns
// exactly 2*numLeds frames; the caller plays them through the display with
// the configured boot delay between steps.
func BootFrames(numLeds int, brightnessFactor float64) [][]Led {
	frames := make([][]Led, 0, 2*numLeds)

	bootColor := func(i int) Led {
		if i%2 == 0 {
			return bootOrange
		}
		return bootBlue
	}

	// Phase 1: fill. The newest LED is bright, everything before it dim.
	for i := 0; i < numLeds; i++ {
		frame := make([]Led, numLeds)
		for j := 0; j < i; j++ {
			frame[j] = bootColor(j).Scale(bootDimLevel)
		}
		frame[i] = bootColor(i).Scale(brightnessFactor * bootBoostFactor)
		frames = append(frames, frame)
	}

	// Phase 2: wipe from the far end, leaving the strip dark.
	for i := numLeds - 1; i >= 0; i-- {
		frame := make([]Led, numLeds)
		for j := 0; j < i; j++ {
			frame[j] = bootColor(j).Scale(bootDimLevel)
		}
		frames = append(frames, frame)
	}

	return frames
}
