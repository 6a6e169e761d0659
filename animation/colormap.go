package animation

// Base colors of the four utilization zones, low to high.
var (
	zoneGreen  = Led{Red: 0, Green: 255, Blue: 0}
	zoneYellow = Led{Red: 255, Green: 255, Blue: 0}
	zoneOrange = Led{Red: 255, Green: 165, Blue: 0}
	zoneRed    = Led{Red: 255, Green: 0, Blue: 0}
)

// ColorForPosition maps an LED index to its base color. The strip is split
// into four contiguous zones green/yellow/orange/red of proportional width,
// so strips whose length is not divisible by four still get a sensible
// gradient.
func ColorForPosition(index int, numLeds int) Led {
	switch {
	case index < numLeds/4:
		return zoneGreen
	case index < numLeds/2:
		return zoneYellow
	case index < 3*numLeds/4:
		return zoneOrange
	default:
		return zoneRed
	}
}
