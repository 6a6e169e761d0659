package platform

import (
	"github.com/jhartl/cpuleds/animation"
)

// Platform abstracts the output device: the real SPI-attached LED strip or
// the TUI simulation. The animation core renders against this interface
// and never sees transport or color-order details.
type Platform interface {
	// Start initializes the platform (e.g., opens the SPI bus, or starts
	// the TUI).
	Start() error

	// Stop cleans up all platform resources. On hardware this blanks the
	// strip before closing the bus.
	Stop()

	// DisplayLeds pushes the complete state of all LEDs to the output
	// device. A returned error means the device is unusable; callers
	// terminate, they do not retry.
	DisplayLeds(leds []animation.Led) error

	// Ready returns a channel that is closed once the platform can accept
	// frames and log output.
	Ready() <-chan bool
}
