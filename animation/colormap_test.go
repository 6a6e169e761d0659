package animation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorForPositionEightLeds(t *testing.T) {
	expected := []Led{
		zoneGreen, zoneGreen,
		zoneYellow, zoneYellow,
		zoneOrange, zoneOrange,
		zoneRed, zoneRed,
	}
	for i, want := range expected {
		assert.Equal(t, want, ColorForPosition(i, 8), "led %d", i)
	}
}

func TestColorForPositionProportionalZones(t *testing.T) {
	// Strip length not divisible by four: boundaries are proportional.
	for i := 0; i < 10; i++ {
		got := ColorForPosition(i, 10)
		switch {
		case i < 2:
			assert.Equal(t, zoneGreen, got, "led %d", i)
		case i < 5:
			assert.Equal(t, zoneYellow, got, "led %d", i)
		case i < 7:
			assert.Equal(t, zoneOrange, got, "led %d", i)
		default:
			assert.Equal(t, zoneRed, got, "led %d", i)
		}
	}
}

func TestColorForPositionSingleLed(t *testing.T) {
	assert.Equal(t, zoneRed, ColorForPosition(0, 1))
}
