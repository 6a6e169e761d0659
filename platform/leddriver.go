package platform

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"golang.org/x/exp/maps"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
)

// ledDriver turns a strip state into the byte stream a particular LED chip
// expects on the wire.
type ledDriver interface {
	frame(leds []animation.Led) []byte
}

var ledDriverFactories = map[string]func(conf config.HardwareConfig) (ledDriver, error){
	"WS2812": newWs2812Driver,
	"WS2801": newWs2801Driver,
	"APA102": newApa102Driver,
}

func newLedDriver(conf config.HardwareConfig) (ledDriver, error) {
	factory, ok := ledDriverFactories[strings.ToUpper(conf.LEDType)]
	if !ok {
		known := maps.Keys(ledDriverFactories)
		sort.Strings(known)
		return nil, fmt.Errorf("unknown LED type %q (supported: %s)", conf.LEDType, strings.Join(known, ", "))
	}
	return factory(conf)
}

func corrByte(value float64, corr float64) byte {
	return byte(math.Min(value*corr, 255))
}

// ws2812Driver frames for WS2812/NeoPixel strips driven over plain SPI
// MOSI: every data bit is stretched to three SPI bits (1 -> 110, 0 -> 100)
// so that at 2.4 MHz the line timing matches the chip's 800 kHz protocol.
// The frame ends with a stretch of zero bytes to latch the strip.
type ws2812Driver struct {
	colorCorrection []float64
	order           [3]int
	buffer          []byte
}

// Zero level held after the data to latch; 48 bytes is 160us at 2.4MHz.
const ws2812LatchBytes = 48

func newWs2812Driver(conf config.HardwareConfig) (ledDriver, error) {
	order, err := colorOrderIndices(conf.ColorOrder)
	if err != nil {
		return nil, err
	}
	return &ws2812Driver{
		colorCorrection: conf.ColorCorrection,
		order:           order,
		buffer:          make([]byte, 9*conf.LedsTotal+ws2812LatchBytes),
	}, nil
}

func (d *ws2812Driver) frame(leds []animation.Led) []byte {
	display := d.buffer[:9*len(leds)+ws2812LatchBytes]

	offset := 0
	for i := range leds {
		channels := [3]byte{
			corrByte(leds[i].Red, d.colorCorrection[0]),
			corrByte(leds[i].Green, d.colorCorrection[1]),
			corrByte(leds[i].Blue, d.colorCorrection[2]),
		}
		for _, ch := range d.order {
			expanded := expandBits(channels[ch])
			copy(display[offset:offset+3], expanded[:])
			offset += 3
		}
	}
	for i := offset; i < len(display); i++ {
		display[i] = 0x00
	}
	return display
}

// expandBits stretches one data byte into its three-for-one SPI encoding,
// MSB first.
func expandBits(b byte) [3]byte {
	var out [3]byte
	pos := 0
	for i := 7; i >= 0; i-- {
		pattern := byte(0b100)
		if b&(1<<uint(i)) != 0 {
			pattern = 0b110
		}
		for j := 2; j >= 0; j-- {
			if pattern&(1<<uint(j)) != 0 {
				out[pos/8] |= 1 << uint(7-pos%8)
			}
			pos++
		}
	}
	return out
}

// colorOrderIndices maps an order string like "GRB" to indices into an
// R,G,B channel triple.
func colorOrderIndices(order string) ([3]int, error) {
	var indices [3]int
	if len(order) != 3 {
		return indices, fmt.Errorf("invalid color order %q", order)
	}
	for i, r := range order {
		switch r {
		case 'R':
			indices[i] = 0
		case 'G':
			indices[i] = 1
		case 'B':
			indices[i] = 2
		default:
			return indices, fmt.Errorf("invalid color order %q", order)
		}
	}
	return indices, nil
}

// ws2801Driver: three raw bytes per LED, clocked out directly.
type ws2801Driver struct {
	colorCorrection []float64
	buffer          []byte
}

func newWs2801Driver(conf config.HardwareConfig) (ledDriver, error) {
	return &ws2801Driver{
		colorCorrection: conf.ColorCorrection,
		buffer:          make([]byte, 3*conf.LedsTotal),
	}, nil
}

func (d *ws2801Driver) frame(leds []animation.Led) []byte {
	display := d.buffer[:3*len(leds)]
	for idx := range leds {
		display[3*idx] = corrByte(leds[idx].Red, d.colorCorrection[0])
		display[3*idx+1] = corrByte(leds[idx].Green, d.colorCorrection[1])
		display[3*idx+2] = corrByte(leds[idx].Blue, d.colorCorrection[2])
	}
	return display
}

// apa102Driver: start frame of four zero bytes, then per LED a global
// brightness byte (top three bits set) followed by blue, green, red, then
// an end frame of 0xFF filler.
type apa102Driver struct {
	colorCorrection []float64
	brightness      byte
	buffer          []byte
}

func newApa102Driver(conf config.HardwareConfig) (ledDriver, error) {
	frameEndLength := (conf.LedsTotal / 16) + 1
	return &apa102Driver{
		colorCorrection: conf.ColorCorrection,
		brightness:      byte(conf.APA102Brightness) | 0xE0,
		buffer:          make([]byte, 4+4*conf.LedsTotal+frameEndLength),
	}, nil
}

func (d *apa102Driver) frame(leds []animation.Led) []byte {
	frameEndLength := (len(leds) / 16) + 1
	requiredSize := 4 + 4*len(leds) + frameEndLength
	display := d.buffer[:requiredSize]

	copy(display[0:4], []byte{0x00, 0x00, 0x00, 0x00})

	offset := 4
	for i := range leds {
		display[offset] = d.brightness
		display[offset+1] = corrByte(leds[i].Blue, d.colorCorrection[2])
		display[offset+2] = corrByte(leds[i].Green, d.colorCorrection[1])
		display[offset+3] = corrByte(leds[i].Red, d.colorCorrection[0])
		offset += 4
	}

	for i := offset; i < requiredSize; i++ {
		display[i] = 0xFF
	}
	return display
}
