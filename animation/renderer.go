package animation

import (
	"math"
	"math/rand"
	"time"

	"github.com/jhartl/cpuleds/config"
)

const (
	jitterDecay    = 0.5
	idleGlowMinCPU = 3.0
	idleGlowBase   = 0.1
	idleGlowJitter = 0.05
	idleGlowMax    = 0.15
	peakEpsilon    = 1e-6
	peakMinLevel   = 1.1
	blinkDimFactor = 0.15
	maxBrightness  = 2.0
)

// State is the animation memory carried from one frame to the next.
type State struct {
	Smoothed  float64
	Peak      float64
	WavePhase float64
	Jitter    []float64
}

// FrameStats is a per-frame snapshot published for observers, e.g. the
// stats pane of the TUI platform.
type FrameStats struct {
	Raw        float64
	Smoothed   float64
	Peak       float64
	TargetLeds float64
	BlinkOn    bool
	Brightness float64
}

// Renderer turns a stream of CPU utilization samples into per-LED colors:
// a left-to-right bar over the positional color gradient, with a jittering
// frontier LED, a decaying peak-hold marker, a traveling scan wave and a
// blinking last LED. All randomness comes from the injected rng and the
// blink clock is the timestamp passed into Frame, so frames are fully
// deterministic in tests.
type Renderer struct {
	numLeds int
	cfg     config.AnimationConfig
	rng     *rand.Rand
	dimmer  *NightDimmer
	state   State
	leds    []Led
}

func NewRenderer(numLeds int, cfg config.AnimationConfig, rng *rand.Rand, dimmer *NightDimmer) *Renderer {
	return &Renderer{
		numLeds: numLeds,
		cfg:     cfg,
		rng:     rng,
		dimmer:  dimmer,
		state: State{
			Jitter: make([]float64, numLeds),
		},
		leds: make([]Led, numLeds),
	}
}

// Apply swaps the animation tunables, e.g. after a config reload. The
// animation state carries over so the bar does not jump.
func (r *Renderer) Apply(cfg config.AnimationConfig) {
	r.cfg = cfg
}

// SetDimmer replaces the night dimmer, e.g. after a config reload. A nil
// dimmer disables dimming.
func (r *Renderer) SetDimmer(dimmer *NightDimmer) {
	r.dimmer = dimmer
}

// State returns a copy of the current animation state.
func (r *Renderer) State() State {
	st := r.state
	st.Jitter = make([]float64, len(r.state.Jitter))
	copy(st.Jitter, r.state.Jitter)
	return st
}

// Frame renders one frame from a fresh utilization sample taken at now.
// The returned slice is owned by the renderer and valid until the next
// call.
func (r *Renderer) Frame(now time.Time, utilPercent float64) ([]Led, FrameStats) {
	st := &r.state

	// Square-wave blink gate for the last LED.
	seconds := float64(now.UnixNano()) / float64(time.Second)
	blinkOn := math.Sin(2*math.Pi*r.cfg.BlinkFreq*seconds) > 0

	// Exponential smoothing of the raw sample.
	st.Smoothed = st.Smoothed*(1-r.cfg.SmoothingFactor) + utilPercent*r.cfg.SmoothingFactor

	// Continuous fill level, in LEDs.
	targetLeds := st.Smoothed / 100.0 * float64(r.numLeds)

	// Peak hold with per-frame decay.
	if st.Smoothed > st.Peak {
		st.Peak = st.Smoothed
	} else {
		st.Peak = math.Max(0, st.Peak-r.cfg.PeakDecayPerFrame)
	}
	peakLed := -1
	if st.Peak > 0 {
		peakPos := st.Peak / 100.0 * float64(r.numLeds)
		peakLed = int(math.Max(0, math.Min(float64(r.numLeds-1), peakPos-peakEpsilon)))
	}

	// Decaying random walk, updated for every LED every frame so the
	// sequence does not depend on the current fill level.
	for i := range st.Jitter {
		st.Jitter[i] = st.Jitter[i]*jitterDecay + (r.rng.Float64()*2-1)*r.cfg.JitterIntensity
	}

	factor := r.cfg.BrightnessFactor * r.dimmer.Factor(now)

	full := int(targetLeds)
	for i := 0; i < r.numLeds; i++ {
		brightness := 0.0
		if i < full {
			brightness = 1.0
		} else if i == full {
			// Frontier LED: fractional fill plus jitter.
			frac := targetLeds - float64(full)
			brightness = math.Max(0, math.Min(1, frac+st.Jitter[i]))
		}

		// Faint glow on the LED just past the bar for a more "data" look.
		if brightness == 0 && i == full+1 && st.Smoothed > idleGlowMinCPU {
			brightness = math.Max(0, math.Min(idleGlowMax, idleGlowBase+idleGlowJitter*st.Jitter[i]))
		}

		brightness *= Modulate(i, st.WavePhase, st.Smoothed)

		// Peak marker keeps the LED's own color, just brighter.
		if i == peakLed {
			brightness = math.Max(brightness, peakMinLevel)
		}

		// Blink the last LED when active. Never fully off, so it stays
		// visible as present-but-blinking.
		if i == r.numLeds-1 && brightness > 0 && !blinkOn {
			brightness *= blinkDimFactor
		}

		brightness = math.Max(0, math.Min(maxBrightness, brightness))

		r.leds[i] = ColorForPosition(i, r.numLeds).Scale(brightness * factor)
	}

	// Advance the scan position for the next frame.
	st.WavePhase = math.Mod(st.WavePhase+r.cfg.UpdateDelay.Seconds()/r.cfg.WaveSpeed.Seconds(), 1.0)

	return r.leds, FrameStats{
		Raw:        utilPercent,
		Smoothed:   st.Smoothed,
		Peak:       st.Peak,
		TargetLeds: targetLeds,
		BlinkOn:    blinkOn,
		Brightness: factor,
	}
}
