package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const CONFILE = "config.yml"

// HardwareConfig describes the LED strip wiring. Changes here require a
// process restart; hot reload only touches the animation sections.
type HardwareConfig struct {
	LedsTotal        int       `yaml:"LedsTotal"`
	LEDType          string    `yaml:"LEDType"`
	ColorOrder       string    `yaml:"ColorOrder"`
	Transport        string    `yaml:"Transport"`
	SPIDevice        string    `yaml:"SPIDevice"`
	SPIFrequency     int64     `yaml:"SPIFrequency"`
	ColorCorrection  []float64 `yaml:"ColorCorrection"`
	APA102Brightness int       `yaml:"APA102Brightness"`
}

// AnimationConfig holds the tunables of the CPU bar renderer. All of them
// may be changed at runtime via SIGHUP or a config file write.
type AnimationConfig struct {
	BrightnessFactor  float64       `yaml:"BrightnessFactor"`
	UpdateDelay       time.Duration `yaml:"UpdateDelay"`
	SmoothingFactor   float64       `yaml:"SmoothingFactor"`
	JitterIntensity   float64       `yaml:"JitterIntensity"`
	WaveSpeed         time.Duration `yaml:"WaveSpeed"`
	PeakDecayPerFrame float64       `yaml:"PeakDecayPerFrame"`
	BlinkFreq         float64       `yaml:"BlinkFreq"`
}

type BootConfig struct {
	Enabled bool          `yaml:"Enabled"`
	Delay   time.Duration `yaml:"Delay"`
}

// NightDimConfig reduces the global brightness between sunset and sunrise
// at the given coordinates.
type NightDimConfig struct {
	Enabled   bool    `yaml:"Enabled"`
	Latitude  float64 `yaml:"Latitude"`
	Longitude float64 `yaml:"Longitude"`
	Factor    float64 `yaml:"Factor"`
}

type LoggingConfig struct {
	Level  string `yaml:"Level"`
	Format string `yaml:"Format"`
	File   string `yaml:"File"`
}

type Config struct {
	Hardware  HardwareConfig  `yaml:"Hardware"`
	Animation AnimationConfig `yaml:"Animation"`
	Boot      BootConfig      `yaml:"Boot"`
	NightDim  NightDimConfig  `yaml:"NightDim"`
	Logging   LoggingConfig   `yaml:"Logging"`
}

// NewConfig returns a Config populated with the built-in defaults: an 8 LED
// WS2812 strip on /dev/spidev0.0 and the animation constants the display
// was tuned with.
func NewConfig() *Config {
	return &Config{
		Hardware: HardwareConfig{
			LedsTotal:        8,
			LEDType:          "WS2812",
			ColorOrder:       "GRB",
			Transport:        "periph",
			SPIDevice:        "/dev/spidev0.0",
			SPIFrequency:     2400000,
			ColorCorrection:  []float64{1.0, 1.0, 1.0},
			APA102Brightness: 31,
		},
		Animation: AnimationConfig{
			BrightnessFactor:  0.15,
			UpdateDelay:       80 * time.Millisecond,
			SmoothingFactor:   0.3,
			JitterIntensity:   0.12,
			WaveSpeed:         900 * time.Millisecond,
			PeakDecayPerFrame: 2.0,
			BlinkFreq:         2.0,
		},
		Boot: BootConfig{
			Enabled: true,
			Delay:   200 * time.Millisecond,
		},
		NightDim: NightDimConfig{
			Enabled: false,
			Factor:  0.4,
		},
		Logging: LoggingConfig{
			Level:  "INFO",
			Format: "text",
		},
	}
}

// ReadConfig reads and validates the config file at cfile. Missing keys keep
// their default values.
func ReadConfig(cfile string) (*Config, error) {
	f, err := os.Open(cfile)
	if err != nil {
		return nil, fmt.Errorf("can't open config file %s: %w", cfile, err)
	}
	defer f.Close()

	conf := NewConfig()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(conf); err != nil {
		return nil, fmt.Errorf("can't decode config file %s: %w", cfile, err)
	}

	if err := conf.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", cfile, err)
	}
	return conf, nil
}

// Validate checks all sections for values the renderer or the platform
// layer cannot work with.
func (c *Config) Validate() error {
	if c.Hardware.LedsTotal <= 0 {
		return fmt.Errorf("Hardware.LedsTotal must be positive, got %d", c.Hardware.LedsTotal)
	}
	if c.Hardware.SPIFrequency <= 0 {
		return fmt.Errorf("Hardware.SPIFrequency must be positive, got %d", c.Hardware.SPIFrequency)
	}
	if len(c.Hardware.ColorCorrection) != 3 {
		return fmt.Errorf("Hardware.ColorCorrection must have exactly 3 values, got %d", len(c.Hardware.ColorCorrection))
	}
	if c.Hardware.APA102Brightness < 0 || c.Hardware.APA102Brightness > 31 {
		return fmt.Errorf("Hardware.APA102Brightness must be in [0,31], got %d", c.Hardware.APA102Brightness)
	}
	if err := validateColorOrder(c.Hardware.ColorOrder); err != nil {
		return err
	}

	anim := &c.Animation
	if anim.BrightnessFactor <= 0 || anim.BrightnessFactor > 1 {
		return fmt.Errorf("Animation.BrightnessFactor must be in (0,1], got %g", anim.BrightnessFactor)
	}
	if anim.SmoothingFactor <= 0 || anim.SmoothingFactor >= 1 {
		return fmt.Errorf("Animation.SmoothingFactor must be in (0,1), got %g", anim.SmoothingFactor)
	}
	if anim.JitterIntensity < 0 || anim.JitterIntensity > 1 {
		return fmt.Errorf("Animation.JitterIntensity must be in [0,1], got %g", anim.JitterIntensity)
	}
	if anim.UpdateDelay <= 0 {
		return fmt.Errorf("Animation.UpdateDelay must be positive, got %v", anim.UpdateDelay)
	}
	if anim.WaveSpeed <= 0 {
		return fmt.Errorf("Animation.WaveSpeed must be positive, got %v", anim.WaveSpeed)
	}
	if anim.PeakDecayPerFrame < 0 {
		return fmt.Errorf("Animation.PeakDecayPerFrame must not be negative, got %g", anim.PeakDecayPerFrame)
	}
	if anim.BlinkFreq <= 0 {
		return fmt.Errorf("Animation.BlinkFreq must be positive, got %g", anim.BlinkFreq)
	}

	if c.Boot.Enabled && c.Boot.Delay <= 0 {
		return fmt.Errorf("Boot.Delay must be positive, got %v", c.Boot.Delay)
	}

	nd := &c.NightDim
	if nd.Enabled {
		if nd.Latitude < -90 || nd.Latitude > 90 {
			return fmt.Errorf("NightDim.Latitude must be in [-90,90], got %g", nd.Latitude)
		}
		if nd.Longitude < -180 || nd.Longitude > 180 {
			return fmt.Errorf("NightDim.Longitude must be in [-180,180], got %g", nd.Longitude)
		}
		if nd.Factor <= 0 || nd.Factor > 1 {
			return fmt.Errorf("NightDim.Factor must be in (0,1], got %g", nd.Factor)
		}
	}
	return nil
}

// validateColorOrder accepts any permutation of the characters R, G and B.
func validateColorOrder(order string) error {
	if len(order) != 3 {
		return fmt.Errorf("Hardware.ColorOrder must be a permutation of RGB, got %q", order)
	}
	seen := map[rune]bool{}
	for _, r := range order {
		if (r != 'R' && r != 'G' && r != 'B') || seen[r] {
			return fmt.Errorf("Hardware.ColorOrder must be a permutation of RGB, got %q", order)
		}
		seen[r] = true
	}
	return nil
}
