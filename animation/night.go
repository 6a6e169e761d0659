package animation

import (
	"time"

	"github.com/nathan-osman/go-sunrise"

	"github.com/jhartl/cpuleds/config"
)

// NightDimmer scales the global brightness down between sunset and sunrise
// at a configured location, so the strip does not light up a dark room at
// full force. A nil NightDimmer never dims.
type NightDimmer struct {
	latitude  float64
	longitude float64
	factor    float64
}

// NewNightDimmer returns a dimmer for the given config, or nil when night
// dimming is disabled.
func NewNightDimmer(conf config.NightDimConfig) *NightDimmer {
	if !conf.Enabled {
		return nil
	}
	return &NightDimmer{
		latitude:  conf.Latitude,
		longitude: conf.Longitude,
		factor:    conf.Factor,
	}
}

// Factor returns the brightness multiplier for the given wall-clock time:
// 1.0 during the day, the configured night factor between sunset and
// sunrise.
func (d *NightDimmer) Factor(now time.Time) float64 {
	if d == nil {
		return 1.0
	}
	utc := now.UTC()
	rise, set := sunrise.SunriseSunset(d.latitude, d.longitude, utc.Year(), utc.Month(), utc.Day())
	if utc.Before(rise) || utc.After(set) {
		return d.factor
	}
	return 1.0
}
