package platform

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
	"github.com/jhartl/cpuleds/util"
)

func TestScaledColor(t *testing.T) {
	// Colors are normalized to full saturation; hue is preserved.
	assert.Equal(t, "[#ff0000]", scaledColor(animation.Led{Red: 10}))
	assert.Equal(t, "[#00ff00]", scaledColor(animation.Led{Green: 200}))
	assert.Equal(t, "[#ffff00]", scaledColor(animation.Led{Red: 42, Green: 42}))
	assert.Equal(t, "[#ff8000]", scaledColor(animation.Led{Red: 100, Green: 50.2}))
	assert.Equal(t, "[#000000]", scaledColor(animation.Led{}))
}

func TestSparklineTracksHistory(t *testing.T) {
	plt := NewTUIPlatform(config.NewConfig(), make(chan os.Signal, 1), util.NewAtomicEvent[animation.FrameStats]())

	plt.history.PushBack(0)
	plt.history.PushBack(50)
	plt.history.PushBack(100)

	line := plt.sparkline()
	assert.Contains(t, line, "▁")
	assert.Contains(t, line, "▅")
	assert.Contains(t, line, "█")
}

func TestIntroTextShowsStats(t *testing.T) {
	plt := NewTUIPlatform(config.NewConfig(), make(chan os.Signal, 1), util.NewAtomicEvent[animation.FrameStats]())

	text := plt.introText(animation.FrameStats{Raw: 42.5, Smoothed: 37.1, Peak: 80.0})
	assert.Contains(t, text, "42.5%")
	assert.Contains(t, text, "37.1%")
	assert.Contains(t, text, "80.0%")
}
