package main

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
	"github.com/jhartl/cpuleds/platform"
)

type recordingPlatform struct {
	mu     sync.Mutex
	frames [][]animation.Led
	err    error
	ready  chan bool
}

func newRecordingPlatform() *recordingPlatform {
	ready := make(chan bool)
	close(ready)
	return &recordingPlatform{ready: ready}
}

func (p *recordingPlatform) Start() error       { return nil }
func (p *recordingPlatform) Stop()              {}
func (p *recordingPlatform) Ready() <-chan bool { return p.ready }

func (p *recordingPlatform) DisplayLeds(leds []animation.Led) error {
	if p.err != nil {
		return p.err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	frame := make([]animation.Led, len(leds))
	copy(frame, leds)
	p.frames = append(p.frames, frame)
	return nil
}

var _ platform.Platform = (*recordingPlatform)(nil)

func bootTestConfig() *config.Config {
	conf := config.NewConfig()
	conf.Hardware.LedsTotal = 4
	conf.Boot.Delay = time.Millisecond
	return conf
}

func TestPlayBootDisplaysAllFrames(t *testing.T) {
	plt := newRecordingPlatform()
	ossignal := make(chan os.Signal, 1)

	code, done, pending := playBoot(plt, bootTestConfig(), ossignal)

	assert.False(t, done)
	assert.False(t, pending)
	assert.Equal(t, 0, code)
	// One fill step and one wipe step per LED.
	require.Len(t, plt.frames, 8)
	for i, led := range plt.frames[7] {
		assert.True(t, led.IsEmpty(), "led %d must end dark", i)
	}
}

func TestPlayBootInterrupted(t *testing.T) {
	plt := newRecordingPlatform()
	ossignal := make(chan os.Signal, 1)
	ossignal <- os.Interrupt

	code, done, _ := playBoot(plt, bootTestConfig(), ossignal)

	assert.True(t, done)
	assert.Equal(t, 0, code)
	assert.Empty(t, plt.frames)
}

func TestPlayBootDefersSighupReload(t *testing.T) {
	// A reload request during the boot animation does not interrupt it;
	// it is reported back so the caller applies it afterwards.
	plt := newRecordingPlatform()
	ossignal := make(chan os.Signal, 1)
	ossignal <- syscall.SIGHUP

	_, done, pending := playBoot(plt, bootTestConfig(), ossignal)

	assert.False(t, done)
	assert.True(t, pending)
	assert.Len(t, plt.frames, 8)
}

func TestPlayBootWriteFailure(t *testing.T) {
	plt := newRecordingPlatform()
	plt.err = errors.New("bus gone")
	ossignal := make(chan os.Signal, 1)

	code, done, _ := playBoot(plt, bootTestConfig(), ossignal)

	assert.True(t, done)
	assert.Equal(t, 1, code)
}

func TestRunMissingConfig(t *testing.T) {
	assert.Equal(t, 1, run("/nonexistent/config.yml", false))
}

func TestRunTUIStartFailureExits(t *testing.T) {
	// Without a usable terminal the TUI event loop cannot come up; run
	// must return non-zero instead of waiting for a first draw that
	// never happens.
	t.Setenv("TERM", "")
	cfile := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(cfile, []byte("Boot:\n  Enabled: false\n"), 0o644))

	done := make(chan int, 1)
	go func() { done <- run(cfile, true) }()

	select {
	case code := <-done:
		assert.Equal(t, 1, code)
	case <-time.After(5 * time.Second):
		t.Fatal("run did not return after the TUI failed to start")
	}
}
