package main

import (
	"flag"
	"fmt"
	"log/slog"
	"math/rand"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
	"github.com/jhartl/cpuleds/logging"
	"github.com/jhartl/cpuleds/platform"
	"github.com/jhartl/cpuleds/stats"
	"github.com/jhartl/cpuleds/util"
)

func main() {
	cfile := flag.String("config", config.CONFILE, "Path to the config file")
	tuimode := flag.Bool("tui", false, "Simulate the strip in the terminal instead of driving real hardware")
	flag.Parse()

	os.Exit(run(*cfile, *tuimode))
}

func run(cfile string, tuimode bool) int {
	conf, err := config.ReadConfig(cfile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "cpuleds: %v\n", err)
		return 1
	}

	// In TUI mode log output is buffered until the log pane exists.
	if err := logging.Init(tuimode, conf.Logging); err != nil {
		fmt.Fprintf(os.Stderr, "cpuleds: can't initialise logging: %v\n", err)
		return 1
	}
	defer logging.Close()

	ossignal := make(chan os.Signal, 2)
	signal.Notify(ossignal, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)

	statsEvent := util.NewAtomicEvent[animation.FrameStats]()

	var plt platform.Platform
	if tuimode {
		plt = platform.NewTUIPlatform(conf, ossignal, statsEvent)
	} else {
		plt = platform.NewSPIPlatform(conf)
	}

	if err := plt.Start(); err != nil {
		slog.Error("Platform initialisation failed - check that the SPI bus is enabled and the device path is correct",
			"error", err)
		return 1
	}
	defer plt.Stop()

	// The TUI platform reports a failed event-loop start through the
	// signal channel, so the wait for readiness must watch both.
ready:
	for {
		select {
		case <-plt.Ready():
			break ready
		case sig := <-ossignal:
			if sig == syscall.SIGHUP {
				continue
			}
			slog.Info("Interrupted before the display became ready", "signal", sig)
			return 1
		}
	}

	source, err := stats.NewCPUSource()
	if err != nil {
		slog.Error("CPU sampling unavailable", "error", err)
		return 1
	}

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	renderer := animation.NewRenderer(conf.Hardware.LedsTotal, conf.Animation, rng, animation.NewNightDimmer(conf.NightDim))

	watcher := watchConfig(cfile)
	if watcher != nil {
		defer watcher.Close()
	}

	ticker := time.NewTicker(conf.Animation.UpdateDelay)
	defer ticker.Stop()

	if conf.Boot.Enabled {
		slog.Info("Running boot animation")
		code, done, pending := playBoot(plt, conf, ossignal)
		if done {
			return code
		}
		if pending {
			reload(cfile, renderer, ticker)
		}
	}

	slog.Info("Displaying CPU utilization",
		"leds", conf.Hardware.LedsTotal, "delay", conf.Animation.UpdateDelay)

	for {
		select {
		case sig := <-ossignal:
			if sig == syscall.SIGHUP {
				reload(cfile, renderer, ticker)
				continue
			}
			slog.Info("Shutting down", "signal", sig)
			return 0
		case event := <-watcherEvents(watcher):
			if filepath.Base(event.Name) == filepath.Base(cfile) &&
				(event.Op.Has(fsnotify.Write) || event.Op.Has(fsnotify.Create)) {
				reload(cfile, renderer, ticker)
			}
		case err := <-watcherErrors(watcher):
			slog.Warn("Config watcher error", "error", err)
		case <-ticker.C:
			sample, err := source.Sample()
			if err != nil {
				slog.Error("CPU sampling failed", "error", err)
				return 1
			}
			leds, st := renderer.Frame(time.Now(), sample)
			if err := plt.DisplayLeds(leds); err != nil {
				slog.Error("Display write failed", "error", err)
				return 1
			}
			statsEvent.Send(st)
		}
	}
}

// playBoot plays the startup animation frame by frame. A termination
// signal or a write failure aborts it; done reports whether run should
// exit with the given code. A SIGHUP does not interrupt the animation;
// it is remembered and reported so the caller can reload afterwards.
func playBoot(plt platform.Platform, conf *config.Config, ossignal chan os.Signal) (code int, done bool, reloadPending bool) {
	frames := animation.BootFrames(conf.Hardware.LedsTotal, conf.Animation.BrightnessFactor)
	ticker := time.NewTicker(conf.Boot.Delay)
	defer ticker.Stop()

	for _, frame := range frames {
	wait:
		for {
			select {
			case sig := <-ossignal:
				if sig == syscall.SIGHUP {
					// Reloads wait until the animation is over.
					reloadPending = true
					continue
				}
				slog.Info("Interrupted during boot animation", "signal", sig)
				return 0, true, false
			case <-ticker.C:
				if err := plt.DisplayLeds(frame); err != nil {
					slog.Error("Display write failed during boot animation", "error", err)
					return 1, true, false
				}
				break wait
			}
		}
	}
	return 0, false, reloadPending
}

// reload re-reads the config file and swaps the animation tunables into
// the running renderer. Hardware settings are ignored here; they need a
// restart.
func reload(cfile string, renderer *animation.Renderer, ticker *time.Ticker) {
	conf, err := config.ReadConfig(cfile)
	if err != nil {
		slog.Error("Config reload failed, keeping current settings", "error", err)
		return
	}
	renderer.Apply(conf.Animation)
	renderer.SetDimmer(animation.NewNightDimmer(conf.NightDim))
	ticker.Reset(conf.Animation.UpdateDelay)
	slog.Info("Configuration reloaded", "file", cfile)
}

// watchConfig watches the config file's directory for changes. A failure
// only disables hot reload, it never stops the display.
func watchConfig(cfile string) *fsnotify.Watcher {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Warn("Can't create config watcher, hot reload disabled", "error", err)
		return nil
	}
	// Watch the directory: editors typically replace the file on save.
	if err := watcher.Add(filepath.Dir(cfile)); err != nil {
		slog.Warn("Can't watch config directory, hot reload disabled", "error", err)
		watcher.Close()
		return nil
	}
	return watcher
}

func watcherEvents(w *fsnotify.Watcher) <-chan fsnotify.Event {
	if w == nil {
		return nil
	}
	return w.Events
}

func watcherErrors(w *fsnotify.Watcher) <-chan error {
	if w == nil {
		return nil
	}
	return w.Errors
}
