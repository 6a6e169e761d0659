package platform

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"strings"
	"sync"
	"syscall"

	"github.com/gammazero/deque"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
	"github.com/jhartl/cpuleds/logging"
	"github.com/jhartl/cpuleds/util"
)

// Number of utilization samples kept for the sparkline.
const historySize = 60

var sparkChars = []rune("▁▂▃▄▅▆▇█")

// TUIPlatform simulates the LED strip in the terminal. Besides the strip
// itself it shows live utilization numbers fed through the stats event and
// adopts the application log stream into its bottom pane.
type TUIPlatform struct {
	conf         *config.Config
	tviewapp     *tview.Application
	intro        *tview.TextView
	ledDisplay   *tview.TextView
	logView      *tview.TextView
	ossignalChan chan os.Signal
	statsEvent   *util.AtomicEvent[animation.FrameStats]
	history      deque.Deque[float64]
	leds         []animation.Led
	ledsMutex    sync.Mutex
	logFlushOnce sync.Once
	readyChan    chan bool
	stopChan     chan struct{}
	stopOnce     sync.Once
}

func NewTUIPlatform(conf *config.Config, ossignalchan chan os.Signal, statsEvent *util.AtomicEvent[animation.FrameStats]) *TUIPlatform {
	return &TUIPlatform{
		conf:         conf,
		ossignalChan: ossignalchan,
		statsEvent:   statsEvent,
		leds:         make([]animation.Led, conf.Hardware.LedsTotal),
		readyChan:    make(chan bool),
		stopChan:     make(chan struct{}),
	}
}

func (s *TUIPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *TUIPlatform) Start() error {
	s.tviewapp = tview.NewApplication()

	// --- Intro / Stats Pane ---
	s.intro = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.intro.SetText(s.introText(animation.FrameStats{}))
	s.intro.SetBorder(true).SetTitle(" CPULEDS Simulation ").SetTitleColor(tcell.ColorLightBlue)
	s.intro.SetBackgroundColor(tcell.NewRGBColor(20, 20, 20))

	// --- LED Strip Pane ---
	s.ledDisplay = tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	s.ledDisplay.SetBorder(true)
	s.ledDisplay.SetBackgroundColor(tcell.NewRGBColor(30, 30, 30))

	// --- Log Pane ---
	s.logView = tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetChangedFunc(func() {
			s.logView.ScrollToEnd()
			s.tviewapp.Draw()
		})
	s.logView.SetBorder(true).SetTitle(" Logs ").SetTitleColor(tcell.ColorLightBlue)
	s.logView.SetBackgroundColor(tcell.NewRGBColor(40, 40, 40))

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(s.intro, 6, 0, false).
		AddItem(s.ledDisplay, 4, 0, false).
		AddItem(s.logView, 0, 1, true)

	// Adopt the buffered log stream once the TUI has drawn itself, not
	// earlier - log lines on the raw terminal would corrupt the screen.
	s.tviewapp.SetAfterDrawFunc(func(screen tcell.Screen) {
		s.logFlushOnce.Do(func() {
			if err := logging.SetOutput(tview.ANSIWriter(s.logView)); err != nil {
				slog.Warn("Could not adopt the log stream into the log pane", "error", err)
			}
			close(s.readyChan)
		})
	})

	s.tviewapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		switch event.Key() {
		case tcell.KeyCtrlC:
			s.tviewapp.Stop()
			s.ossignalChan <- os.Interrupt
			return nil
		case tcell.KeyRune:
			switch string(event.Rune()) {
			case "q", "Q":
				s.ossignalChan <- os.Interrupt
				return nil
			case "r", "R":
				s.ossignalChan <- syscall.SIGHUP
				return nil
			}
		case tcell.KeyUp:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row-1, col)
			return nil
		case tcell.KeyDown:
			row, col := s.logView.GetScrollOffset()
			s.logView.ScrollTo(row+1, col)
			return nil
		}
		return event
	})

	go func() {
		if err := s.tviewapp.SetRoot(layout, true).Run(); err != nil {
			slog.Error("Error running TUI", "error", err)
			s.ossignalChan <- os.Interrupt
		}
	}()

	go s.statsLoop()

	return nil
}

func (s *TUIPlatform) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		if s.tviewapp != nil {
			s.tviewapp.Stop()
		}
	})
}

func (s *TUIPlatform) DisplayLeds(leds []animation.Led) error {
	s.ledsMutex.Lock()
	copy(s.leds, leds)
	s.ledsMutex.Unlock()

	s.tviewapp.QueueUpdateDraw(s.renderStrip)
	return nil
}

// statsLoop consumes frame stats published by the render loop. State is
// only touched inside queued closures, i.e. on the TUI thread.
func (s *TUIPlatform) statsLoop() {
	for {
		select {
		case <-s.stopChan:
			return
		case <-s.statsEvent.Channel():
			st := s.statsEvent.Value()
			s.tviewapp.QueueUpdateDraw(func() {
				if s.history.Len() >= historySize {
					s.history.PopFront()
				}
				s.history.PushBack(st.Smoothed)
				s.intro.SetText(s.introText(st))
			})
		}
	}
}

func (s *TUIPlatform) introText(st animation.FrameStats) string {
	line1 := fmt.Sprintf("CPU [#ffff00]%5.1f%%[white] raw | [#00ff00]%5.1f%%[white] smoothed | [#ff8800]%5.1f%%[white] peak",
		st.Raw, st.Smoothed, st.Peak)
	line2 := s.sparkline()
	line3 := "Hit [#ff0000]q[-] to exit, [#ff0000]r[-] to reload, [#ff0000]Up/Down[-] to scroll logs"
	return fmt.Sprintf("%s\n%s\n%s", line1, line2, line3)
}

// sparkline renders the recent smoothed utilization history as one line of
// block characters.
func (s *TUIPlatform) sparkline() string {
	var buf strings.Builder
	for i := 0; i < s.history.Len(); i++ {
		v := s.history.At(i)
		idx := int(v / 100.0 * float64(len(sparkChars)))
		if idx >= len(sparkChars) {
			idx = len(sparkChars) - 1
		}
		buf.WriteRune(sparkChars[idx])
	}
	return "[#00afff]" + buf.String() + "[-]"
}

// renderStrip redraws the LED pane. Must run on the TUI thread via
// QueueUpdateDraw.
func (s *TUIPlatform) renderStrip() {
	s.ledsMutex.Lock()
	leds := make([]animation.Led, len(s.leds))
	copy(leds, s.leds)
	s.ledsMutex.Unlock()

	var top, bottom strings.Builder
	for _, v := range leds {
		if v.IsEmpty() {
			top.WriteString("  ")
			bottom.WriteString("[#333333]··[-]")
			continue
		}
		value := math.Round((v.Red + v.Green + v.Blue) / 3.0)
		colorStr := scaledColor(v)

		topChar, bottomChar := "  ", "██"
		switch {
		case value <= 6:
			bottomChar = "▂▂"
		case value <= 12:
			bottomChar = "▄▄"
		case value <= 18:
			bottomChar = "▆▆"
		case value <= 40:
			bottomChar = "██"
		default:
			// Overdriven (peak marker or wave crest).
			topChar, bottomChar = "▄▄", "██"
		}
		top.WriteString(colorStr + topChar + "[-]")
		bottom.WriteString(colorStr + bottomChar + "[-]")
	}
	s.ledDisplay.SetText(" " + top.String() + "\n " + bottom.String())
}

// scaledColor maps an Led to a full-saturation tview color tag so even dim
// LEDs stay recognizable on screen; the brightness shows in the bar height
// instead.
func scaledColor(led animation.Led) string {
	maxColor := math.Max(led.Red, math.Max(led.Green, led.Blue))
	if maxColor == 0 {
		return "[#000000]"
	}
	factor := 255 / maxColor
	red := math.Min(led.Red*factor, 255)
	green := math.Min(led.Green*factor, 255)
	blue := math.Min(led.Blue*factor, 255)

	const epsilon = 1e-9

	return fmt.Sprintf("[#%02x%02x%02x]", byte(math.Round(red+epsilon)), byte(math.Round(green+epsilon)), byte(math.Round(blue+epsilon)))
}
