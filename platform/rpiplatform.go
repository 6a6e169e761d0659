package platform

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/stianeikeland/go-rpio/v4"
	"golang.org/x/exp/maps"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/host/v3"

	"github.com/jhartl/cpuleds/animation"
	"github.com/jhartl/cpuleds/config"
)

// spiTransport is the write-only SPI primitive the strip hangs off. Two
// implementations exist because the supported boards use different SPI
// stacks; everything above this interface is shared.
type spiTransport interface {
	exchange(write []byte) error
	close() error
}

var spiTransportFactories = map[string]func(conf config.HardwareConfig) (spiTransport, error){
	"periph": newPeriphTransport,
	"rpio":   newRpioTransport,
}

// SPIPlatform drives a real LED strip over an SPI bus.
type SPIPlatform struct {
	conf      *config.Config
	transport spiTransport
	driver    ledDriver
	readyChan chan bool
}

func NewSPIPlatform(conf *config.Config) *SPIPlatform {
	return &SPIPlatform{
		conf:      conf,
		readyChan: make(chan bool),
	}
}

func (s *SPIPlatform) Start() error {
	driver, err := newLedDriver(s.conf.Hardware)
	if err != nil {
		return err
	}

	factory, ok := spiTransportFactories[strings.ToLower(s.conf.Hardware.Transport)]
	if !ok {
		known := maps.Keys(spiTransportFactories)
		sort.Strings(known)
		return fmt.Errorf("unknown SPI transport %q (supported: %s)", s.conf.Hardware.Transport, strings.Join(known, ", "))
	}

	slog.Info("Initialising SPI", "transport", s.conf.Hardware.Transport,
		"device", s.conf.Hardware.SPIDevice, "ledtype", s.conf.Hardware.LEDType)
	transport, err := factory(s.conf.Hardware)
	if err != nil {
		return err
	}

	s.driver = driver
	s.transport = transport
	close(s.readyChan) // Hardware is ready immediately.
	return nil
}

func (s *SPIPlatform) Ready() <-chan bool {
	return s.readyChan
}

func (s *SPIPlatform) DisplayLeds(leds []animation.Led) error {
	if err := s.transport.exchange(s.driver.frame(leds)); err != nil {
		return fmt.Errorf("spi write failed: %w", err)
	}
	return nil
}

// Stop blanks the strip and releases the bus. Blanking is best-effort:
// Stop also runs on error paths where the bus may already be gone.
func (s *SPIPlatform) Stop() {
	if s.transport == nil {
		return
	}
	blank := make([]animation.Led, s.conf.Hardware.LedsTotal)
	if err := s.transport.exchange(s.driver.frame(blank)); err != nil {
		slog.Error("Failed to blank strip on shutdown", "error", err)
	}
	if err := s.transport.close(); err != nil {
		slog.Error("Error closing SPI transport", "error", err)
	}
	s.transport = nil
}

// periphTransport uses the periph.io host drivers and honors the
// configured SPI device path.
type periphTransport struct {
	port spi.PortCloser
	conn spi.Conn
}

func newPeriphTransport(conf config.HardwareConfig) (spiTransport, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("failed to init periph: %w", err)
	}
	port, err := spireg.Open(conf.SPIDevice)
	if err != nil {
		return nil, fmt.Errorf("failed to open spi device %s: %w", conf.SPIDevice, err)
	}
	conn, err := port.Connect(physic.Frequency(conf.SPIFrequency)*physic.Hertz, spi.Mode0, 8)
	if err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to connect to spi device %s: %w", conf.SPIDevice, err)
	}
	return &periphTransport{port: port, conn: conn}, nil
}

func (t *periphTransport) exchange(write []byte) error {
	return t.conn.Tx(write, nil)
}

func (t *periphTransport) close() error {
	return t.port.Close()
}

// rpioTransport uses the BCM283x registers directly via go-rpio. It is
// fixed to the SPI0 pins; the SPIDevice setting does not apply here.
type rpioTransport struct{}

func newRpioTransport(conf config.HardwareConfig) (spiTransport, error) {
	if err := rpio.Open(); err != nil {
		return nil, fmt.Errorf("failed to open rpio: %w", err)
	}
	if err := rpio.SpiBegin(rpio.Spi0); err != nil {
		rpio.Close()
		return nil, fmt.Errorf("failed to begin spi: %w", err)
	}
	rpio.SpiSpeed(int(conf.SPIFrequency))
	return &rpioTransport{}, nil
}

func (t *rpioTransport) exchange(write []byte) error {
	rpio.SpiTransmit(write...)
	return nil
}

func (t *rpioTransport) close() error {
	rpio.SpiEnd(rpio.Spi0)
	return rpio.Close()
}
