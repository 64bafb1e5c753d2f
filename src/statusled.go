package sdr

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// StatusLED is the §4.8 optional GPIO status indicator: a pure observer of
// receiver state, driven by the receiver thread on every tick.
// Implementations must never block the receiver thread. GPIO errors are
// returned; the receiver discards them and never retries.
type StatusLED interface {
	// Set drives the line: true = held high (>=1 channel in LOCK), false =
	// held low (no channel locked). The receiver calls it every tick.
	Set(on bool) error
	// Pulse asserts the line for a BUFF-FULL transition. The line stays
	// high until the next Set, which the receiver calls in the same tick.
	Pulse() error
	Close() error
}

// gpioLED drives a single GPIO output line via the Linux gpiocdev uAPI.
type gpioLED struct {
	line *gpiocdev.Line
}

// NewGPIOStatusLED requests offset on chip (e.g. "gpiochip0", 17) as an
// output line for use as the receiver's lock/overrun indicator.
func NewGPIOStatusLED(chip string, offset int) (StatusLED, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("sdr: requesting status LED line %s:%d: %w", chip, offset, err)
	}
	return &gpioLED{line: line}, nil
}

func (g *gpioLED) Set(on bool) error {
	v := 0
	if on {
		v = 1
	}
	return g.line.SetValue(v)
}

func (g *gpioLED) Pulse() error {
	if err := g.line.SetValue(1); err != nil {
		return err
	}
	return nil
}

func (g *gpioLED) Close() error {
	return g.line.Close()
}

// noopLED is used when Config.LED is nil.
type noopLED struct{}

func (noopLED) Set(bool) error  { return nil }
func (noopLED) Pulse() error    { return nil }
func (noopLED) Close() error    { return nil }
