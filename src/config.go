package sdr

import (
	"fmt"
	"io"
)

// Config is the startup configuration enumerated in spec.md §6: the signal
// list, sampling parameters and IF data format. The output intervals passed
// to Start are the separate Intervals type.
type Config struct {
	Signals []SignalDef // sigs[], prns[], fi[] triples

	Fs float64 // sampling frequency of IF data, Hz

	DopCenter float64 // Doppler search center, Hz
	DopSpan   float64 // Doppler search half-span, Hz

	CorrSpacing float64 // correlator spacing, chips (0 is replaced by 0.5 in validate)

	Format SampleFormat
	IQ     [2]IQMode

	// Kernel overrides the DSP kernel contract implementation; nil selects
	// the built-in stand-in (NewDefaultKernel).
	Kernel Kernel

	// Diag receives lifecycle/configuration/transport diagnostics (§4.9).
	// Nil selects a discarding logger.
	Diag DiagLogger

	// RecvLog receives the append-only $TIME/$CH records (spec.md §6). Nil
	// disables receiver logging.
	RecvLog io.Writer

	// LED optionally drives a GPIO status indicator (§4.8). Nil disables it.
	LED StatusLED

	// Verbose adds the tracking-error/message-type/time-of-week columns to
	// the status view (§4.6).
	Verbose bool

	// Headless disables the ANSI terminal status redraw and instead emits
	// one diagnostic-log line per status interval, for deployments with no
	// controlling terminal (§4.6 added).
	Headless bool
}

// Intervals are the three output intervals passed to Start (spec.md §6):
// tint[0] status print, tint[1] NMEA, tint[2] RTCM3 (the latter two are
// referenced but unimplemented, per spec.md §1 Non-goals).
type Intervals struct {
	StatusSec float64
	NMEASec   float64
	RTCM3Sec  float64
}

func (c *Config) validate() error {
	if c.Fs <= 0 {
		return &ConfigError{Field: "Fs", Msg: fmt.Sprintf("must be positive, got %v", c.Fs)}
	}
	if c.DopSpan < 0 {
		return &ConfigError{Field: "DopSpan", Msg: fmt.Sprintf("must be non-negative, got %v", c.DopSpan)}
	}
	if c.IQ[0] == 0 {
		c.IQ[0] = IQOnly
	}
	if c.Format == FormatRAW && c.IQ[1] == 0 {
		c.IQ[1] = IQOnly
	}
	if c.CorrSpacing == 0 {
		c.CorrSpacing = 0.5
	}
	return nil
}
