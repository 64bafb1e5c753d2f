package sdr

import "time"

// Constants named after the source PocketSDR implementation (original_source/src/sdr_rcv.c),
// carried over unchanged so the orchestration arithmetic matches the spec exactly.
const (
	// SDRMaxNCH is the maximum number of tracking channels a receiver may host.
	SDRMaxNCH = 999

	// MaxBuff is the ring buffer capacity in 1-ms cycles (8 s of buffered IF).
	MaxBuff = 8000

	// TCyc is the wall-clock duration of one ring-buffer write cycle.
	TCyc = 1e-3

	// ThCyc is the channel-worker poll interval.
	ThCyc = 10 * time.Millisecond

	// LogCyc is the number of 1-ms ticks between $TIME/$CH log records,
	// i.e. one second of stream time. Status redraws are paced separately
	// by Intervals.StatusSec.
	LogCyc = 1000

	// MinLock is the minimum accumulated lock duration (seconds) before a
	// channel is considered "previously locked" for re-acquisition or
	// assisted-acquisition purposes.
	MinLock = 2.0

	// TReacq is the re-acquisition window in seconds.
	TReacq = 60.0

	// ShortCodeT is the integration period at or below which a signal is
	// considered cheap to search blind (§4.4 rule 3).
	ShortCodeT = 5e-3

	// BackpressureMargin is the number of cycles of slack the receiver
	// leaves before the slowest worker when enforcing file-input
	// backpressure (MaxBuff - 10 in spec.md §4.5).
	BackpressureMargin = 10
)

// ChannelState is the tracking-channel lifecycle state.
type ChannelState int32

const (
	StateIDLE ChannelState = iota
	StateSEARCH
	StateLOCK
)

func (s ChannelState) String() string {
	switch s {
	case StateIDLE:
		return "IDLE"
	case StateSEARCH:
		return "SEARCH"
	case StateLOCK:
		return "LOCK"
	default:
		return "?"
	}
}

// SampleFormat identifies the raw byte encoding of the IF sample stream.
type SampleFormat int

const (
	FormatINT8 SampleFormat = iota // one or two signed bytes per sample
	FormatRAW                      // packed 2-bit x 4 streams per byte
)

// IQMode selects how a front-end channel's samples are encoded.
type IQMode int

const (
	IQOnly  IQMode = 1 // I component only, Q forced to 0
	IQBoth  IQMode = 2 // interleaved I/Q pairs
)

// Sample is a single complex IF sample.
type Sample struct {
	I, Q float32
}

// Doppler is a signed frequency offset, in Hz.
type Doppler = float64

// SignalDef is one (signal, PRN, IF-frequency) triple requested at
// construction time (spec.md §3 lifecycle).
type SignalDef struct {
	Sig string
	PRN int
	Fi  float64 // IF frequency, Hz
	Fc  float64 // carrier (RF) frequency, Hz — used for Doppler scaling across signals
}
