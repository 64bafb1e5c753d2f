package sdr

import (
	"fmt"
	"sync/atomic"
)

// Channel is the opaque tracking-channel value described in spec.md §3: the
// orchestration layer only ever reads its observable scalar fields (most of
// them atomically, since they cross goroutine boundaries — see atomics.go)
// and calls into the DSP kernel contract (New/Update/Free, below) to mutate
// them. The real correlators/PLL/DLL/nav-message decoder are out of scope
// (spec.md §1); Channel carries just enough state for the kernel contract.
type Channel struct {
	No  int
	Sig string
	PRN int
	T   float64 // integration period, seconds
	N   int     // samples per integration period at the receiver's fs

	Fi float64 // IF frequency, Hz
	Fc float64 // carrier (RF) frequency, Hz — Doppler scales with this

	DopCenter float64
	DopSpan   float64
	CorrSpace float64

	sat atomicString // "<sig>/<prn>" fingerprint, set once at New

	state atomic.Int32 // ChannelState

	lock atomic.Int64 // integration intervals accumulated in LOCK
	lost atomic.Int64 // count of LOCK->IDLE transitions (lost lock)

	coff  atomicFloat64 // code offset, seconds
	fd    atomicFloat64 // Doppler estimate, Hz
	fdExt atomicFloat64 // acquisition hint slot
	adr   atomicFloat64 // accumulated Doppler range, cycles
	cn0   atomicFloat64 // dB-Hz
	time  atomicFloat64 // last-update timestamp (ix_r * T_CYC) of last LOCK update

	errPhase atomicFloat64
	errCode  atomicFloat64

	navCount0 atomic.Int64
	navCount1 atomic.Int64
	nErr      atomic.Int64
	mt        atomic.Int32
	tow       atomicFloat64

	secSync atomic.Bool
	bSync   atomic.Bool
	fSync   atomic.Bool
	reverse atomic.Bool

	// acqAttempts is internal kernel bookkeeping (not part of the external
	// observable contract) counting consecutive SEARCH calls without a
	// successful correlation, used to time out a blind search.
	acqAttempts atomic.Int64
	missedLock  atomic.Int64
}

func (c *Channel) State() ChannelState   { return ChannelState(c.state.Load()) }
func (c *Channel) SetState(s ChannelState) { c.state.Store(int32(s)) }
func (c *Channel) Lock() int64           { return c.lock.Load() }
func (c *Channel) Lost() int64           { return c.lost.Load() }
func (c *Channel) Coff() float64         { return c.coff.Load() }
func (c *Channel) Fd() float64           { return c.fd.Load() }
func (c *Channel) FdExt() float64        { return c.fdExt.Load() }
func (c *Channel) SetFdExt(v float64)    { c.fdExt.Store(v) }
func (c *Channel) Adr() float64          { return c.adr.Load() }
func (c *Channel) Cn0() float64          { return c.cn0.Load() }
func (c *Channel) Time() float64         { return c.time.Load() }
func (c *Channel) Sat() string           { return c.sat.Load() }
func (c *Channel) ErrPhase() float64     { return c.errPhase.Load() }
func (c *Channel) ErrCode() float64      { return c.errCode.Load() }
func (c *Channel) NavCounts() (int64, int64) {
	return c.navCount0.Load(), c.navCount1.Load()
}
func (c *Channel) NErr() int64 { return c.nErr.Load() }
func (c *Channel) MsgType() int32 { return c.mt.Load() }
func (c *Channel) TOW() float64   { return c.tow.Load() }

// SyncFlags returns the four-character "SBFR" status string (§4.6):
// secondary-code / bit / frame / data-reversal, each 'S'/'B'/'F'/'R' or '-'.
func (c *Channel) SyncFlags() string {
	flag := func(on bool, ch byte) byte {
		if on {
			return ch
		}
		return '-'
	}
	return string([]byte{
		flag(c.secSync.Load(), 'S'),
		flag(c.bSync.Load(), 'B'),
		flag(c.fSync.Load(), 'F'),
		flag(c.reverse.Load(), 'R'),
	})
}

// Kernel is the DSP kernel contract of spec.md §6. The orchestration layer
// depends only on this interface; a real correlator/PLL/DLL/nav-decoder
// implementation is an external collaborator per spec.md §1. defaultKernel
// (kernel.go) is a minimal self-contained stand-in used so this repository
// runs and tests end-to-end without one.
type Kernel interface {
	New(no int, def SignalDef, fs float64, corrSpacing float64, dopCenter, dopSpan float64) (*Channel, error)
	Update(ch *Channel, t float64, buf []Sample, lenBuff, off int)
	Free(ch *Channel)
}

func newChannel(no int, def SignalDef, fs, corrSpacing, dopCenter, dopSpan float64) *Channel {
	ch := &Channel{
		No:        no,
		Sig:       def.Sig,
		PRN:       def.PRN,
		T:         1e-3, // default: 1-ms integration, overridden by sigIntegration
		Fi:        def.Fi,
		Fc:        def.Fc,
		DopCenter: dopCenter,
		DopSpan:   dopSpan,
		CorrSpace: corrSpacing,
	}
	if t, ok := sigIntegration[def.Sig]; ok {
		ch.T = t
	}
	ch.N = int(ch.T * fs)
	if ch.N < 1 {
		ch.N = 1
	}
	ch.sat.Store(satID(def.Sig, def.PRN))
	ch.SetState(StateIDLE)
	return ch
}

// sigIntegration gives the pre-navigation-bit coherent integration period
// for well-known GNSS signals; unlisted signals default to 1 ms (a GPS
// L1 C/A-like short code).
var sigIntegration = map[string]float64{
	"L1CA": 1e-3,
	"G1CA": 1e-3,
	"E1B":  4e-3,
	"B1I":  1e-3,
	"L1C":  10e-3,
	"L2CM": 20e-3,
	"L5I":  1e-3,
	"L5Q":  20e-3,
	"E5AI": 1e-3,
}

// sigConstellation maps a signal identifier to its owning constellation, so
// that two channels tracking different signals (e.g. L1CA and L2CM) from
// the same physical satellite are recognised as "the same satellite" for
// assisted acquisition (spec.md §4.4), while the PRN alone is ambiguous
// across constellations.
var sigConstellation = map[string]string{
	"L1CA": "GPS", "L1C": "GPS", "L2CM": "GPS", "L5I": "GPS", "L5Q": "GPS",
	"G1CA": "GLO",
	"E1B":  "GAL", "E5AI": "GAL",
	"B1I": "BDS",
}

// satID is the cross-channel "sat" fingerprint compared by assisted
// acquisition (spec.md §3/§4.4): constellation + PRN, independent of which
// signal/frequency this particular channel tracks.
func satID(sig string, prn int) string {
	c := sigConstellation[sig]
	if c == "" {
		c = "UNK"
	}
	return fmt.Sprintf("%s/%d", c, prn)
}

// sigCarrierHz gives the RF carrier frequency for well-known GNSS signals,
// used when the caller does not supply one explicitly in a SignalDef.
var sigCarrierHz = map[string]float64{
	"L1CA": 1575.42e6,
	"L1C":  1575.42e6,
	"L2CM": 1227.60e6,
	"L5I":  1176.45e6,
	"L5Q":  1176.45e6,
	"G1CA": 1602.00e6,
	"E1B":  1575.42e6,
	"E5AI": 1176.45e6,
	"B1I":  1561.098e6,
}
