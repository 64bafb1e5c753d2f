package sdr

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"
)

// Receiver is the receiver thread and its owned resources (spec.md §3): the
// set of channel workers (at most SDRMaxNCH), both ring buffers (the
// second only live for the packed-raw format, per the Open Question
// resolution in spec.md §9), the raw intake scratch buffer, the sample
// format descriptor, the round-robin search cursor, the write cursor, and
// the receiver thread's lifecycle flags.
type Receiver struct {
	cfg Config

	n       int // samples per 1-ms cycle, rcv.N in spec.md
	lenBuff int

	buf0 *ringBuffer
	buf1 *ringBuffer // nil unless cfg.Format == FormatRAW

	raw []byte // intake scratch buffer, sized for one cycle's read

	kernel  Kernel
	workers []*channelWorker

	ich atomic.Int32 // round-robin search cursor; -1 before the first tick

	recvLog *recvLog
	diag    DiagLogger
	led     StatusLED

	source   SampleSource
	tint     Intervals
	statusW  io.Writer

	stopFlag atomic.Bool
	started  atomic.Bool
	wg       sync.WaitGroup

	wasBuffFull atomic.Bool
}

// NewReceiver constructs a receiver per spec.md §3's lifecycle description:
// for each (signal, PRN, IF-frequency) triple a worker and its channel are
// allocated; unrecognised signals emit a diagnostic warning and are
// skipped; construction succeeds as long as the receiver shell itself
// could be allocated, even if every requested channel was rejected.
func NewReceiver(cfg Config) (*Receiver, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	diag := cfg.Diag
	if diag == nil {
		diag = discardLogger{}
	}
	kernel := cfg.Kernel
	if kernel == nil {
		kernel = NewDefaultKernel()
	}
	led := cfg.LED
	if led == nil {
		led = noopLED{}
	}

	n := int(TCyc * cfg.Fs)
	if n < 1 {
		n = 1
	}
	r := &Receiver{
		cfg:     cfg,
		n:       n,
		lenBuff: n * MaxBuff,
		kernel:  kernel,
		diag:    diag,
		led:     led,
		recvLog: newRecvLog(cfg.RecvLog),
	}
	r.ich.Store(-1)

	r.buf0 = newRingBuffer(n)
	if cfg.Format == FormatRAW {
		r.buf1 = newRingBuffer(n)
	}

	ns := bytesPerSample(cfg.Format, cfg.IQ[0])
	r.raw = make([]byte, n*ns)

	for i, def := range cfg.Signals {
		if len(r.workers) >= SDRMaxNCH {
			diag.Warn("receiver channel limit reached, dropping signal", "sig", def.Sig, "prn", def.PRN)
			break
		}
		ch, err := kernel.New(len(r.workers)+1, def, cfg.Fs, cfg.CorrSpacing, cfg.DopCenter, cfg.DopSpan)
		if err != nil {
			diag.Warn("signal/prn error, skipping channel", "sig", def.Sig, "prn", def.PRN, "index", i, "err", err)
			continue
		}
		ifCh := 0
		if cfg.Format == FormatRAW && ch.Fc < 1.5e9 {
			ifCh = 1
		}
		nCycles := ch.N / n
		if nCycles < 1 {
			nCycles = 1
		}
		w := newChannelWorker(ch, nCycles, ifCh, r)
		r.workers = append(r.workers, w)
	}

	return r, nil
}

// bufferFor returns the ring buffer a channel worker with the given if_ch
// flag should read from.
func (r *Receiver) bufferFor(ifCh int) *ringBuffer {
	if ifCh == 1 && r.buf1 != nil {
		return r.buf1
	}
	return r.buf0
}

// Channels exposes the receiver's channels for the status view and tests.
func (r *Receiver) Channels() []*Channel {
	out := make([]*Channel, len(r.workers))
	for i, w := range r.workers {
		out[i] = w.ch
	}
	return out
}

// Start begins ingestion from source with the given output intervals
// (spec.md §3/§6). If source is seekable (file-like), every channel starts
// in SEARCH and backpressure is enforced; otherwise (stdin/USB/sound-card/
// serial) channels start IDLE and backpressure is disabled (spec.md §3,
// §4.5, §9 Open Question 3).
func (r *Receiver) Start(source SampleSource, statusW io.Writer, tint Intervals) error {
	if !r.started.CompareAndSwap(false, true) {
		return fmt.Errorf("sdr: receiver already started")
	}
	r.source = source
	r.statusW = statusW
	r.tint = tint
	r.stopFlag.Store(false)

	for _, w := range r.workers {
		if source.Seekable() {
			w.ch.SetState(StateSEARCH)
		}
		w.start()
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run()
	}()
	r.diag.Info("receiver started", "channels", len(r.workers), "seekable", source.Seekable())
	return nil
}

// Stop proceeds as spec.md §5 requires: workers are stopped and joined
// first, then the receiver thread, because workers depend on the ring
// buffer the receiver owns.
func (r *Receiver) Stop() {
	if !r.started.Load() {
		return
	}
	for _, w := range r.workers {
		w.stop()
	}
	r.stopFlag.Store(true)
	r.wg.Wait()
	r.started.Store(false)
	r.diag.Info("receiver stopped")
}

// Free releases the DSP kernel's per-channel state. Ring buffers and
// workers are ordinary Go values collected once unreferenced; Free exists
// for lifecycle symmetry with spec.md §3 and to let a custom Kernel release
// non-Go resources (e.g. an FFT plan) per channel.
func (r *Receiver) Free() {
	for _, w := range r.workers {
		r.kernel.Free(w.ch)
	}
	r.led.Close()
}

// run is the receiver thread of spec.md §4.5.
func (r *Receiver) run() {
	var nrow int
	showCursor := r.tint.StatusSec > 0 && r.statusW != nil && !r.cfg.Headless
	if showCursor {
		fmt.Fprint(r.statusW, ansiHideCursor)
	}

	var lastIx int64
	var lastFull bool
	for ix := int64(0); !r.stopFlag.Load(); ix++ {
		lastIx = ix
		if ix%LogCyc == 0 {
			r.recvLog.writeTime(float64(ix)*TCyc, time.Now())
		}

		n, err := r.readCycle(ix)
		if err != nil {
			r.diag.Error("sample source read failed", "ix", ix, "err", err)
		}
		if err != nil || n == 0 {
			break // end of input stream (spec.md §7: no retry)
		}

		r.updateSearch(ix)

		full := r.buffFull(ix)
		lastFull = full
		if full && !r.wasBuffFull.Swap(true) {
			r.diag.Warn("BUFF-FULL: ring buffer saturated", "ix", ix)
			r.led.Pulse()
		} else if !full {
			r.wasBuffFull.Store(false)
		}
		r.led.Set(r.lockedCount() > 0)

		if r.tint.StatusSec > 0 {
			period := int64(r.tint.StatusSec / TCyc)
			if period > 0 && ix%period == 0 {
				if r.cfg.Headless {
					r.logStatus(ix, full)
				} else if r.statusW != nil {
					nrow = r.printStatus(nrow, ix, full)
				}
			}
		}

		if r.source.Seekable() {
			r.waitBackpressure(ix)
		}
	}

	if showCursor {
		r.printStatus(nrow, lastIx, lastFull)
		fmt.Fprint(r.statusW, ansiShowCursor)
	}
}

// readCycle reads one cycle of IF samples (spec.md §4.1) into slot
// ix mod MaxBuff of the ring buffer(s), then publishes ix. Returns (0, nil)
// on a short read (end of stream), matching spec.md §7's no-retry policy.
func (r *Receiver) readCycle(ix int64) (int, error) {
	n, err := io.ReadFull(r.source, r.raw)
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, nil
		}
		return 0, err
	}
	off := r.n * int(ix%MaxBuff)

	switch r.cfg.Format {
	case FormatRAW:
		decodeRaw(r.raw, r.cfg.IQ, r.buf0.Raw(), r.buf1.Raw(), off, r.lenBuff)
		r.buf0.publish(ix)
		r.buf1.publish(ix)
	default: // FormatINT8
		if r.cfg.IQ[0] == IQBoth {
			decodeInt8IQ(r.raw, r.buf0.Raw(), off, r.lenBuff)
		} else {
			decodeInt8IOnly(r.raw, r.buf0.Raw(), off, r.lenBuff)
		}
		r.buf0.publish(ix)
	}
	return n, nil
}

// waitBackpressure enforces spec.md §4.5/§4.2's flow control for file
// input: the receiver thread waits until every worker is within
// MaxBuff-BackpressureMargin cycles of the writer before reading the next
// cycle. Disabled for streaming input (stdin/USB/sound-card/serial) per
// spec.md §9 Open Question 3.
func (r *Receiver) waitBackpressure(ix int64) {
	for _, w := range r.workers {
		for ix+1-w.ixR.Load() >= MaxBuff-BackpressureMargin {
			time.Sleep(time.Millisecond)
		}
	}
}

// buffFull reports whether any worker has fallen MaxBuff cycles or more
// behind the writer — the BUFF-FULL condition of spec.md §4.2/§4.6.
func (r *Receiver) buffFull(ix int64) bool {
	for _, w := range r.workers {
		if ix+1-w.ixR.Load() >= MaxBuff {
			return true
		}
	}
	return false
}

func (r *Receiver) lockedCount() int {
	n := 0
	for _, w := range r.workers {
		if w.ch.State() == StateLOCK {
			n++
		}
	}
	return n
}

const (
	ansiHideCursor = "\033[?25l"
	ansiShowCursor = "\033[?25h"
)
