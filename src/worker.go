package sdr

import (
	"sync/atomic"
	"time"
)

// channelWorker is one worker per tracking channel (spec.md §3/§4.3): it
// owns the channel, a goroutine, a stop flag, its own read cursor ixR, the
// if_ch flag selecting which ring buffer to consume from, and a
// non-owning back-reference to the receiver that launched it.
type channelWorker struct {
	ch    *Channel
	n     int // cycles per integration period: ch.N / rcv.N
	ifCh  int // 0 or 1: which ring buffer this worker reads from
	rcv   *Receiver

	ixR      atomic.Int64
	stopFlag atomic.Bool
	done     chan struct{}
}

func newChannelWorker(ch *Channel, n, ifCh int, rcv *Receiver) *channelWorker {
	return &channelWorker{ch: ch, n: n, ifCh: ifCh, rcv: rcv, done: make(chan struct{})}
}

func (w *channelWorker) start() {
	go w.run()
}

func (w *channelWorker) stop() {
	w.stopFlag.Store(true)
	<-w.done
}

// run is the channel worker loop of spec.md §4.3: while the safe-read
// window reaches the current write cursor, invoke the DSP kernel and
// advance ixR by n; otherwise sleep ThCyc and poll again.
func (w *channelWorker) run() {
	defer close(w.done)
	buf := w.rcv.bufferFor(w.ifCh)
	kernel := w.rcv.kernel

	for !w.stopFlag.Load() {
		for {
			ixR := w.ixR.Load()
			if ixR+int64(2*w.n) > buf.writeCursor()+1 {
				break
			}
			off := buf.offset(ixR)
			t := float64(ixR) * TCyc
			kernel.Update(w.ch, t, buf.Raw(), buf.lenBuff, off)

			if w.ch.State() == StateLOCK && ixR%LogCyc == 0 {
				w.rcv.recvLog.writeChannel(w.ch)
			}
			w.ixR.Store(ixR + int64(w.n))
		}
		time.Sleep(ThCyc)
	}
}
