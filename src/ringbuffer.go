package sdr

import "sync/atomic"

// ringBuffer is the bounded shared store of complex samples described in
// spec.md §4.2: a mapping ix -> sample[ix mod MaxBuff*N], written only by
// the receiver thread and read concurrently by channel workers. Publication
// is by monotonic write cursor rather than per-slot locking (spec.md §5,
// §9): the writer stores ixW with release semantics only after a full 1-ms
// block has been decoded, and readers load it with acquire semantics.
type ringBuffer struct {
	n       int // samples per 1-ms cycle (rcv.N)
	lenBuff int // n * MaxBuff
	samples []Sample

	ixW atomic.Int64 // writer's published cycle index (release-store)
}

func newRingBuffer(n int) *ringBuffer {
	return &ringBuffer{
		n:       n,
		lenBuff: n * MaxBuff,
		samples: make([]Sample, n*MaxBuff),
	}
}

// slot returns the sample slice for cycle ix, wrapping modulo MaxBuff. The
// receiver's writer does not go through it: readCycle decodes into Raw() at
// offset(ix).
func (r *ringBuffer) slot(ix int64) []Sample {
	off := r.offset(ix)
	return r.samples[off : off+r.n]
}

// Raw returns the full backing array, for callers (the decoder) that need
// to write a wrap-around window directly rather than through slot().
func (r *ringBuffer) Raw() []Sample { return r.samples }

func (r *ringBuffer) offset(ix int64) int {
	return r.n * int(ix%MaxBuff)
}

// publish makes cycle ix's samples visible to readers. Must be called only
// after the full [off, off+n) slice has been written.
func (r *ringBuffer) publish(ix int64) {
	r.ixW.Store(ix)
}

// writeCursor returns the most recently published cycle index, with acquire
// semantics — a reader must call this before trusting any sample slot it
// implies is safe to read.
func (r *ringBuffer) writeCursor() int64 {
	return r.ixW.Load()
}

// read returns the count complex samples starting at sample offset off,
// reading directly from the backing array and wrapping modulo lenBuff. The
// caller is responsible for only reading a window that has already been
// published (ixR+2*n <= writeCursor()+1, §4.3). Channel workers do not call
// it; they pass Raw() to the kernel, whose readWindow does the same wrap.
func (r *ringBuffer) read(off, count, lenBuff int) []Sample {
	if off+count <= lenBuff {
		return r.samples[off : off+count]
	}
	// Wrap-around window: copy into a scratch slice. Two-window backpressure
	// slack (§4.2) guarantees the writer never laps mid-copy.
	out := make([]Sample, count)
	n := copy(out, r.samples[off:lenBuff])
	copy(out[n:], r.samples[:count-n])
	return out
}
