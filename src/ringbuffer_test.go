package sdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// ringbuffer_test.go covers spec.md §8 property 2 (publication ordering: a
// reader never observes a write cursor further ahead than a fully-written
// cycle) and the basic wrap-around read path backpressure depends on.

func Test_RingBuffer_PublishMakesWriteCursorVisible(t *testing.T) {
	rb := newRingBuffer(4)
	assert.Equal(t, int64(0), rb.writeCursor())

	slot := rb.slot(0)
	for i := range slot {
		slot[i] = Sample{I: float32(i), Q: 0}
	}
	rb.publish(0)
	assert.Equal(t, int64(0), rb.writeCursor())

	slot1 := rb.slot(1)
	for i := range slot1 {
		slot1[i] = Sample{I: float32(10 + i), Q: 0}
	}
	rb.publish(1)
	assert.Equal(t, int64(1), rb.writeCursor())
}

func Test_RingBuffer_ReadWrapsAroundBuffer(t *testing.T) {
	rb := newRingBuffer(4) // lenBuff = 4*MaxBuff, MaxBuff=8000; use raw slice directly
	raw := rb.Raw()
	lenBuff := len(raw)
	for i := range raw {
		raw[i] = Sample{I: float32(i % 251), Q: 0}
	}

	out := rb.read(lenBuff-2, 5, lenBuff)
	assert.Len(t, out, 5)
	assert.Equal(t, raw[lenBuff-2], out[0])
	assert.Equal(t, raw[lenBuff-1], out[1])
	assert.Equal(t, raw[0], out[2])
	assert.Equal(t, raw[1], out[3])
	assert.Equal(t, raw[2], out[4])
}

func Test_RingBuffer_ReadContiguousWindowAvoidsCopy(t *testing.T) {
	rb := newRingBuffer(4)
	raw := rb.Raw()
	out := rb.read(0, 4, len(raw))
	assert.Equal(t, raw[0:4], out)
	assert.Same(t, &raw[0], &out[0])
}

// Test_RingBuffer_SlotOffsetWrapsModuloMaxBuff checks the publisher-side
// slot addressing that the backpressure invariant (property 1) relies on:
// ix and ix+MaxBuff must map to the same storage window.
func Test_RingBuffer_SlotOffsetWrapsModuloMaxBuff(t *testing.T) {
	rb := newRingBuffer(4)
	assert.Equal(t, rb.offset(0), rb.offset(MaxBuff))
	assert.Equal(t, rb.offset(7), rb.offset(MaxBuff+7))
}
