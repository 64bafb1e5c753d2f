package sdr

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

// decoder_test.go exercises the sample decoder (§4.1): the packed-raw LUT's
// round-trip correctness against the quantisation table, and the two
// int8-family decoders' I/Q sign conventions.

func Test_DecodeRaw_MatchesQuantisationTable(t *testing.T) {
	resetRawLUTForTest()
	buf0 := make([]Sample, 4)
	buf1 := make([]Sample, 4)

	// Byte 0bQQIIQQII-ish per-nibble layout: channel 0 in low nibble,
	// channel 1 in high nibble, each nibble (Q:I) 2 bits apiece.
	raw := []byte{0x00, 0x55, 0xAA, 0xFF}
	decodeRaw(raw, [2]IQMode{IQBoth, IQBoth}, buf0, buf1, 0, 4)

	assert.Equal(t, Sample{I: 1.0, Q: -1.0}, buf0[0])
	assert.Equal(t, Sample{I: 1.0, Q: -1.0}, buf1[0])

	// 0x55 = 0b01010101: every 2-bit field is 0b01 -> level index 1 -> 3.0
	assert.Equal(t, float32(3.0), buf0[1].I)
	assert.Equal(t, float32(3.0), buf1[1].I)
}

func Test_DecodeRaw_IOnlySuppressesQ(t *testing.T) {
	resetRawLUTForTest()
	buf0 := make([]Sample, 1)
	buf1 := make([]Sample, 1)
	decodeRaw([]byte{0xFF}, [2]IQMode{IQOnly, IQOnly}, buf0, buf1, 0, 1)
	assert.Equal(t, float32(0), buf0[0].Q)
	assert.Equal(t, float32(0), buf1[0].Q)
}

func Test_DecodeInt8IOnly(t *testing.T) {
	buf := make([]Sample, 3)
	decodeInt8IOnly([]byte{1, 0x7F, 0x80}, buf, 0, 3)
	assert.Equal(t, Sample{I: 1, Q: 0}, buf[0])
	assert.Equal(t, Sample{I: 127, Q: 0}, buf[1])
	assert.Equal(t, Sample{I: -128, Q: 0}, buf[2])
}

func Test_DecodeInt8IQ_NegatesQ(t *testing.T) {
	buf := make([]Sample, 2)
	decodeInt8IQ([]byte{10, 20, 5, 5}, buf, 0, 2)
	assert.Equal(t, Sample{I: 10, Q: -20}, buf[0])
	assert.Equal(t, Sample{I: 5, Q: -5}, buf[1])
}

// Test_DecodeRaw_LUTRoundTrip is the property-based check for spec.md §8
// property 6: every byte value decodes to the same (I, Q) pair regardless
// of how many times the LUT is rebuilt or which wrap offset is used.
func Test_DecodeRaw_LUTRoundTrip(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		resetRawLUTForTest()
		b := uint8(rapid.IntRange(0, 255).Draw(rt, "byte"))
		off := rapid.IntRange(0, 7).Draw(rt, "off")
		lenBuff := 8

		buf0 := make([]Sample, lenBuff)
		buf1 := make([]Sample, lenBuff)
		decodeRaw([]byte{b}, [2]IQMode{IQBoth, IQBoth}, buf0, buf1, off, lenBuff)

		wantI0 := rawLevels[(b>>0)&0x3]
		wantQ0 := -rawLevels[(b>>2)&0x3]
		wantI1 := rawLevels[(b>>4)&0x3]
		wantQ1 := -rawLevels[(b>>6)&0x3]

		got0 := buf0[off%lenBuff]
		got1 := buf1[off%lenBuff]
		if got0.I != wantI0 || got0.Q != wantQ0 {
			rt.Fatalf("channel 0 mismatch for byte %#x: got %+v", b, got0)
		}
		if got1.I != wantI1 || got1.Q != wantQ1 {
			rt.Fatalf("channel 1 mismatch for byte %#x: got %+v", b, got1)
		}
	})
}
