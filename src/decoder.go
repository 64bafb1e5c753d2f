package sdr

import "sync"

// decoder.go implements the sample decoder of spec.md §4.1: turning a raw
// byte block read from a SampleSource into one or two complex IF streams
// written into ring-buffer slots. Grounded on original_source/src/sdr_rcv.c
// (gen_LUT / rcv_read_data): a 256-entry lookup table maps each packed raw
// byte to four quantised 2-bit fields, built lazily on first use.

// rawLevels is the 2-bit quantisation table used by the packed-raw format.
var rawLevels = [4]float32{1.0, 3.0, -1.0, -3.0}

// rawLUT holds, for each of the two front-end channels, a 256-entry table
// of decoded (I, Q) pairs for the packed-raw format (§4.1 format 1).
type rawLUT struct {
	table [2][256]Sample
}

var (
	rawLUTOnce  sync.Once
	rawLUTCache *rawLUT
	rawLUTIQ    [2]IQMode
)

// buildRawLUT constructs (or returns the cached) lookup table. Building is
// one-shot per process, using the IQ modes of the first call; later calls
// return that table whatever modes they pass. This matches the
// "lazily-initialised module-level table" design note (§9).
func buildRawLUT(iq [2]IQMode) *rawLUT {
	rawLUTOnce.Do(func() {
		rawLUTCache = &rawLUT{}
		rawLUTIQ = iq
		for i := 0; i < 256; i++ {
			b := uint8(i)
			rawLUTCache.table[0][i] = Sample{
				I: rawLevels[(b>>0)&0x3],
				Q: qOrZero(iq[0], -rawLevels[(b>>2)&0x3]),
			}
			rawLUTCache.table[1][i] = Sample{
				I: rawLevels[(b>>4)&0x3],
				Q: qOrZero(iq[1], -rawLevels[(b>>6)&0x3]),
			}
		}
	})
	return rawLUTCache
}

// resetRawLUTForTest clears the cached lookup table so a test can rebuild it
// under a different IQ-mode pair; production code never calls this.
func resetRawLUTForTest() {
	rawLUTOnce = sync.Once{}
	rawLUTCache = nil
}

func qOrZero(mode IQMode, q float32) float32 {
	if mode == IQOnly {
		return 0
	}
	return q
}

// decodeRaw decodes n packed-raw bytes into both ring buffers at slot offset
// off, wrapping at lenBuff.
func decodeRaw(raw []byte, iq [2]IQMode, buf0, buf1 []Sample, off, lenBuff int) {
	lut := buildRawLUT(iq)
	for j, b := range raw {
		i := (off + j) % lenBuff
		buf0[i] = lut.table[0][b]
		buf1[i] = lut.table[1][b]
	}
}

// decodeInt8IOnly decodes n signed bytes, one sample per byte, I only.
func decodeInt8IOnly(raw []byte, buf []Sample, off, lenBuff int) {
	for j, b := range raw {
		i := (off + j) % lenBuff
		buf[i] = Sample{I: float32(int8(b)), Q: 0}
	}
}

// decodeInt8IQ decodes 2*n signed bytes, interleaved (I, Q) pairs, negating Q
// per the spectral-inversion convention shared with the packed-raw format.
func decodeInt8IQ(raw []byte, buf []Sample, off, lenBuff int) {
	n := len(raw) / 2
	for j := 0; j < n; j++ {
		i := (off + j) % lenBuff
		buf[i] = Sample{I: float32(int8(raw[2*j])), Q: -float32(int8(raw[2*j+1]))}
	}
}

// bytesPerSample reports how many raw bytes each format consumes per
// 1-ms-cycle sample, for a given format/IQ combination.
func bytesPerSample(fmtv SampleFormat, iq0 IQMode) int {
	if fmtv == FormatRAW {
		return 1
	}
	if iq0 == IQBoth {
		return 2
	}
	return 1
}
