package sdr

import (
	"bytes"
	"io"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// receiver_test.go exercises the end-to-end scenarios of spec.md §8 against
// an in-memory SampleSource, standing in for a real IF capture file.

type memSource struct {
	r        *bytes.Reader
	seekable bool
}

func newMemSource(data []byte, seekable bool) *memSource {
	return &memSource{r: bytes.NewReader(data), seekable: seekable}
}

func (m *memSource) Read(p []byte) (int, error) { return m.r.Read(p) }
func (m *memSource) Close() error                { return nil }
func (m *memSource) Seekable() bool              { return m.seekable }

// encodeInt8IQ builds the raw interleaved-int8 byte stream that, once run
// through decodeInt8IQ, reproduces samples (a continuous tone), inverting
// that decoder's Q-negation convention.
func encodeInt8IQ(samples []Sample) []byte {
	out := make([]byte, 2*len(samples))
	for i, s := range samples {
		out[2*i] = byte(int8(math.Round(float64(s.I))))
		out[2*i+1] = byte(int8(math.Round(float64(-s.Q))))
	}
	return out
}

func Test_Receiver_LocksOntoSyntheticToneWithinFiveSeconds(t *testing.T) {
	const fs = 12000.0
	const fdTrue = 500.0
	const cycles = 5000 // 5 seconds of stream time
	const n = int(fs * TCyc)

	samples := generateTone(cycles*n, fdTrue, fs, 15.0)
	raw := encodeInt8IQ(samples)

	cfg := Config{
		Signals: []SignalDef{
			{Sig: "L1CA", PRN: 1},
			{Sig: "L1CA", PRN: 2},
		},
		Fs:        fs,
		DopCenter: 0,
		DopSpan:   5000,
		Format:    FormatINT8,
		IQ:        [2]IQMode{IQBoth, IQBoth},
	}
	r, err := NewReceiver(cfg)
	require.NoError(t, err)

	source := newMemSource(raw, true)
	require.NoError(t, r.Start(source, io.Discard, Intervals{}))
	defer r.Stop()

	require.Eventually(t, func() bool {
		for _, ch := range r.Channels() {
			if ch.State() != StateLOCK {
				return false
			}
		}
		return true
	}, 5*time.Second, 5*time.Millisecond, "channels failed to lock")

	for _, ch := range r.Channels() {
		assert.GreaterOrEqual(t, ch.Cn0(), 40.0)
	}
}

func Test_Receiver_BuffFullReportsSaturation(t *testing.T) {
	cfg := Config{
		Signals: []SignalDef{{Sig: "L1CA", PRN: 1}},
		Fs:      12000,
	}
	r, err := NewReceiver(cfg)
	require.NoError(t, err)

	w := r.workers[0]
	w.ixR.Store(0)
	assert.False(t, r.buffFull(MaxBuff-2))
	assert.True(t, r.buffFull(MaxBuff-1)) // writer MaxBuff cycles ahead of this worker's read cursor
}

func Test_Receiver_StopJoinsWorkersWithoutDeadlock(t *testing.T) {
	const fs = 12000.0
	const n = int(fs * TCyc)
	samples := generateTone(200*n, 10, fs, 15.0)
	raw := encodeInt8IQ(samples)

	cfg := Config{
		Signals: []SignalDef{{Sig: "L1CA", PRN: 1}},
		Fs:      fs,
		Format:  FormatINT8,
		IQ:      [2]IQMode{IQBoth, IQBoth},
	}
	r, err := NewReceiver(cfg)
	require.NoError(t, err)

	source := newMemSource(raw, false) // streaming: no backpressure, channels start IDLE
	require.NoError(t, r.Start(source, io.Discard, Intervals{}))

	done := make(chan struct{})
	go func() {
		r.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return: workers failed to join")
	}
}

func Test_Receiver_ChannelsReflectsWorkerOrder(t *testing.T) {
	cfg := Config{
		Signals: []SignalDef{
			{Sig: "L1CA", PRN: 1},
			{Sig: "L1CA", PRN: 2},
		},
		Fs: 12000,
	}
	r, err := NewReceiver(cfg)
	require.NoError(t, err)
	chs := r.Channels()
	require.Len(t, chs, 2)
	assert.Equal(t, 1, chs[0].PRN)
	assert.Equal(t, 2, chs[1].PRN)
}
