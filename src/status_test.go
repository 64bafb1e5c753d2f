package sdr

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// status_test.go checks the status view's structural invariants (§4.6):
// two header lines plus one row per channel locked for at least MinLock,
// and that the C/N0 bar graph saturates correctly.

func Test_Cn0Bar_ZeroBelowThirtyDbHz(t *testing.T) {
	assert.Equal(t, "", cn0Bar(25))
	assert.Equal(t, "", cn0Bar(30))
}

func Test_Cn0Bar_SaturatesAtThirteen(t *testing.T) {
	assert.Equal(t, strings.Repeat("|", 13), cn0Bar(100))
}

func Test_Cn0Bar_OnePipePerOnePointFiveDb(t *testing.T) {
	assert.Equal(t, strings.Repeat("|", 6), cn0Bar(30+6*1.5))
}

func Test_PrintStatus_RowCountGrowsWithLockedChannels(t *testing.T) {
	cfg := Config{
		Signals: []SignalDef{
			{Sig: "L1CA", PRN: 1},
			{Sig: "L1CA", PRN: 2},
		},
		Fs: 12000,
	}
	r, err := NewReceiver(cfg)
	require.NoError(t, err)

	var buf bytes.Buffer
	r.statusW = &buf
	r.cfg.Verbose = false

	nrow := r.printStatus(0, 0, false)
	assert.Equal(t, 2, nrow) // header x2, no locked channels

	r.workers[0].ch.SetState(StateLOCK)
	r.workers[0].ch.lock.Store(int64(MinLock / r.workers[0].ch.T))
	r.workers[0].ch.cn0.Store(45.0)

	buf.Reset()
	nrow2 := r.printStatus(nrow, 1000, false)
	assert.Equal(t, 3, nrow2)
	assert.Contains(t, buf.String(), "L1CA")
}
