package sdr

import (
	"io"
	"testing"
	"time"

	"github.com/creack/pty"
	"github.com/stretchr/testify/require"
)

// serial_test.go exercises SerialSource against a real pseudo-terminal pair
// instead of a fake, the same way the teacher's kiss.go opens one with
// pty.Open to stand in for a TNC client with nothing physically attached.

func Test_SerialSource_ReadsBytesWrittenToPTYMaster(t *testing.T) {
	ptmx, pts, err := pty.Open()
	require.NoError(t, err)
	defer ptmx.Close()

	src, err := OpenSerialSource(pts.Name(), 115200)
	require.NoError(t, err)
	defer src.Close()

	require.False(t, src.Seekable())

	want := []byte{0x01, 0x02, 0x03, 0x04}
	go func() {
		_, _ = ptmx.Write(want)
	}()

	buf := make([]byte, len(want))
	deadline := time.Now().Add(2 * time.Second)
	read := 0
	for read < len(buf) && time.Now().Before(deadline) {
		n, err := src.Read(buf[read:])
		if err != nil && err != io.EOF {
			require.NoError(t, err)
		}
		read += n
	}
	require.Equal(t, want, buf)
}
