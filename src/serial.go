package sdr

import (
	"fmt"
	"io"

	"github.com/pkg/term"
)

// SerialSource is a SampleSource reading a raw IF byte stream from a
// serial/USB-CDC front-end at a fixed baud rate, opened in raw
// (non-canonical) mode so framing bytes are never interpreted by the tty
// line discipline. Not seekable.
type SerialSource struct {
	t *term.Term
}

// OpenSerialSource opens device (e.g. "/dev/ttyACM0") at baud in raw mode.
func OpenSerialSource(device string, baud int) (*SerialSource, error) {
	t, err := term.Open(device, term.Speed(baud), term.RawMode)
	if err != nil {
		return nil, fmt.Errorf("sdr: opening serial front-end %s: %w", device, err)
	}
	return &SerialSource{t: t}, nil
}

func (s *SerialSource) Read(p []byte) (int, error) {
	n, err := s.t.Read(p)
	if err != nil && err != io.EOF {
		return n, &TransferError{Source: "serial", Err: err}
	}
	return n, err
}
func (s *SerialSource) Close() error                { return s.t.Close() }
func (SerialSource) Seekable() bool                 { return false }
