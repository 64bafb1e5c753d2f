package sdr

import (
	"io"
	"os"
)

// SampleSource is the uniform contract over the raw byte stream the sample
// decoder (§4.1) consumes, abstracting over spec.md §1's three collaborator
// transports (file, stdin, USB) plus the two added backends of
// SPEC_FULL.md §3 (sound-card, serial). Read has the same short-read =
// end-of-stream convention as io.Reader.
type SampleSource interface {
	io.Reader
	io.Closer
	// Seekable reports whether this source is file-like: seekable sources
	// enable backpressure and start every channel in SEARCH (spec.md §3/§4.5);
	// streaming sources (stdin, USB, sound-card, serial) start IDLE and
	// disable backpressure.
	Seekable() bool
}

// FileSource wraps a regular, seekable file.
type FileSource struct {
	f *os.File
}

// OpenFileSource opens path for reading as a seekable IF-sample stream.
func OpenFileSource(path string) (*FileSource, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	return &FileSource{f: f}, nil
}

func (s *FileSource) Read(p []byte) (int, error) { return s.f.Read(p) }
func (s *FileSource) Close() error                { return s.f.Close() }
func (s *FileSource) Seekable() bool               { return true }

// StdinSource wraps the process's standard input, a non-seekable stream
// for which backpressure is disabled per spec.md §4.5/§9.
type StdinSource struct{}

// NewStdinSource returns a SampleSource reading os.Stdin.
func NewStdinSource() *StdinSource { return &StdinSource{} }

func (StdinSource) Read(p []byte) (int, error) { return os.Stdin.Read(p) }
func (StdinSource) Close() error                { return nil }
func (StdinSource) Seekable() bool              { return false }
