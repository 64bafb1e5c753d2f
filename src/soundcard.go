package sdr

import (
	"fmt"
	"math"

	"github.com/gordonklaus/portaudio"
)

// SoundCardSource is a SampleSource that captures raw IF samples from a
// stereo "sound card" input, the same capture pattern the teacher repo
// uses for its own audio front-end (audio.go), generalised here to a GNSS
// IF front-end that presents its digitised output as a PortAudio capture
// device rather than a USB vendor-transfer endpoint. Not seekable.
type SoundCardSource struct {
	stream *portaudio.Stream
	frames []float32 // interleaved L=I, R=Q capture buffer
	out    []byte     // quantised int8 I/Q staging buffer
	pos    int
	n      int // frames captured per Read call
}

// OpenSoundCardSource opens the default input device for 2-channel capture
// at fs samples/sec, framesPerBuffer frames per PortAudio callback.
func OpenSoundCardSource(fs float64, framesPerBuffer int) (*SoundCardSource, error) {
	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("sdr: portaudio init: %w", err)
	}
	s := &SoundCardSource{
		frames: make([]float32, 2*framesPerBuffer),
		out:    make([]byte, 2*framesPerBuffer),
		n:      framesPerBuffer,
	}
	stream, err := portaudio.OpenDefaultStream(2, 0, fs, framesPerBuffer, s.frames)
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("sdr: portaudio open stream: %w", err)
	}
	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return nil, fmt.Errorf("sdr: portaudio start stream: %w", err)
	}
	s.stream = stream
	return s, nil
}

// Read fills p with quantised int8 I/Q bytes (spec.md §4.1 format 3),
// pulling fresh audio frames from PortAudio as needed.
func (s *SoundCardSource) Read(p []byte) (int, error) {
	total := 0
	for total < len(p) {
		if s.pos >= len(s.out) {
			if err := s.stream.Read(); err != nil {
				return total, &TransferError{Source: "soundcard", Err: err}
			}
			for i, f := range s.frames {
				s.out[i] = quantizeInt8(f)
			}
			s.pos = 0
		}
		n := copy(p[total:], s.out[s.pos:])
		s.pos += n
		total += n
	}
	return total, nil
}

func (s *SoundCardSource) Close() error {
	defer portaudio.Terminate()
	if err := s.stream.Stop(); err != nil {
		return err
	}
	return s.stream.Close()
}

func (SoundCardSource) Seekable() bool { return false }

// quantizeInt8 maps a [-1, 1] float sample onto the int8 range, matching
// the amplitude convention a GNSS front-end ADC would use.
func quantizeInt8(f float32) byte {
	v := math.Round(float64(f) * 127)
	if v > 127 {
		v = 127
	}
	if v < -128 {
		v = -128
	}
	return byte(int8(v))
}
