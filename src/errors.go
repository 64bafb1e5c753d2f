package sdr

import "fmt"

// errors.go defines the receiver's named failure modes (spec.md §7),
// grounded on original_source/src/sdr_rcv.c's error paths (sdr_func_init
// failures, usb open/transfer errors, stream read errors) translated into
// idiomatic Go sentinel and wrapped errors rather than the source's
// printf-and-exit convention.

// ErrNoInput is an error a SampleSource may return when the underlying
// stream ends; the receiver thread stops on it as on any read error
// (spec.md §7: "no retry"). The built-in sources report end of stream with
// io.EOF instead.
var ErrNoInput = fmt.Errorf("sdr: input stream exhausted")

// ConfigError reports an invalid Config (spec.md §6's validate()).
type ConfigError struct {
	Field string
	Msg   string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("sdr: invalid config field %s: %s", e.Field, e.Msg)
}

// USBError wraps a failure opening or filtering USB devices (usb.go), so
// callers can distinguish "no matching device" from a transport failure.
type USBError struct {
	Op  string
	Err error
}

func (e *USBError) Error() string {
	return fmt.Sprintf("sdr: usb %s: %v", e.Op, e.Err)
}

func (e *USBError) Unwrap() error { return e.Err }

// TransferError wraps a failed read from a streaming SampleSource (USB,
// sound-card, serial) distinct from ordinary end-of-stream.
type TransferError struct {
	Source string
	Err    error
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("sdr: %s transfer failed: %v", e.Source, e.Err)
}

func (e *TransferError) Unwrap() error { return e.Err }
