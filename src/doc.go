// Package sdr is the runtime core of a software-defined GNSS receiver: an
// IF-sample producer, a bounded shared ring buffer, a bank of per-signal
// tracking-channel workers, and the acquisition scheduler and backpressure
// discipline that ties them together.
//
// The per-channel DSP kernel (correlators, PLL/DLL, bit/frame sync,
// navigation-message decoding), USB transport, and status formatting are
// kept as separate concerns; this package calls into a DSP kernel through
// a narrow contract (the Kernel interface in channel.go). kernel.go holds
// a minimal built-in stand-in kernel used when none is supplied.
package sdr
