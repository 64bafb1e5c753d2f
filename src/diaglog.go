package sdr

import (
	"io"

	charmlog "github.com/charmbracelet/log"
)

// DiagLogger is the structured, leveled diagnostic log surface of
// SPEC_FULL.md §4.9: configuration warnings, lifecycle transitions, and
// sample-source/USB errors, kept separate from the append-only $TIME/$CH
// receiver log (recvlog.go). Modelled directly on *charmlog.Logger. When no
// diagnostic logger is supplied (Config.Diag is nil), messages are discarded.
type DiagLogger interface {
	Debug(msg interface{}, kv ...interface{})
	Info(msg interface{}, kv ...interface{})
	Warn(msg interface{}, kv ...interface{})
	Error(msg interface{}, kv ...interface{})
}

// NewDiagLogger wraps charmbracelet/log with the prefix and level this
// package's components use when reporting to w. Pass os.Stderr for a CLI
// front end, or an io.Discard-backed logger in tests.
func NewDiagLogger(w io.Writer) DiagLogger {
	l := charmlog.NewWithOptions(w, charmlog.Options{
		ReportTimestamp: true,
		Prefix:          "sdr",
	})
	return l
}

// discardLogger is used when Config.Diag is nil.
type discardLogger struct{}

func (discardLogger) Debug(interface{}, ...interface{}) {}
func (discardLogger) Info(interface{}, ...interface{})  {}
func (discardLogger) Warn(interface{}, ...interface{})  {}
func (discardLogger) Error(interface{}, ...interface{}) {}
