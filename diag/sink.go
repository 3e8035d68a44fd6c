// File: diag/sink.go
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0

package diag

import "github.com/momentics/hioload-reqrep/api"

// LogSink forwards connection events to a Logger at verbose level.
// Per-connection noise (EOFs, resets) stays out of normal output while
// remaining one -v away when debugging a misbehaving peer.
type LogSink struct {
	log *Logger
}

// NewLogSink wraps log as an api.Sink.
func NewLogSink(log *Logger) *LogSink {
	return &LogSink{log: log}
}

// Event implements api.Sink.
func (s *LogSink) Event(msg string) {
	s.log.Verbose("%s", msg)
}

// Nop returns a sink that discards every event.
func Nop() api.Sink {
	return api.NopSink{}
}
