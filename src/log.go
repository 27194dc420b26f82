package qrtone

import (
	"io"

	"github.com/charmbracelet/log"
)

// discardLogger is the modem's default logger: it writes to io.Discard, so
// decode-path events are only emitted once a caller opts in via SetLogger.
// The per-sample DSP path makes no logging calls.
func discardLogger() *log.Logger {
	return log.NewWithOptions(io.Discard, log.Options{})
}
