// Package logger builds the LogHarbour logger shared by the server, its
// middleware and the request handlers.
package logger

import (
	"io"
	"os"

	"github.com/remiges-tech/logharbour/logharbour"
)

// New returns a logger for appName writing JSON lines to w, or to stdout
// when w is nil. debug lowers the priority threshold to Debug2 so the
// Debug0 entries written around store queries show up too.
func New(appName string, debug bool, w io.Writer) *logharbour.Logger {
	if w == nil {
		w = logharbour.NewFallbackWriter(os.Stdout, os.Stderr)
	}
	minPriority := logharbour.DefaultPriority
	if debug {
		minPriority = logharbour.Debug2
	}
	lctx := logharbour.NewLoggerContext(minPriority)
	return logharbour.NewLogger(lctx, appName, w)
}
