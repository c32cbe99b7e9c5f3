// Package logging sets up the logfmt logger shared by all commands.
package logging

import (
	"fmt"
	"io"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

const (
	LevelDebug = "debug"
	LevelInfo  = "info"
	LevelWarn  = "warn"
	LevelError = "error"
)

// New returns a logfmt logger writing to w that drops everything below lvl.
// Every line carries a UTC timestamp and the caller.
func New(w io.Writer, lvl string) (log.Logger, error) {
	var allow level.Option
	switch lvl {
	case LevelDebug:
		allow = level.AllowDebug()
	case LevelInfo, "":
		allow = level.AllowInfo()
	case LevelWarn:
		allow = level.AllowWarn()
	case LevelError:
		allow = level.AllowError()
	default:
		return nil, fmt.Errorf("unknown log level %q", lvl)
	}

	logger := log.NewLogfmtLogger(log.NewSyncWriter(w))
	logger = level.NewFilter(logger, allow)
	return log.With(logger, "ts", log.DefaultTimestampUTC, "caller", log.DefaultCaller), nil
}
