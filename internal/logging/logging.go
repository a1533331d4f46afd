// Package logging builds the process logger.
package logging

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"
)

// New returns a timestamped logger at level. Development output is the
// human-readable console format; everything else is JSON.
func New(out io.Writer, level string, development bool) zerolog.Logger {
	if out == nil {
		out = os.Stderr
	}
	if development {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: "15:04:05"}
	}
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(level)))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(out).Level(lvl).With().Timestamp().Logger()
}

type gormWriter struct{ l zerolog.Logger }

func (w gormWriter) Printf(format string, args ...any) {
	w.l.Warn().Str("component", "gorm").Msgf(format, args...)
}

// Gorm routes gorm's slow-query and error log through l. Missing rows are
// an expected outcome of lookups and are not logged.
func Gorm(l zerolog.Logger) gormlogger.Interface {
	return gormlogger.New(gormWriter{l}, gormlogger.Config{
		SlowThreshold:             200 * time.Millisecond,
		LogLevel:                  gormlogger.Warn,
		IgnoreRecordNotFoundError: true,
	})
}
