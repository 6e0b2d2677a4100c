// Package logging builds the zerolog loggers used by the command line.
package logging

import (
	"io"
	"os"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
)

// Options select the logger output.
type Options struct {
	// Level is a zerolog level name; empty means warn.
	Level string

	// Format is console, json or auto. Auto picks console on a terminal.
	Format string

	NoColor bool
}

// New returns a logger writing to w.
func New(w io.Writer, opts Options) (zerolog.Logger, error) {
	level := zerolog.WarnLevel
	if opts.Level != "" {
		var err error
		if level, err = zerolog.ParseLevel(opts.Level); err != nil {
			return zerolog.Nop(), err
		}
	}
	if useConsole(w, opts.Format) {
		w = zerolog.ConsoleWriter{
			Out:        w,
			NoColor:    opts.NoColor || !isTerminal(w),
			TimeFormat: time.Kitchen,
		}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger(), nil
}

func useConsole(w io.Writer, format string) bool {
	switch format {
	case "console":
		return true
	case "json":
		return false
	}
	return isTerminal(w)
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
