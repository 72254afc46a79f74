// Package logger builds the structured loggers used by the command line tools.
package logger

import (
	"io"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}

type Config struct {
	// Level is one of debug, info, warn or error.
	Level  string
	Pretty bool
}

// New returns a logger writing to w.
// Pretty selects human readable console output instead of JSON lines.
func New(w io.Writer, cfg Config) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		return zerolog.Nop(), errors.Wrap(err, "")
	}
	if cfg.Level == "" {
		level = zerolog.InfoLevel
	}
	if cfg.Pretty {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: "15:04:05"}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Caller().Logger(), nil
}
