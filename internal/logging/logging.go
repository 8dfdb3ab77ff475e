package logging

import (
	"fmt"
	"io"
	"time"

	"github.com/consensys/gnark/logger"
	"github.com/rs/zerolog"
)

// New builds the root logger at level and installs it as gnark's logger,
// so circuit compilation and proving report through the same sink.
func New(level string, w io.Writer) (zerolog.Logger, error) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level %q: %w", level, err)
	}
	l := zerolog.New(w).Level(lvl).With().Timestamp().Logger()
	logger.Set(l)
	return l, nil
}

// Console wraps w in a human-readable writer for terminals.
func Console(w io.Writer) io.Writer {
	return zerolog.ConsoleWriter{Out: w, TimeFormat: time.Kitchen}
}
