// Package logutils builds the process-wide zerolog logger.
package logutils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// New returns a JSON logger at level. With a file path, events are appended
// to that file (parent directories are created) and the returned func closes
// it; an empty path logs to stderr so command output on stdout stays clean.
//
// level is matched case-insensitively; an empty level means info.
func New(level string, file string) (zerolog.Logger, func(), error) {
	noop := func() {}

	lvl, err := ParseLevel(level)
	if err != nil {
		return zerolog.Nop(), noop, err
	}

	var w io.Writer = os.Stderr
	closer := noop
	if file != "" {
		f, err := openAppend(file)
		if err != nil {
			return zerolog.Nop(), noop, err
		}
		w = f
		closer = func() {
			_ = f.Sync()
			_ = f.Close()
		}
	}

	return zerolog.New(w).Level(lvl).With().Timestamp().Logger(), closer, nil
}

// ParseLevel maps a --log-level value to a zerolog level.
func ParseLevel(level string) (zerolog.Level, error) {
	level = strings.ToLower(strings.TrimSpace(level))
	switch level {
	case "":
		return zerolog.InfoLevel, nil
	case "warning":
		return zerolog.WarnLevel, nil
	}

	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.NoLevel, fmt.Errorf("unknown log level %q", level)
	}
	return lvl, nil
}

func openAppend(file string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}
	f, err := os.OpenFile(file, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}
