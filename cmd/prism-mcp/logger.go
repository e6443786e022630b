package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lydakis/prism-mcp/internal/config"
	"github.com/lydakis/prism-mcp/internal/paths"
	"github.com/rs/zerolog"
)

const autoLogFile = "auto"

var stderr io.Writer = os.Stderr

// newLogger builds the process logger. Stdout carries the MCP stream, so
// logs go to stderr or a file, never stdout.
func newLogger(cfg config.LogConfig) (zerolog.Logger, func(), error) {
	level := zerolog.InfoLevel
	if raw := strings.TrimSpace(cfg.Level); raw != "" {
		parsed, err := zerolog.ParseLevel(strings.ToLower(raw))
		if err != nil {
			return zerolog.Nop(), func() {}, config.Errorf(config.EnvLogLevel, "invalid level %q", raw)
		}
		level = parsed
	}

	output := io.Writer(zerolog.ConsoleWriter{
		Out:        stderr,
		NoColor:    true,
		TimeFormat: time.RFC3339,
	})
	closeFn := func() {}

	if path := strings.TrimSpace(cfg.File); path != "" {
		if path == autoLogFile {
			path = paths.LogFile()
		}
		if err := paths.EnsureDir(filepath.Dir(path)); err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("creating log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return zerolog.Nop(), closeFn, fmt.Errorf("opening log file: %w", err)
		}
		output = file
		closeFn = func() { _ = file.Close() }
	}

	logger := zerolog.New(output).Level(level).With().Timestamp().Str("app", "prism-mcp").Logger()
	return logger, closeFn, nil
}
