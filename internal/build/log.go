package build

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/btcsuite/btclog"
	btclogv2 "github.com/btcsuite/btclog/v2"
)

// LogConfig controls where log output goes and how verbose it is.
type LogConfig struct {
	// Level is the minimum level emitted (trace, debug, info, warn,
	// error, critical, off).
	Level string

	// File is an optional path for a secondary log stream. Empty disables
	// file logging. The file is size-rotated with gzip'd archives.
	File string

	// MaxLogFiles is the number of rotated files kept. Zero uses the
	// package default.
	MaxLogFiles int

	// MaxLogFileSize is the rotation threshold in megabytes. Zero uses
	// the package default.
	MaxLogFileSize int
}

// DefaultLogConfig returns the standard console-only info-level setup.
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:          "info",
		MaxLogFiles:    DefaultMaxLogFiles,
		MaxLogFileSize: DefaultMaxLogFileSize,
	}
}

// LogManager owns the root handler set and hands out per-subsystem loggers.
// All loggers share the same output streams and level.
type LogManager struct {
	root    *HandlerSet
	closers []io.Closer
}

// NewLogManager creates a manager writing to stderr and, if configured, a log
// file. The returned manager must be Closed to flush file streams.
func NewLogManager(cfg LogConfig) (*LogManager, error) {
	level, ok := btclog.LevelFromString(cfg.Level)
	if !ok {
		return nil, fmt.Errorf("unknown log level %q", cfg.Level)
	}

	handlers := []btclogv2.Handler{
		btclogv2.NewDefaultHandler(os.Stderr),
	}

	var closers []io.Closer
	if cfg.File != "" {
		writer := NewRotatingLogWriter()
		err := writer.InitLogRotator(&LogRotatorConfig{
			LogDir:         filepath.Dir(cfg.File),
			Filename:       filepath.Base(cfg.File),
			MaxLogFiles:    cfg.MaxLogFiles,
			MaxLogFileSize: cfg.MaxLogFileSize,
		})
		if err != nil {
			return nil, fmt.Errorf("init log rotator: %w", err)
		}

		handlers = append(handlers, btclogv2.NewDefaultHandler(writer))
		closers = append(closers, writer)
	}

	root := NewHandlerSet(handlers...)
	root.SetLevel(level)

	return &LogManager{
		root:    root,
		closers: closers,
	}, nil
}

// Logger returns a logger tagged with the given subsystem code.
func (m *LogManager) Logger(tag string) btclogv2.Logger {
	return btclogv2.NewSLogger(m.root.SubSystem(tag))
}

// SetLevel changes the level on every stream at once.
func (m *LogManager) SetLevel(level btclog.Level) {
	m.root.SetLevel(level)
}

// Close releases any file streams held by the manager.
func (m *LogManager) Close() error {
	var firstErr error
	for _, c := range m.closers {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}
