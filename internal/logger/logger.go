// Package logger provides process-wide logging for netassist.
// It wraps a zap logger behind a small printf-style API. By default only
// warnings and errors are written; --verbose lowers the level to debug so
// users can follow the ingestion and retrieval pipeline.
package logger

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Output formats accepted by Init.
const (
	FormatConsole = "console"
	FormatJSON    = "json"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	format            = FormatConsole
	base              = zapcore.WarnLevel
	level             = zap.NewAtomicLevelAt(zapcore.WarnLevel)
	sugar   *zap.SugaredLogger
)

func init() {
	rebuild()
}

// Options configures the global logger.
type Options struct {
	// Level is one of debug, info, warn, error. Empty keeps the current level.
	Level string
	// Format is "console" or "json". Empty keeps the current format.
	Format string
	// Output overrides the destination. Nil keeps the current writer.
	Output io.Writer
}

// Init reconfigures the global logger.
func Init(opts Options) error {
	mu.Lock()
	defer mu.Unlock()

	if opts.Level != "" {
		lvl, err := zapcore.ParseLevel(strings.ToLower(opts.Level))
		if err != nil {
			return fmt.Errorf("parse log level %q: %w", opts.Level, err)
		}
		base = lvl
		if !verbose {
			level.SetLevel(lvl)
		}
	}
	if opts.Format != "" {
		switch opts.Format {
		case FormatConsole, FormatJSON:
			format = opts.Format
		default:
			return fmt.Errorf("unknown log format %q", opts.Format)
		}
	}
	if opts.Output != nil {
		output = opts.Output
	}
	rebuild()
	return nil
}

// rebuild must be called with mu held (or from init).
func rebuild() {
	var enc zapcore.Encoder
	if format == FormatJSON {
		cfg := zap.NewProductionEncoderConfig()
		cfg.EncodeTime = zapcore.ISO8601TimeEncoder
		enc = zapcore.NewJSONEncoder(cfg)
	} else {
		enc = zapcore.NewConsoleEncoder(zapcore.EncoderConfig{
			LevelKey:         "level",
			MessageKey:       "msg",
			LineEnding:       zapcore.DefaultLineEnding,
			ConsoleSeparator: " ",
			EncodeLevel: func(l zapcore.Level, pae zapcore.PrimitiveArrayEncoder) {
				pae.AppendString("[" + l.CapitalString() + "]")
			},
		})
	}
	core := zapcore.NewCore(enc, zapcore.AddSync(output), level)
	sugar = zap.New(core).Sugar()
}

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
	if v {
		level.SetLevel(zapcore.DebugLevel)
	} else {
		level.SetLevel(base)
	}
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
	rebuild()
}

// Zap returns the underlying logger for libraries that take a *zap.Logger.
func Zap() *zap.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return sugar.Desugar()
}

// Debug logs a debug message.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf(format, args...)
}

// Section prints a section header at debug level.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Debugf("=== %s ===", name)
}

// Info logs an informational message.
func Info(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Infof(format, args...)
}

// Warn logs a warning.
func Warn(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Warnf(format, args...)
}

// Error logs an error.
func Error(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	sugar.Errorf(format, args...)
}

// Sync flushes buffered log entries.
func Sync() {
	mu.RLock()
	defer mu.RUnlock()
	_ = sugar.Sync()
}
