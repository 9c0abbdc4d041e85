package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// FileName is the log file kept inside the logs directory.
const FileName = "sigillum.log"

// Logger writes readable lines to the console and JSON lines to
// <logs>/sigillum.log so a failed build can be inspected after the terminal
// scrolls away.
type Logger struct {
	*zap.Logger
	file *os.File
}

type options struct {
	verbose bool
	console io.Writer
}

// Option customizes logger construction.
type Option func(*options)

// WithVerbose enables debug level output.
func WithVerbose(verbose bool) Option {
	return func(o *options) { o.verbose = verbose }
}

// WithConsole redirects console output. io.Discard silences it, which the
// dashboard needs while it owns the terminal.
func WithConsole(w io.Writer) Option {
	return func(o *options) {
		if w != nil {
			o.console = w
		}
	}
}

// New creates (or reuses) the log file inside logDir.
func New(logDir string, opts ...Option) (*Logger, error) {
	o := options{console: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("logging: ensure log dir: %w", err)
	}
	path := filepath.Join(logDir, FileName)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("logging: open log file: %w", err)
	}

	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if o.verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	fileEnc := zap.NewProductionEncoderConfig()
	fileEnc.EncodeTime = zapcore.ISO8601TimeEncoder
	core := zapcore.NewTee(
		consoleCore(o.console, level),
		zapcore.NewCore(zapcore.NewJSONEncoder(fileEnc), zapcore.AddSync(f), level),
	)
	return &Logger{Logger: zap.New(core), file: f}, nil
}

// Console returns a logger that only writes to stderr. Programs that must not
// leave files behind use it.
func Console(verbose bool) *zap.Logger {
	level := zap.NewAtomicLevelAt(zapcore.InfoLevel)
	if verbose {
		level.SetLevel(zapcore.DebugLevel)
	}
	return zap.New(consoleCore(os.Stderr, level))
}

func consoleCore(w io.Writer, level zap.AtomicLevel) zapcore.Core {
	enc := zap.NewDevelopmentEncoderConfig()
	enc.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05")
	enc.EncodeLevel = zapcore.CapitalLevelEncoder
	return zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
}

// Close flushes buffered entries and releases the file handle.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	_ = l.Logger.Sync()
	return l.file.Close()
}

// Path returns the log file location.
func (l *Logger) Path() string {
	if l == nil || l.file == nil {
		return ""
	}
	return l.file.Name()
}
