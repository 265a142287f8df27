package logger

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Column width for the service name in console output
const ServiceNameWidth = 20

// Config controls how a Logger is built
type Config struct {
	Level       string
	Development bool
	Encoding    string // json or console
	OutputPaths []string
}

// Logger provides leveled, printf-style logging on top of zap
type Logger struct {
	serviceName string
	version     string

	level zap.AtomicLevel
	zl    *zap.Logger
	// raw writes every level; zl is raw filtered by level
	raw *zap.Logger
}

// New creates a console logger for a service at info level
func New(serviceName, version string) *Logger {
	l, err := NewWithConfig(serviceName, version, Config{
		Level:       "info",
		Development: isTerminal(),
		Encoding:    "console",
		OutputPaths: []string{"stderr"},
	})
	if err != nil {
		// Fall back to a production logger if the config could not be built
		zl, _ := zap.NewProduction()
		return &Logger{serviceName: serviceName, version: version, level: zap.NewAtomicLevel(), zl: zl, raw: zl}
	}
	return l
}

// NewWithConfig creates a logger from an explicit configuration
func NewWithConfig(serviceName, version string, cfg Config) (*Logger, error) {
	if cfg.Level == "" {
		cfg.Level = "info"
	}
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	if cfg.Encoding == "" {
		cfg.Encoding = "json"
	}

	encoderConfig := zapcore.EncoderConfig{
		TimeKey:        "timestamp",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		MessageKey:     "message",
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.StringDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
		EncodeName:     encodeServiceName,
	}
	if cfg.Development {
		encoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	outputPaths := cfg.OutputPaths
	if len(outputPaths) == 0 {
		outputPaths = []string{"stdout"}
	}

	zapCfg := zap.Config{
		Level:             zap.NewAtomicLevelAt(zapcore.DebugLevel),
		Development:       cfg.Development,
		DisableStacktrace: !cfg.Development,
		Encoding:          cfg.Encoding,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputPaths,
		ErrorOutputPaths:  []string{"stderr"},
	}

	raw, err := zapCfg.Build(zap.AddCallerSkip(1))
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}

	raw = raw.Named(serviceName)
	if version != "" {
		raw = raw.With(zap.String("version", version))
	}

	atomic := zap.NewAtomicLevelAt(level)
	return &Logger{
		serviceName: serviceName,
		version:     version,
		level:       atomic,
		zl:          raw.WithOptions(zap.IncreaseLevel(atomic)),
		raw:         raw,
	}, nil
}

// Nop returns a logger that discards everything
func Nop() *Logger {
	zl := zap.NewNop()
	return &Logger{serviceName: "nop", level: zap.NewAtomicLevel(), zl: zl, raw: zl}
}

// isTerminal checks if we're outputting to a terminal (for color support)
func isTerminal() bool {
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	fileInfo, err := os.Stderr.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// encodeServiceName pads or truncates the logger name for aligned console columns
func encodeServiceName(name string, enc zapcore.PrimitiveArrayEncoder) {
	if len(name) > ServiceNameWidth {
		name = name[:ServiceNameWidth-1] + "…"
	}
	enc.AppendString(fmt.Sprintf("%-*s", ServiceNameWidth, name))
}

// ServiceName returns the name the logger was created with
func (l *Logger) ServiceName() string {
	return l.serviceName
}

// SetLevel changes the minimum level at runtime
func (l *Logger) SetLevel(level string) error {
	parsed, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	l.level.SetLevel(parsed)
	return nil
}

// Level returns the current minimum level
func (l *Logger) Level() string {
	return l.level.Level().String()
}

// WithLevel returns a copy of the logger with its own minimum level.
// Changing either logger's level afterwards leaves the other alone.
func (l *Logger) WithLevel(level string) (*Logger, error) {
	parsed, err := zapcore.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level: %w", err)
	}
	atomic := zap.NewAtomicLevelAt(parsed)
	child := &Logger{
		serviceName: l.serviceName,
		version:     l.version,
		level:       atomic,
		zl:          l.raw,
		raw:         l.raw,
	}
	if l.raw.Core().Enabled(zapcore.DebugLevel) {
		child.zl = l.raw.WithOptions(zap.IncreaseLevel(atomic))
	}
	return child, nil
}

// Named returns a child logger whose name is appended to the service name.
// The child shares the parent's level.
func (l *Logger) Named(name string) *Logger {
	return &Logger{
		serviceName: l.serviceName + "." + name,
		version:     l.version,
		level:       l.level,
		zl:          l.zl.Named(name),
		raw:         l.raw.Named(name),
	}
}

// Zap exposes the underlying zap logger
func (l *Logger) Zap() *zap.Logger {
	return l.zl
}

// Sync flushes buffered entries
func (l *Logger) Sync() error {
	return l.zl.Sync()
}

func format(message string, args []interface{}) string {
	if len(args) > 0 {
		return fmt.Sprintf(message, args...)
	}
	return message
}

// Debug logs a debug message with optional formatting
func (l *Logger) Debug(message string, args ...interface{}) {
	if !l.level.Enabled(zapcore.DebugLevel) {
		return
	}
	l.zl.Debug(format(message, args))
}

// Debugf logs a formatted debug message
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.Debug(format, args...)
}

// Info logs an info message with optional formatting
func (l *Logger) Info(message string, args ...interface{}) {
	l.zl.Info(format(message, args))
}

// Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(format, args...)
}

// Warn logs a warning message with optional formatting
func (l *Logger) Warn(message string, args ...interface{}) {
	l.zl.Warn(format(message, args))
}

// Warnf logs a formatted warning message
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.Warn(format, args...)
}

// Error logs an error message with optional formatting
func (l *Logger) Error(message string, args ...interface{}) {
	l.zl.Error(format(message, args))
}

// Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(format, args...)
}

// WithFields returns a context that attaches fields to every entry
func (l *Logger) WithFields(fields map[string]string) *LogContext {
	zf := make([]zap.Field, 0, len(fields))
	for k, v := range fields {
		zf = append(zf, zap.String(k, v))
	}
	return &LogContext{logger: l, zl: l.zl.With(zf...)}
}

// LogContext provides field-based logging
type LogContext struct {
	logger *Logger
	zl     *zap.Logger
}

func (c *LogContext) Debug(message string) {
	c.zl.Debug(message)
}

func (c *LogContext) Info(message string) {
	c.zl.Info(message)
}

func (c *LogContext) Warn(message string) {
	c.zl.Warn(message)
}

func (c *LogContext) Error(message string) {
	c.zl.Error(message)
}
