// Package log provides leveled, structured logging for filesort,
// backed by logrus. A package-level default logger covers the common
// case; NewLogger builds isolated instances for tests and tools.
package log

import (
	"io"
	"os"

	"filesort/internal/errors"

	"github.com/sirupsen/logrus"
)

var (
	isDebug = false
	logger  = NewLogger()
)

// Field is a single structured logging key/value pair.
type Field struct {
	Key   string
	Value interface{}
}

// F constructs a Field.
func F(key string, value interface{}) Field {
	return Field{Key: key, Value: value}
}

// Logger wraps a logrus logger together with an optional log file handle.
type Logger struct {
	l    *logrus.Logger
	file *os.File
}

// Option configures a Logger.
type Option func(*Logger)

// WithOutput directs log records to w instead of stdout.
func WithOutput(w io.Writer) Option {
	return func(lg *Logger) {
		lg.l.SetOutput(w)
	}
}

// WithFile tees log records to stdout and the named file, creating or
// appending as needed. A file that cannot be opened is reported on
// stdout and otherwise ignored.
func WithFile(path string) Option {
	return func(lg *Logger) {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			lg.l.WithField("path", path).Warnf("cannot open log file: %v", err)
			return
		}
		lg.file = f
		lg.l.SetOutput(io.MultiWriter(os.Stdout, f))
	}
}

// WithJSON switches the logger to JSON-formatted records.
func WithJSON() Option {
	return func(lg *Logger) {
		lg.l.SetFormatter(&logrus.JSONFormatter{})
	}
}

// NewLogger creates a logger writing text records to stdout.
func NewLogger(opts ...Option) *Logger {
	l := logrus.New()
	l.SetOutput(os.Stdout)
	l.SetLevel(logrus.DebugLevel) // debug gating is handled by isDebug
	l.SetFormatter(&logrus.TextFormatter{
		DisableColors: true,
		FullTimestamp: true,
	})
	lg := &Logger{l: l}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Configure replaces the package default logger.
func Configure(opts ...Option) {
	old := logger
	logger = NewLogger(opts...)
	if old.file != nil {
		old.file.Close()
	}
}

// SetDebug toggles debug-level logging globally.
func SetDebug(debug bool) {
	isDebug = debug
}

// Close releases the log file, if any.
func (lg *Logger) Close() error {
	if lg.file != nil {
		return lg.file.Close()
	}
	return nil
}

// Entry is a logger with fields attached.
type Entry struct {
	e *logrus.Entry
}

// With returns an Entry carrying the given fields.
func (lg *Logger) With(fields ...Field) *Entry {
	return &Entry{e: lg.l.WithFields(toLogrus(fields))}
}

// With adds further fields to the entry.
func (en *Entry) With(fields ...Field) *Entry {
	return &Entry{e: en.e.WithFields(toLogrus(fields))}
}

func toLogrus(fields []Field) logrus.Fields {
	lf := make(logrus.Fields, len(fields))
	for _, f := range fields {
		lf[f.Key] = f.Value
	}
	return lf
}

// Info logs at info level.
func (en *Entry) Info(args ...interface{}) { en.e.Info(args...) }

// Infof logs a formatted message at info level.
func (en *Entry) Infof(format string, args ...interface{}) { en.e.Infof(format, args...) }

// Warn logs at warning level.
func (en *Entry) Warn(args ...interface{}) { en.e.Warn(args...) }

// Warnf logs a formatted message at warning level.
func (en *Entry) Warnf(format string, args ...interface{}) { en.e.Warnf(format, args...) }

// Error logs at error level.
func (en *Entry) Error(args ...interface{}) { en.e.Error(args...) }

// Errorf logs a formatted message at error level.
func (en *Entry) Errorf(format string, args ...interface{}) { en.e.Errorf(format, args...) }

// Debug logs at debug level when debug logging is enabled.
func (en *Entry) Debug(args ...interface{}) {
	if isDebug {
		en.e.Debug(args...)
	}
}

// Instance-level logging methods.

func (lg *Logger) Info(args ...interface{})                  { lg.l.Info(args...) }
func (lg *Logger) Infof(format string, args ...interface{})  { lg.l.Infof(format, args...) }
func (lg *Logger) Warn(args ...interface{})                  { lg.l.Warn(args...) }
func (lg *Logger) Warnf(format string, args ...interface{})  { lg.l.Warnf(format, args...) }
func (lg *Logger) Error(args ...interface{})                 { lg.l.Error(args...) }
func (lg *Logger) Errorf(format string, args ...interface{}) { lg.l.Errorf(format, args...) }

// Debug logs at debug level when debug logging is enabled.
func (lg *Logger) Debug(args ...interface{}) {
	if isDebug {
		lg.l.Debug(args...)
	}
}

// Debugf logs a formatted message at debug level when enabled.
func (lg *Logger) Debugf(format string, args ...interface{}) {
	if isDebug {
		lg.l.Debugf(format, args...)
	}
}

// Package-level logging through the default logger.

func Info(format string, args ...interface{})  { logger.l.Infof(format, args...) }
func Warn(format string, args ...interface{})  { logger.l.Warnf(format, args...) }
func Error(format string, args ...interface{}) { logger.l.Errorf(format, args...) }

// Debug logs through the default logger when debug logging is enabled.
func Debug(format string, args ...interface{}) {
	if isDebug {
		logger.l.Debugf(format, args...)
	}
}

// LogWithFields returns an entry on the default logger with fields attached.
func LogWithFields(fields ...Field) *Entry {
	return logger.With(fields...)
}

// LogWithError returns an entry on the default logger carrying the error
// plus any structured detail the application error types provide.
func LogWithError(err error) *Entry {
	if err == nil {
		return logger.With(F("error", "<nil>"))
	}

	fields := []Field{F("error", err.Error())}

	var fileErr *errors.FileError
	var configErr *errors.ConfigError
	var appErr *errors.ApplicationError
	switch {
	case errors.As(err, &fileErr):
		fields = append(fields, F("path", fileErr.Path()), F("error_kind", int(fileErr.Kind())))
	case errors.As(err, &configErr):
		fields = append(fields, F("param", configErr.Param()), F("error_kind", int(configErr.Kind())))
	case errors.As(err, &appErr):
		fields = append(fields, F("error_kind", int(appErr.Kind())))
	}

	return logger.With(fields...)
}

// LogError is a convenience for LogWithError(err).Error(msg).
func LogError(err error, msg string) {
	LogWithError(err).Error(msg)
}
