// Package logx is the process-wide structured logger. The package-level
// functions write through a default Logger configured from LOG_* variables.
package logx

import (
	"context"
	"fmt"
	"io"
)

var defaultLogger = NewLogger(LoadFromEnv())

// SetDefaultLogger replaces the logger behind the package-level functions
func SetDefaultLogger(logger *Logger) { defaultLogger = logger }

// GetDefaultLogger returns the logger behind the package-level functions
func GetDefaultLogger() *Logger { return defaultLogger }

// SetLevel sets the level of the default logger
func SetLevel(level Level) { defaultLogger.SetLevel(level) }

// SetOutput sets the output of the default logger. nil restores os.Stdout.
func SetOutput(w io.Writer) { defaultLogger.SetOutput(w) }

func Debug(msg string) { defaultLogger.log(LevelDebug, msg, nil, nil) }
func Info(msg string)  { defaultLogger.log(LevelInfo, msg, nil, nil) }
func Warn(msg string)  { defaultLogger.log(LevelWarn, msg, nil, nil) }
func Error(msg string) { defaultLogger.log(LevelError, msg, nil, nil) }

// Fatal logs and exits with status 1
func Fatal(msg string) {
	defaultLogger.log(LevelFatal, msg, nil, nil)
	defaultLogger.exit(1)
}

func Debugf(format string, args ...interface{}) { Debug(fmt.Sprintf(format, args...)) }
func Infof(format string, args ...interface{})  { Info(fmt.Sprintf(format, args...)) }
func Warnf(format string, args ...interface{})  { Warn(fmt.Sprintf(format, args...)) }
func Errorf(format string, args ...interface{}) { Error(fmt.Sprintf(format, args...)) }
func Fatalf(format string, args ...interface{}) { Fatal(fmt.Sprintf(format, args...)) }

// WithFields starts an entry on the default logger
func WithFields(fields Fields) *Entry { return defaultLogger.WithFields(fields) }

// WithField starts an entry on the default logger
func WithField(key string, value interface{}) *Entry { return defaultLogger.WithField(key, value) }

// WithError starts an entry on the default logger
func WithError(err error) *Entry { return defaultLogger.WithError(err) }

// WithContext starts an entry on the default logger carrying ctx's fields
func WithContext(ctx context.Context) *Entry { return newEntry(defaultLogger).WithContext(ctx) }
