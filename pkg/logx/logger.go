package logx

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Logger writes leveled, structured entries. It is safe for concurrent use.
type Logger struct {
	mu        sync.Mutex
	config    *Config
	formatter Formatter
	writer    io.Writer
	redact    map[string]struct{}
	exitFunc  func(int)
}

// NewLogger creates a logger. A nil config means DefaultConfig.
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}

	l := &Logger{
		config:   config,
		writer:   config.Output,
		redact:   make(map[string]struct{}, len(config.RedactKeys)),
		exitFunc: os.Exit,
	}
	if l.writer == nil {
		l.writer = os.Stdout
	}
	for _, k := range config.RedactKeys {
		if k = strings.ToLower(strings.TrimSpace(k)); k != "" {
			l.redact[k] = struct{}{}
		}
	}

	switch config.Format {
	case FormatJSON:
		l.formatter = NewJSONFormatter(config)
	case FormatCloudWatch:
		l.formatter = NewCloudWatchFormatter(config)
	default:
		l.formatter = NewConsoleFormatter(config)
	}
	return l
}

// SetLevel sets the minimum level written
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// GetLevel returns the minimum level written
func (l *Logger) GetLevel() Level {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config.Level
}

// SetOutput sets the output writer. nil restores os.Stdout.
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if w == nil {
		w = os.Stdout
	}
	l.writer = w
}

// SetExitFunc replaces the function called after a fatal entry
func (l *Logger) SetExitFunc(fn func(int)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.exitFunc = fn
}

// WithField starts an entry with one field
func (l *Logger) WithField(key string, value interface{}) *Entry {
	return newEntry(l).WithField(key, value)
}

// WithFields starts an entry with fields
func (l *Logger) WithFields(fields Fields) *Entry {
	return newEntry(l).WithFields(fields)
}

// WithError starts an entry carrying err
func (l *Logger) WithError(err error) *Entry {
	return newEntry(l).WithError(err)
}

func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	if !l.GetLevel().Enabled(level) {
		return
	}

	entry := &LogEntry{
		Level:     level,
		Message:   msg,
		Fields:    l.redacted(fields),
		Error:     err,
		Timestamp: time.Now(),
	}
	if l.config.EnableCaller {
		entry.Caller = caller(3)
	}

	line, ferr := l.formatter.Format(entry)
	if ferr != nil {
		fmt.Fprintf(os.Stderr, "logx: format: %v\n", ferr)
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, werr := l.writer.Write(line); werr != nil {
		fmt.Fprintf(os.Stderr, "logx: write: %v\n", werr)
	}
}

// redacted returns fields with sensitive values replaced. fields is never
// modified.
func (l *Logger) redacted(fields Fields) Fields {
	if len(fields) == 0 || len(l.redact) == 0 {
		return fields
	}
	out := make(Fields, len(fields))
	for k, v := range fields {
		if _, ok := l.redact[strings.ToLower(k)]; ok {
			v = Redacted
		}
		out[k] = v
	}
	return out
}

func (l *Logger) exit(code int) {
	l.mu.Lock()
	fn := l.exitFunc
	l.mu.Unlock()
	fn(code)
}

func caller(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "???"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}
