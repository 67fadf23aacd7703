package logx

import (
	"fmt"
	"strings"
)

const (
	ansiReset      = "\033[0m"
	ansiRed        = "\033[31m"
	ansiCyan       = "\033[36m"
	ansiGray       = "\033[90m"
	ansiWhite      = "\033[97m"
	ansiBoldRed    = "\033[1;31m"
	ansiBoldYellow = "\033[1;33m"
	ansiBoldCyan   = "\033[1;36m"
	ansiBoldGreen  = "\033[1;32m"
)

var levelColors = map[Level]string{
	LevelDebug: ansiBoldCyan,
	LevelInfo:  ansiBoldGreen,
	LevelWarn:  ansiBoldYellow,
	LevelError: ansiBoldRed,
	LevelFatal: ansiBoldRed,
}

// ConsoleFormatter writes human-readable lines:
//
//	2024-05-01T10:00:00Z [INFO ] message key=value key=value
//	  ╰─→ error: cause
type ConsoleFormatter struct {
	config *Config
}

// NewConsoleFormatter creates a console formatter
func NewConsoleFormatter(config *Config) *ConsoleFormatter {
	return &ConsoleFormatter{config: config}
}

// Format implements Formatter
func (f *ConsoleFormatter) Format(entry *LogEntry) ([]byte, error) {
	var b strings.Builder

	if f.config.EnableTimestamp {
		b.WriteString(f.paint(ansiGray, formatTimestamp(entry.Timestamp, f.config.TimeFormat)))
		b.WriteByte(' ')
	}

	b.WriteString(f.paint(levelColors[entry.Level], fmt.Sprintf("[%-5s]", entry.Level.String())))
	b.WriteByte(' ')

	if f.config.EnableCaller && entry.Caller != "" {
		b.WriteString(f.paint(ansiGray, "["+entry.Caller+"]"))
		b.WriteByte(' ')
	}

	b.WriteString(f.paint(ansiWhite, entry.Message))

	if len(entry.Fields) > 0 {
		pairs := make([]string, 0, len(entry.Fields))
		for _, k := range entry.Fields.sortedKeys() {
			if k == "error" && entry.Error != nil {
				continue
			}
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, entry.Fields[k]))
		}
		if len(pairs) > 0 {
			b.WriteByte(' ')
			b.WriteString(f.paint(ansiCyan, strings.Join(pairs, " ")))
		}
	}

	if entry.Error != nil {
		b.WriteByte('\n')
		b.WriteString(f.paint(ansiRed, "  ╰─→ error: "+entry.Error.Error()))
	}

	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func (f *ConsoleFormatter) paint(color, s string) string {
	if !f.config.EnableColors || color == "" {
		return s
	}
	return color + s + ansiReset
}
