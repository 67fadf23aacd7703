package logx

import (
	"sort"
	"strconv"
	"time"
)

// Formatter encodes one entry, including the trailing newline.
type Formatter interface {
	Format(entry *LogEntry) ([]byte, error)
}

// LogEntry is what a Formatter receives. Fields are already redacted.
type LogEntry struct {
	Level     Level
	Message   string
	Fields    Fields
	Error     error
	Timestamp time.Time
	Caller    string
}

// Fields is a set of structured key/value pairs
type Fields map[string]interface{}

// sortedKeys returns the keys of f in lexical order so output is stable.
func (f Fields) sortedKeys() []string {
	keys := make([]string, 0, len(f))
	for k := range f {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func formatTimestamp(t time.Time, layout string) string {
	switch layout {
	case "unix":
		return strconv.FormatInt(t.Unix(), 10)
	case "unixmilli":
		return strconv.FormatInt(t.UnixMilli(), 10)
	default:
		return t.Format(layout)
	}
}
