package logx

import (
	"encoding/json"
	"time"
)

// jsonLayout names the reserved keys of a JSON line.
type jsonLayout struct {
	level, message, time string
	errorType            bool
}

// JSONFormatter writes one JSON object per line.
type JSONFormatter struct {
	config *Config
	layout jsonLayout
}

// NewJSONFormatter uses level/message/timestamp keys.
func NewJSONFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config, layout: jsonLayout{level: "level", message: "message", time: "timestamp"}}
}

// NewCloudWatchFormatter uses level/msg/time keys and always writes an
// RFC3339Nano time.
func NewCloudWatchFormatter(config *Config) *JSONFormatter {
	return &JSONFormatter{config: config, layout: jsonLayout{level: "level", message: "msg", time: "time", errorType: true}}
}

// Format implements Formatter
func (f *JSONFormatter) Format(entry *LogEntry) ([]byte, error) {
	out := make(map[string]interface{}, len(entry.Fields)+5)

	// Fields first so reserved keys win on collision.
	for k, v := range entry.Fields {
		out[k] = v
	}

	out[f.layout.level] = entry.Level.String()
	out[f.layout.message] = entry.Message

	switch {
	case f.layout.errorType:
		out[f.layout.time] = entry.Timestamp.Format(time.RFC3339Nano)
	case !f.config.EnableTimestamp:
	case f.config.TimeFormat == "unix":
		out[f.layout.time] = entry.Timestamp.Unix()
	case f.config.TimeFormat == "unixmilli":
		out[f.layout.time] = entry.Timestamp.UnixMilli()
	default:
		out[f.layout.time] = entry.Timestamp.Format(time.RFC3339Nano)
	}

	if f.config.EnableCaller && entry.Caller != "" {
		out["caller"] = entry.Caller
	}
	if entry.Error != nil {
		out["error"] = entry.Error.Error()
		if f.layout.errorType {
			out["error_type"] = "error"
		}
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}
