package logging

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/raysh454/webshot/internal/interfaces"
)

// Aliases so callers can depend on this package alone.
type (
	Logger = interfaces.Logger
	Field  = interfaces.Field
)

// ParseLevel maps a settings string onto a threshold, defaulting to info.
func ParseLevel(s string) int {
	switch s {
	case "debug":
		return LevelDebug
	case "warn":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Level thresholds for StdoutLogger. Capture runs emit one debug line per
// state transition, so production deployments usually sit at LevelInfo.
const (
	LevelDebug = iota
	LevelInfo
	LevelWarn
	LevelError
)

// StdoutLogger is a tiny, structured logger. It implements interfaces.Logger
// and prints JSON lines to stdout.
type StdoutLogger struct {
	component string
	minLevel  int
}

// NewStdoutLogger creates a StdoutLogger at LevelDebug. component is optional
// and is included on every line.
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, minLevel: LevelDebug}
}

// NewStdoutLoggerAt creates a StdoutLogger that drops entries below minLevel.
func NewStdoutLoggerAt(component string, minLevel int) *StdoutLogger {
	return &StdoutLogger{component: component, minLevel: minLevel}
}

func (s *StdoutLogger) log(level int, name string, msg string, fields ...interfaces.Field) {
	if level < s.minLevel {
		return
	}
	type outEntry struct {
		Level     string         `json:"level"`
		Msg       string         `json:"msg"`
		Component string         `json:"component,omitempty"`
		Time      string         `json:"time"`
		Fields    map[string]any `json:"fields,omitempty"`
	}
	m := make(map[string]any)
	for _, f := range fields {
		m[f.Key] = f.Value
	}
	entry := outEntry{
		Level:     name,
		Msg:       msg,
		Component: s.component,
		Time:      time.Now().UTC().Format(time.RFC3339),
		Fields:    m,
	}
	enc, err := json.Marshal(entry)
	if err != nil {
		// Fallback simple formatting to stdout if JSON marshal fails
		fmt.Fprintf(os.Stdout, "%s %s %v\n", name, msg, m)
		return
	}
	fmt.Fprintln(os.Stdout, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...interfaces.Field) {
	s.log(LevelDebug, "debug", msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...interfaces.Field) {
	s.log(LevelInfo, "info", msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...interfaces.Field) {
	s.log(LevelWarn, "warn", msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...interfaces.Field) {
	s.log(LevelError, "error", msg, fields...)
}

func (s *StdoutLogger) With(fields ...interfaces.Field) interfaces.Logger {
	child := &StdoutLogger{component: s.component, minLevel: s.minLevel}
	// If fields include a component key, prefer that as the component name
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
			}
		}
	}
	return child
}

// NopLogger discards everything. Useful where a Logger is required but
// output is unwanted, e.g. construction paths in tests.
type NopLogger struct{}

func NewNopLogger() *NopLogger { return &NopLogger{} }

func (NopLogger) Debug(string, ...interfaces.Field) {}
func (NopLogger) Info(string, ...interfaces.Field)  {}
func (NopLogger) Warn(string, ...interfaces.Field)  {}
func (NopLogger) Error(string, ...interfaces.Field) {}

func (n NopLogger) With(...interfaces.Field) interfaces.Logger { return n }
