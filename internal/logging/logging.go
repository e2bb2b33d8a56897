package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/raysh454/miru/internal/interfaces"
)

// Logger and Field alias the shared contracts so call sites only need to
// import this package.
type (
	Logger = interfaces.Logger
	Field  = interfaces.Field
)

// Level controls which entries a StdoutLogger emits.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

// StdoutLogger is a tiny, structured logger used during development and in
// the bundled binaries. It implements interfaces.Logger and prints JSON
// lines to stdout.
type StdoutLogger struct {
	component string
	level     Level
	fields    []Field
	out       io.Writer
}

// NewStdoutLogger creates a new StdoutLogger. component is optional and is
// carried into every entry and every child logger.
func NewStdoutLogger(component string) *StdoutLogger {
	return &StdoutLogger{component: component, level: LevelInfo, out: os.Stdout}
}

// SetLevel lowers or raises the emission threshold. Entries below the level
// are dropped.
func (s *StdoutLogger) SetLevel(level Level) *StdoutLogger {
	s.level = level
	return s
}

// SetOutput redirects entries, for binaries that reserve stdout for their
// own output. Child loggers created afterwards inherit the writer.
func (s *StdoutLogger) SetOutput(w io.Writer) *StdoutLogger {
	if w != nil {
		s.out = w
	}
	return s
}

func (s *StdoutLogger) log(level Level, name string, msg string, fields ...Field) {
	if level < s.level {
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
	for _, f := range s.fields {
		m[f.Key] = f.Value
	}
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
		// Fallback simple formatting if JSON marshal fails
		fmt.Fprintf(s.out, "%s %s %v\n", name, msg, m)
		return
	}
	fmt.Fprintln(s.out, string(enc))
}

func (s *StdoutLogger) Debug(msg string, fields ...Field) {
	s.log(LevelDebug, "debug", msg, fields...)
}

func (s *StdoutLogger) Info(msg string, fields ...Field) {
	s.log(LevelInfo, "info", msg, fields...)
}

func (s *StdoutLogger) Warn(msg string, fields ...Field) {
	s.log(LevelWarn, "warn", msg, fields...)
}

func (s *StdoutLogger) Error(msg string, fields ...Field) {
	s.log(LevelError, "error", msg, fields...)
}

// With returns a child logger carrying the given fields on every entry. A
// "component" field renames the child instead of being duplicated into the
// field map.
func (s *StdoutLogger) With(fields ...Field) Logger {
	child := &StdoutLogger{
		component: s.component,
		level:     s.level,
		fields:    append([]Field{}, s.fields...),
		out:       s.out,
	}
	for _, f := range fields {
		if f.Key == "component" {
			if str, ok := f.Value.(string); ok {
				child.component = str
				continue
			}
		}
		child.fields = append(child.fields, f)
	}
	return child
}
