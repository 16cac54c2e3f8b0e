// Package logging provides the leveled logger shared by every encstatus
// component.
//
// Messages are printf-style. Context travels in fields attached with
// WithField and WithComponent. A derived logger carries its own copy of the
// fields but writes through its parent's sink, so level, output and
// enablement changes apply to the whole family.
package logging

import (
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Level is the severity of a message.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

var levelNames = [...]string{"DEBUG", "INFO", "WARN", "ERROR"}

func (l Level) String() string {
	if l < 0 || int(l) >= len(levelNames) {
		return "UNKNOWN"
	}
	return levelNames[l]
}

// ParseLevel maps a configured level name to a Level. Unknown names and ""
// mean LevelInfo; "warning" is accepted for LevelWarn.
func ParseLevel(s string) Level {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "WARNING" {
		return LevelWarn
	}
	for i, name := range levelNames {
		if s == name {
			return Level(i)
		}
	}
	return LevelInfo
}

// Config configures a Logger.
type Config struct {
	Level Level
	// Output defaults to os.Stderr.
	Output io.Writer
	// Prefix, when set, precedes every message.
	Prefix string
}

func DefaultConfig() Config {
	return Config{Level: LevelInfo, Output: os.Stderr, Prefix: "encstatus"}
}

// sink is the state a family of derived loggers shares.
type sink struct {
	mu       sync.Mutex
	level    Level
	out      io.Writer
	prefix   string
	disabled bool
}

type field struct {
	key   string
	value any
}

// Logger writes timestamped lines of the form
//
//	2006-01-02T15:04:05.000 [WARN] prefix: message {key=value, ...}
//
// A Logger is safe for concurrent use.
type Logger struct {
	sink   *sink
	fields []field // sorted by key
}

func New(cfg Config) *Logger {
	if cfg.Output == nil {
		cfg.Output = os.Stderr
	}
	return &Logger{sink: &sink{level: cfg.Level, out: cfg.Output, prefix: cfg.Prefix}}
}

// Null discards everything written to it or to loggers derived from it.
var Null = &Logger{sink: &sink{out: io.Discard, disabled: true}}

func (l *Logger) WithField(key string, value any) *Logger {
	fields := slices.Clone(l.fields)
	i, found := slices.BinarySearchFunc(fields, key, func(f field, k string) int {
		return strings.Compare(f.key, k)
	})
	if found {
		fields[i].value = value
	} else {
		fields = slices.Insert(fields, i, field{key, value})
	}
	return &Logger{sink: l.sink, fields: fields}
}

func (l *Logger) WithFields(fields map[string]any) *Logger {
	out := l
	for k, v := range fields {
		out = out.WithField(k, v)
	}
	if out == l {
		return &Logger{sink: l.sink, fields: slices.Clone(l.fields)}
	}
	return out
}

// WithComponent sets the "component" field.
func (l *Logger) WithComponent(component string) *Logger {
	return l.WithField("component", component)
}

func (l *Logger) SetLevel(level Level) {
	l.sink.mu.Lock()
	l.sink.level = level
	l.sink.mu.Unlock()
}

func (l *Logger) Level() Level {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

func (l *Logger) SetOutput(w io.Writer) {
	l.sink.mu.Lock()
	l.sink.out = w
	l.sink.mu.Unlock()
}

func (l *Logger) Disable() { l.setDisabled(true) }
func (l *Logger) Enable() { l.setDisabled(false) }

func (l *Logger) setDisabled(v bool) {
	l.sink.mu.Lock()
	l.sink.disabled = v
	l.sink.mu.Unlock()
}

func (l *Logger) Debug(msg string, args ...any) { l.log(LevelDebug, msg, args) }
func (l *Logger) Info(msg string, args ...any) { l.log(LevelInfo, msg, args) }
func (l *Logger) Warn(msg string, args ...any) { l.log(LevelWarn, msg, args) }
func (l *Logger) Error(msg string, args ...any) { l.log(LevelError, msg, args) }

func (l *Logger) log(level Level, msg string, args []any) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disabled || level < s.level || s.out == nil {
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02T15:04:05.000"))
	fmt.Fprintf(&b, " [%s] ", level)
	if s.prefix != "" {
		b.WriteString(s.prefix + ": ")
	}
	if len(args) > 0 {
		fmt.Fprintf(&b, msg, args...)
	} else {
		b.WriteString(msg)
	}
	for i, f := range l.fields {
		sep := ", "
		if i == 0 {
			sep = " {"
		}
		fmt.Fprintf(&b, "%s%s=%v", sep, f.key, f.value)
	}
	if len(l.fields) > 0 {
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	_, _ = io.WriteString(s.out, b.String())
}

var defaultLogger atomic.Pointer[Logger]

// Default returns the process-wide logger, creating it from DefaultConfig
// on first use.
func Default() *Logger {
	if l := defaultLogger.Load(); l != nil {
		return l
	}
	defaultLogger.CompareAndSwap(nil, New(DefaultConfig()))
	return defaultLogger.Load()
}

// SetDefault replaces the process-wide logger. The command calls it once
// after loading configuration.
func SetDefault(l *Logger) { defaultLogger.Store(l) }

// OrDefault returns l, or the process-wide logger when l is nil.
func OrDefault(l *Logger) *Logger {
	if l == nil {
		return Default()
	}
	return l
}
