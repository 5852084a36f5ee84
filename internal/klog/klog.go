// Package klog is the kernel's leveled line logger. Lines go to the platform
// logger and, once one is attached, to the on-screen console.
package klog

import (
	"fmt"
	"io"
	"strings"
	"sync"
	"sync/atomic"

	"tock/hal"
)

// Level orders log lines by severity.
type Level int32

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return fmt.Sprintf("Level(%d)", int32(l))
	}
}

// ParseLevel accepts the names printed by Level.String.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug, nil
	case "info", "":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("klog: unknown level %q", s)
}

// Logger drops lines below its level. It is safe for use from tasks and
// interrupt handlers; writes never block on the scheduler.
type Logger struct {
	out   hal.Logger
	level atomic.Int32

	mu      sync.Mutex
	console io.Writer
}

// New returns a logger writing to out at level and above. A nil out discards.
func New(out hal.Logger, level Level) *Logger {
	l := &Logger{out: out}
	l.level.Store(int32(level))
	return l
}

func (l *Logger) Level() Level { return Level(l.level.Load()) }

func (l *Logger) SetLevel(level Level) { l.level.Store(int32(level)) }

// AttachConsole mirrors every accepted line to w.
func (l *Logger) AttachConsole(w io.Writer) {
	l.mu.Lock()
	l.console = w
	l.mu.Unlock()
}

func (l *Logger) Enabled(level Level) bool { return level >= l.Level() }

// Logf formats and writes one line at level.
func (l *Logger) Logf(level Level, format string, args ...any) {
	if l == nil || !l.Enabled(level) {
		return
	}
	line := fmt.Sprintf("[%s] %s", level, fmt.Sprintf(format, args...))

	if l.out != nil {
		l.out.WriteLineString(line)
	}

	l.mu.Lock()
	w := l.console
	l.mu.Unlock()
	if w != nil {
		_, _ = io.WriteString(w, line+"\n")
	}
}

func (l *Logger) Debugf(format string, args ...any) { l.Logf(LevelDebug, format, args...) }
func (l *Logger) Infof(format string, args ...any)  { l.Logf(LevelInfo, format, args...) }
func (l *Logger) Warnf(format string, args ...any)  { l.Logf(LevelWarn, format, args...) }
func (l *Logger) Errorf(format string, args ...any) { l.Logf(LevelError, format, args...) }
