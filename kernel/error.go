package kernel

import (
	"fmt"
	"path/filepath"
	"runtime"
)

// Code classifies kernel errors.
type Code uint8

const (
	Success Code = iota
	Full
	Empty
	NoSuchTask
	InvalidLevel
	NotImplemented
)

func (c Code) String() string {
	switch c {
	case Success:
		return "success"
	case Full:
		return "queue full"
	case Empty:
		return "queue empty"
	case NoSuchTask:
		return "no such task"
	case InvalidLevel:
		return "invalid level"
	case NotImplemented:
		return "not implemented"
	default:
		return "unknown"
	}
}

// Error is a kernel error value carrying the place it was raised at.
type Error struct {
	Code Code
	File string
	Line int
}

func (e *Error) Error() string {
	if e.File == "" {
		return e.Code.String()
	}
	return fmt.Sprintf("%s (%s:%d)", e.Code, e.File, e.Line)
}

// Is matches any *Error with the same code, so the sentinels below work with
// errors.Is regardless of where the error was raised.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

var (
	ErrFull           = &Error{Code: Full}
	ErrEmpty          = &Error{Code: Empty}
	ErrNoSuchTask     = &Error{Code: NoSuchTask}
	ErrInvalidLevel   = &Error{Code: InvalidLevel}
	ErrNotImplemented = &Error{Code: NotImplemented}
)

func makeError(code Code) error {
	e := &Error{Code: code}
	if _, file, line, ok := runtime.Caller(1); ok {
		e.File = filepath.Base(file)
		e.Line = line
	}
	return e
}
