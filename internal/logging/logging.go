// Package logging is the process-wide logger every component in this tree
// writes through instead of reaching for the stdlib log package directly.
// Error-level logging is kind-aware: when one of the logged values is an
// internal/nxerr error, the line is tagged with its Kind up front, so a grep
// over stdout can separate "element not found" noise from a real adapter
// crash without parsing the message text.
package logging

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nexuscore/nexus/internal/nxerr"
)

var (
	disabled = false
	logger   = log.New(os.Stdout, "", log.LstdFlags)
)

// Disable turns off all logging
func Disable() {
	disabled = true
}

// Enable turns logging back on
func Enable() {
	disabled = false
}

// Info logs an info message
func Info(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Infof logs a formatted info message
func Infof(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// kindTag returns "[kind] " when one of v is an error carrying an
// internal/nxerr Kind, otherwise "".
func kindTag(v []any) string {
	for _, arg := range v {
		if err, ok := arg.(error); ok {
			if kind := nxerr.KindOf(err); kind != "" {
				return "[" + string(kind) + "] "
			}
		}
	}
	return ""
}

// Error logs an error message, tagged with its internal/nxerr Kind when one
// of v is a kinded error.
func Error(v ...any) {
	if disabled {
		return
	}
	logger.Print(kindTag(v) + fmt.Sprintln(v...))
}

// Errorf logs a formatted error message, tagged with its internal/nxerr Kind
// when one of v is a kinded error.
func Errorf(format string, v ...any) {
	if disabled {
		return
	}
	logger.Printf(kindTag(v)+format, v...)
}

// Warn logs a warning message
func Warn(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Warnf logs a formatted warning message
func Warnf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Debug logs a debug message (same as Info when not disabled)
func Debug(v ...any) {
	if !disabled {
		logger.Println(v...)
	}
}

// Debugf logs a formatted debug message
func Debugf(format string, v ...any) {
	if !disabled {
		logger.Printf(format, v...)
	}
}

// Logger is a simple logger that can be embedded in structs
type Logger struct{}

// WithContext creates a new Logger (context is ignored, for API compatibility)
func WithContext(ctx context.Context) Logger {
	return Logger{}
}

// Info logs an info message
func (l Logger) Info(v ...any) {
	Info(v...)
}

// Infof logs a formatted info message
func (l Logger) Infof(format string, v ...any) {
	Infof(format, v...)
}

// Error logs an error message
func (l Logger) Error(v ...any) {
	Error(v...)
}

// Errorf logs a formatted error message
func (l Logger) Errorf(format string, v ...any) {
	Errorf(format, v...)
}
