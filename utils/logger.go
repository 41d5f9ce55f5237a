package utils

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"
)

// Logger provides leveled logging for every pipeline stage.
type Logger struct {
	info  *log.Logger
	warn  *log.Logger
	err   *log.Logger
	debug *log.Logger

	debugEnabled bool
}

// NewLogger creates a Logger writing to stdout/stderr.
func NewLogger(debug bool) *Logger {
	return newLogger(os.Stdout, os.Stderr, debug)
}

// NewLoggerTo creates a Logger that sends every level to w.
func NewLoggerTo(w io.Writer, debug bool) *Logger {
	return newLogger(w, w, debug)
}

// Discard returns a Logger that drops everything. Used by tests.
func Discard() *Logger {
	return newLogger(io.Discard, io.Discard, false)
}

func newLogger(out, errOut io.Writer, debug bool) *Logger {
	flags := 0
	return &Logger{
		info:         log.New(out, "", flags),
		warn:         log.New(out, "", flags),
		err:          log.New(errOut, "", flags),
		debug:        log.New(out, "", flags),
		debugEnabled: debug,
	}
}

func (l *Logger) timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

func (l *Logger) Info(format string, args ...any) {
	l.info.Print(fmt.Sprintf("[%s] \033[32mINFO\033[0m  %s", l.timestamp(), fmt.Sprintf(format, args...)))
}

func (l *Logger) Warn(format string, args ...any) {
	l.warn.Print(fmt.Sprintf("[%s] \033[33mWARN\033[0m  %s", l.timestamp(), fmt.Sprintf(format, args...)))
}

func (l *Logger) Error(format string, args ...any) {
	l.err.Print(fmt.Sprintf("[%s] \033[31mERROR\033[0m %s", l.timestamp(), fmt.Sprintf(format, args...)))
}

func (l *Logger) Debug(format string, args ...any) {
	if !l.debugEnabled {
		return
	}
	l.debug.Print(fmt.Sprintf("[%s] \033[36mDEBUG\033[0m %s", l.timestamp(), fmt.Sprintf(format, args...)))
}
