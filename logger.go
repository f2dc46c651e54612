package viewvk

import (
	"io"
	"log"
	"os"
)

//Logger carries the three streams used across the engine. The default
//sink is stderr: diagnostics must never themselves be a failure source,
//so no file handles are opened unless the caller provides them.
type Logger struct {
	info_log  *log.Logger
	warn_log  *log.Logger
	error_log *log.Logger
}

func NewLogger(prefix string) *Logger {
	return NewLoggerTo(os.Stderr, prefix)
}

func NewLoggerTo(sink io.Writer, prefix string) *Logger {
	var logger Logger
	logger.info_log = log.New(sink, "INFO: ["+prefix+"] ", log.Ldate|log.Ltime)
	logger.warn_log = log.New(sink, "WARNING: ["+prefix+"] ", log.Ldate|log.Ltime)
	logger.error_log = log.New(sink, "ERROR: ["+prefix+"] ", log.Ldate|log.Ltime|log.Lshortfile)
	return &logger
}

func (l *Logger) Info(format string, args ...interface{}) {
	if l != nil {
		l.info_log.Printf(format, args...)
	}
}

func (l *Logger) Warn(format string, args ...interface{}) {
	if l != nil {
		l.warn_log.Printf(format, args...)
	}
}

func (l *Logger) Error(format string, args ...interface{}) {
	if l != nil {
		l.error_log.Printf(format, args...)
	}
}
