// Package logger provides logging for the pdfchat CLI.
// When verbose mode is enabled via the --verbose flag, debug messages
// are printed to stderr to help users follow the retrieval pipeline.
// Info, warnings and errors are also written to an optional sink
// (the operational log file) regardless of verbosity.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
	sink    io.Writer
	now     = time.Now
)

// SetVerbose enables or disables verbose logging.
func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose returns true if verbose mode is enabled.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput sets the output writer for verbose logs.
// Defaults to os.Stderr. Useful for testing.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

// SetSink sets the operational log writer. Nil disables it.
func SetSink(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	sink = w
}

// Debug prints a message if verbose mode is enabled.
func Debug(format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "[DEBUG] "+format+"\n", args...)
	}
}

// Section prints a section header if verbose mode is enabled.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}

// Info prints an informational message if verbose mode is enabled
// and records it in the sink.
func Info(format string, args ...any) {
	emit("INFO", format, args)
}

// Warn prints a warning message if verbose mode is enabled
// and records it in the sink.
func Warn(format string, args ...any) {
	emit("WARN", format, args)
}

// Error records an operational failure in the sink. It is printed to the
// console only in verbose mode, since users see a friendly message instead.
func Error(format string, args ...any) {
	emit("ERROR", format, args)
}

func emit(level, format string, args []any) {
	mu.Lock()
	defer mu.Unlock()
	if verbose {
		fmt.Fprintf(output, "["+level+"] "+format+"\n", args...)
	}
	if sink != nil {
		fmt.Fprintf(sink, "%s %-5s %s\n", now().Format(time.RFC3339), level, fmt.Sprintf(format, args...))
	}
}
