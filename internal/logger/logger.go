// Package logger prints pipeline progress to stderr. Debug lines and section
// headers need --verbose; Info and Warn lines are always printed.
package logger

import (
	"fmt"
	"io"
	"os"
	"sync"
)

type level int

const (
	levelDebug level = iota
	levelInfo
	levelWarn
)

var prefixes = [...]string{
	levelDebug: "[DEBUG] ",
	levelInfo:  "[INFO] ",
	levelWarn:  "[WARN] ",
}

var (
	mu      sync.RWMutex
	verbose bool
	output  io.Writer = os.Stderr
)

func SetVerbose(v bool) {
	mu.Lock()
	defer mu.Unlock()
	verbose = v
}

// IsVerbose reports whether --verbose was given. Callers use it to skip
// building detail that only Debug would print.
func IsVerbose() bool {
	mu.RLock()
	defer mu.RUnlock()
	return verbose
}

// SetOutput redirects all log lines; tests point it at a buffer.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	output = w
}

func emit(l level, format string, args ...any) {
	mu.RLock()
	defer mu.RUnlock()
	if l == levelDebug && !verbose {
		return
	}
	fmt.Fprintf(output, prefixes[l]+format+"\n", args...)
}

func Debug(format string, args ...any) { emit(levelDebug, format, args...) }
func Info(format string, args ...any)  { emit(levelInfo, format, args...) }
func Warn(format string, args ...any)  { emit(levelWarn, format, args...) }

// Section prints a blank line and a "=== name ===" header in verbose mode.
func Section(name string) {
	mu.RLock()
	defer mu.RUnlock()
	if verbose {
		fmt.Fprintf(output, "\n=== %s ===\n", name)
	}
}
