package logging

import (
	"fmt"
	"log"
	"os"

	"github.com/fatih/color"
)

// Level is a log verbosity threshold, ordered and comparable by value. The
// level set matches exactly what cmd/hrsync's --log-level flag exposes.
type Level uint

const (
	LevelDisabled Level = iota
	LevelError
	LevelWarn
	LevelInfo
	LevelDebug
)

// levelNames is indexed by Level; it's the single source of truth for both
// NameToLevel and Level.String so the two can never drift out of sync.
var levelNames = [...]string{
	LevelDisabled: "disabled",
	LevelError:    "error",
	LevelWarn:     "warn",
	LevelInfo:     "info",
	LevelDebug:    "debug",
}

// NameToLevel converts a --log-level flag value to a Level. ok is false (and
// the returned Level is LevelDisabled) if name isn't one of the recognized
// level names.
func NameToLevel(name string) (level Level, ok bool) {
	for i, n := range levelNames {
		if n == name {
			return Level(i), true
		}
	}
	return LevelDisabled, false
}

// String renders l using the same names NameToLevel accepts.
func (l Level) String() string {
	if int(l) < len(levelNames) {
		return levelNames[l]
	}
	return "unknown"
}

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It wraps the standard
// library logger and adds a level threshold and an optional name prefix. It
// is safe for concurrent use, though hrsync's engine never uses it
// concurrently since the core is single-threaded (spec §5).
type Logger struct {
	// level is the maximum level that will be emitted by this logger.
	level Level
	// prefix is any prefix specified for the logger.
	prefix string
	// target is the underlying standard library logger.
	target *log.Logger
}

// NewLogger creates a new root logger at the specified level, writing to the
// specified file (os.Stderr if nil).
func NewLogger(level Level, target *os.File) *Logger {
	if target == nil {
		target = os.Stderr
	}
	return &Logger{
		level:  level,
		target: log.New(target, "", log.LstdFlags),
	}
}

// Sublogger creates a new sublogger with the specified name.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{
		level:  l.level,
		prefix: prefix,
		target: l.target,
	}
}

// enabled reports whether the given level would be emitted.
func (l *Logger) enabled(level Level) bool {
	return l != nil && l.level >= level
}

func (l *Logger) output(line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	l.target.Output(3, line)
}

// Debugf logs at LevelDebug.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Infof logs at LevelInfo.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(fmt.Sprintf(format, v...))
	}
}

// Warnf logs at LevelWarn, colored yellow on a terminal.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(color.YellowString("Warning: "+format, v...))
	}
}

// Errorf logs at LevelError, colored red on a terminal.
func (l *Logger) Errorf(format string, v ...interface{}) {
	if l.enabled(LevelError) {
		l.output(color.RedString("Error: "+format, v...))
	}
}
