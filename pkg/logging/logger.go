package logging

import (
	"fmt"
	"log"

	"github.com/fatih/color"
)

// Logger is the main logger type. It has the novel property that it still
// functions if nil, but it doesn't log anything. It wraps the standard
// library logger, so it respects any flags set on that logger. It is safe
// for concurrent use.
type Logger struct {
	// prefix is any prefix specified for the logger.
	prefix string
	// level points to the minimum level at which this logger emits output. It
	// is shared by a logger and all of its subloggers.
	level *Level
}

// rootLevel is the level shared by RootLogger and every sublogger derived
// from it.
var rootLevel = LevelWarn

// RootLogger is the root logger from which all other loggers derive. It
// defaults to LevelWarn, matching the CLI's warn-and-continue posture for
// precondition mismatches and merge degeneracies.
var RootLogger = &Logger{level: &rootLevel}

// SetLevel adjusts the level at which the root logger (and its existing and
// future subloggers, since they share the root's level) emits output. It is
// intended to be called once, early, from the CLI's flag handling.
func SetLevel(level Level) {
	*RootLogger.level = level
}

// Sublogger creates a new sublogger with the specified name, inheriting the
// parent's level.
func (l *Logger) Sublogger(name string) *Logger {
	if l == nil {
		return nil
	}
	prefix := name
	if l.prefix != "" {
		prefix = l.prefix + "." + name
	}
	return &Logger{prefix: prefix, level: l.level}
}

// output is the internal logging method.
func (l *Logger) output(calldepth int, line string) {
	if l.prefix != "" {
		line = fmt.Sprintf("[%s] %s", l.prefix, line)
	}
	log.Output(calldepth, line)
}

// enabled reports whether the logger will emit at the given level.
func (l *Logger) enabled(level Level) bool {
	return l != nil && *l.level >= level
}

// Info logs information with semantics equivalent to fmt.Println, but only if
// informational logging is enabled.
func (l *Logger) Info(v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Infof logs information with semantics equivalent to fmt.Printf, but only if
// informational logging is enabled.
func (l *Logger) Infof(format string, v ...interface{}) {
	if l.enabled(LevelInfo) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Debug logs information with semantics equivalent to fmt.Println, but only
// if debug logging is enabled.
func (l *Logger) Debug(v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintln(v...))
	}
}

// Debugf logs information with semantics equivalent to fmt.Printf, but only
// if debug logging is enabled.
func (l *Logger) Debugf(format string, v ...interface{}) {
	if l.enabled(LevelDebug) {
		l.output(3, fmt.Sprintf(format, v...))
	}
}

// Warn logs non-fatal error information (such as a precondition mismatch
// encountered during apply) with a warning prefix and yellow color.
func (l *Logger) Warn(err error) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: %v", err))
	}
}

// Warnf is equivalent to Warn but accepts a format string.
func (l *Logger) Warnf(format string, v ...interface{}) {
	if l.enabled(LevelWarn) {
		l.output(3, color.YellowString("Warning: "+format, v...))
	}
}

// Error logs error information with an error prefix and red color. Unlike
// Warn, this is not gated by level, since it's reserved for conditions that
// the caller has already decided are worth reporting regardless of verbosity.
func (l *Logger) Error(err error) {
	if l != nil {
		l.output(3, color.RedString("Error: %v", err))
	}
}
