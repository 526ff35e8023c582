// Package log is the structured logging wrapper used for progress output
// across the planner and the CLI, the way denisvmedia-inventario's
// internal/log package wraps logrus: a package-level logger callers can
// swap out, plus thin Info/Warn/Error/WithField helpers so call sites
// never import logrus directly.
package log

import "github.com/sirupsen/logrus"

// Fields is an alias for logrus.Fields, kept so callers never need the
// logrus import themselves.
type Fields = logrus.Fields

var log = logrus.StandardLogger()

// SetLevel adjusts verbosity.
func SetLevel(level logrus.Level) {
	log.SetLevel(level)
}

// SetOutput swaps the logger's writer, used by tests to capture output.
func SetOutput(w interface{ Write([]byte) (int, error) }) {
	log.SetOutput(w)
}

func Debugf(format string, args ...any) { log.Debugf(format, args...) }
func Infof(format string, args ...any)  { log.Infof(format, args...) }
func Warnf(format string, args ...any)  { log.Warnf(format, args...) }
func Errorf(format string, args ...any) { log.Errorf(format, args...) }

func Debug(args ...any) { log.Debug(args...) }
func Info(args ...any)  { log.Info(args...) }
func Warn(args ...any)  { log.Warn(args...) }
func Error(args ...any) { log.Error(args...) }

// WithField starts a structured log entry, e.g.
// log.WithField("phase", "diff").Info("enum reconciliation complete").
func WithField(key string, value any) *logrus.Entry {
	return log.WithField(key, value)
}

// WithFields starts a structured log entry with several fields at once.
func WithFields(fields Fields) *logrus.Entry {
	return log.WithFields(fields)
}

// WithError attaches an error to a structured log entry.
func WithError(err error) *logrus.Entry {
	return log.WithError(err)
}
