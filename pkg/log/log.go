// Package log defines the narrow logging interface internal/machine and
// internal/mmu take a dependency on, so callers can swap in any backend
// without this module importing a concrete logger everywhere.
package log

import "github.com/sirupsen/logrus"

// Logger is the subset of logging this module needs.
type Logger interface {
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
	Debugf(format string, args ...interface{})
}

// logger adapts a *logrus.Logger to Logger.
type logger struct {
	l *logrus.Logger
}

// New returns a Logger backed by a fresh logrus.Logger with plain,
// timestamp-free text output; internal/mmu uses it as the bus's default
// logger.
func New() Logger {
	l := logrus.New()
	l.Formatter = &logrus.TextFormatter{
		DisableColors:    true,
		DisableTimestamp: true,
		DisableSorting:   true,
	}
	return &logger{l: l}
}

// Wrap adapts an already-configured *logrus.Logger, used when a caller
// wants machine and mmu sharing one logrus instance.
func Wrap(l *logrus.Logger) Logger {
	return &logger{l: l}
}

func (a *logger) Infof(format string, args ...interface{})  { a.l.Infof(format, args...) }
func (a *logger) Errorf(format string, args ...interface{}) { a.l.Errorf(format, args...) }
func (a *logger) Debugf(format string, args ...interface{}) { a.l.Debugf(format, args...) }
