// Copyright (c) 2021 Silvano DAL ZILIO
//
// MIT License

package parudd

import (
	"os"

	"github.com/sirupsen/logrus"
)

// logger is the package-level logger, in the spirit of the teacher's
// package-global _LOGLEVEL toggle (debug.go) but backed by a structured
// logger instead of raw log.Printf calls. Verbosity is controlled per
// Engine through Config.Verbose, which raises the logger's level for calls
// issued through that Engine's log entry.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	return l
}

// entry returns a logger whose level reflects this engine's Verbose flag,
// without mutating the shared package logger (engines may run
// concurrently with different verbosity settings).
func (e *Engine) entry() *logrus.Entry {
	lvl := logrus.WarnLevel
	if e.config.Verbose {
		lvl = logrus.DebugLevel
	}
	l := *logger
	l.SetLevel(lvl)
	return logrus.NewEntry(&l)
}
