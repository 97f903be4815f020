// Package clilog provides colorized, human-facing logging for bridgectl
// subcommands, separate from the daemon's structured slog output.
package clilog

import (
	"os"

	"github.com/sirupsen/logrus"
	prefixed "github.com/x-cray/logrus-prefixed-formatter"
)

// logger is the package-level colorized CLI logger.
var logger = newLogger()

func newLogger() *logrus.Logger {
	l := logrus.New()
	l.Out = os.Stdout
	l.Formatter = &prefixed.TextFormatter{
		ForceColors:     true,
		FullTimestamp:   false,
		ForceFormatting: true,
	}
	l.Level = logrus.InfoLevel
	return l
}

// Get returns the shared CLI logger.
func Get() *logrus.Logger {
	return logger
}

// WithField is a convenience wrapper mirroring the daemon's slog call sites.
func WithField(key string, value any) *logrus.Entry {
	return logger.WithField(key, value)
}
