// Package logger builds the process logger.
package logger

import (
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

// Options configures New.
type Options struct {
	Level      string
	JSON       bool
	Output     io.Writer
	MaskFields []string
}

// DefaultMaskFields are field names whose values never reach the log output.
var DefaultMaskFields = []string{
	"password", "access_token", "refresh_token", "id_token",
	"code", "state", "secret", "client_secret", "authorization", "cookie",
}

// New returns a logrus logger with sensitive fields masked.
func New(opts Options) *logrus.Logger {
	log := logrus.New()

	out := opts.Output
	if out == nil {
		out = os.Stdout
	}
	log.SetOutput(out)

	level, err := logrus.ParseLevel(strings.TrimSpace(opts.Level))
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if opts.JSON {
		log.SetFormatter(&logrus.JSONFormatter{TimestampFormat: "2006-01-02T15:04:05.000Z07:00"})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true, TimestampFormat: "2006-01-02 15:04:05"})
	}

	fields := opts.MaskFields
	if fields == nil {
		fields = DefaultMaskFields
	}
	log.AddHook(NewMaskHook(fields...))

	return log
}
