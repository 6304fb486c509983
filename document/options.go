package document

import (
	"os"

	"github.com/sirupsen/logrus"
)

// Option configures Load.
type Option func(*options)

type options struct {
	log logrus.FieldLogger
}

func defaultOptions() options {
	return options{log: DefaultLogger()}
}

// WithLogger sets the logger used for load diagnostics.
func WithLogger(l logrus.FieldLogger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// DefaultLogger returns a logger writing to stderr at Info level.
func DefaultLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.InfoLevel)
	return l
}
