package internal

import (
	"io"

	"github.com/starford/folio/internal/notify"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config   *Config
	notifier notify.Notifier
	out      io.Writer
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithNotifier replaces the SMTP sender built from configuration.
func WithNotifier(n notify.Notifier) Option {
	return func(a *application) {
		a.notifier = n
	}
}

// WithOutput sets where command output and logs are written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}
