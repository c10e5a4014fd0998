package internal

import (
	"io"
	"time"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config *Config
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithInput sets where operator answers are read from.
func WithInput(r io.Reader) Option {
	return func(a *application) {
		a.in = r
	}
}

// WithOutput sets where prompts and reports are written.
func WithOutput(w io.Writer) Option {
	return func(a *application) {
		a.out = w
	}
}

// WithErrOutput sets where warnings and logs are written.
func WithErrOutput(w io.Writer) Option {
	return func(a *application) {
		a.errOut = w
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}
