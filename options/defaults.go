package options

import (
	"log/slog"
	"os"

	"github.com/robbyt/go-xfn/platform/clock"
)

// DefaultConfig initializes a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		handler: DefaultHandler(),
		clock:   DefaultClock(),
	}
}

// DefaultHandler returns the default logging handler
func DefaultHandler() slog.Handler {
	return slog.NewTextHandler(os.Stdout, nil)
}

// DefaultClock returns the wall clock
func DefaultClock() clock.Clock {
	return clock.System()
}

// WithDefaults applies default values to any config properties that are nil
func WithDefaults() Option {
	return func(c *Config) error {
		if c.handler == nil {
			c.handler = DefaultHandler()
		}
		if c.clock == nil {
			c.clock = DefaultClock()
		}
		return nil
	}
}
