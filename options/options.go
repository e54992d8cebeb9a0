package options

import (
	"fmt"
	"log/slog"

	"github.com/robbyt/go-xfn/platform/clock"
	"github.com/robbyt/go-xfn/platform/expr"
	"github.com/robbyt/go-xfn/platform/registry"
	"github.com/robbyt/go-xfn/platform/script/loader"
)

// Config holds all configuration for compiling an expression
type Config struct {
	// Log handler shared by the evaluator and scripted functions
	handler slog.Handler
	// Clock read by now() and current-dateTime()
	clock clock.Clock
	// Base registry; the builtins are used when nil
	registry *registry.Registry
	// Extra functions registered on top of the base registry
	functions []expr.Function
	// Library manifests built into scripted functions
	libraries []loader.Loader
}

// Option is a function that modifies Config
type Option func(*Config) error

// WithLogHandler sets the log handler
func WithLogHandler(handler slog.Handler) Option {
	return func(c *Config) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		c.handler = handler
		return nil
	}
}

// WithLogger sets the log handler from an existing logger
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		c.handler = logger.Handler()
		return nil
	}
}

// WithClock sets the clock
func WithClock(clk clock.Clock) Option {
	return func(c *Config) error {
		if clk == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		c.clock = clk
		return nil
	}
}

// WithRegistry replaces the base function registry. The registry is cloned
// before extra functions are added to it.
func WithRegistry(r *registry.Registry) Option {
	return func(c *Config) error {
		if r == nil {
			return fmt.Errorf("registry cannot be nil")
		}
		c.registry = r
		return nil
	}
}

// WithFunctions adds host functions
func WithFunctions(fns ...expr.Function) Option {
	return func(c *Config) error {
		for i, fn := range fns {
			if fn == nil {
				return fmt.Errorf("function %d is nil", i)
			}
		}
		c.functions = append(c.functions, fns...)
		return nil
	}
}

// WithLibrary adds a library manifest
func WithLibrary(l loader.Loader) Option {
	return func(c *Config) error {
		if l == nil {
			return fmt.Errorf("library loader cannot be nil")
		}
		c.libraries = append(c.libraries, l)
		return nil
	}
}

// Validate performs basic validation on the configuration
func (c *Config) Validate() error {
	if c.handler == nil {
		return fmt.Errorf("no log handler specified")
	}
	if c.clock == nil {
		return fmt.Errorf("no clock specified")
	}
	return nil
}

// GetHandler returns the configured log handler
func (c *Config) GetHandler() slog.Handler {
	return c.handler
}

// GetClock returns the configured clock
func (c *Config) GetClock() clock.Clock {
	return c.clock
}

// GetRegistry returns the base registry, or nil for the builtins
func (c *Config) GetRegistry() *registry.Registry {
	return c.registry
}

// GetFunctions returns the extra host functions
func (c *Config) GetFunctions() []expr.Function {
	return c.functions
}

// GetLibraries returns the library manifest loaders
func (c *Config) GetLibraries() []loader.Loader {
	return c.libraries
}
