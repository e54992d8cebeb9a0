package engine

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-xfn/internal/helpers"
	"github.com/robbyt/go-xfn/platform/clock"
)

// FunctionalOption is a function that configures an Evaluator instance
type FunctionalOption func(*Evaluator) error

// WithClock sets the clock read by date and time functions.
func WithClock(c clock.Clock) FunctionalOption {
	return func(e *Evaluator) error {
		if c == nil {
			return fmt.Errorf("clock cannot be nil")
		}
		e.clock = c
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the evaluator.
// This is the preferred option for logging configuration as it provides
// more flexibility through the slog.Handler interface.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(e *Evaluator) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		e.logHandler = handler
		// Clear logger if handler is explicitly set
		e.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the evaluator.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(e *Evaluator) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		e.logger = logger
		// Clear handler if logger is explicitly set
		e.logHandler = nil
		return nil
	}
}

// setupLogger configures the logger and handler based on the current state.
func (e *Evaluator) setupLogger() {
	if e.logger != nil {
		e.logHandler = e.logger.Handler()
	} else {
		e.logHandler, e.logger = helpers.SetupLogger(e.logHandler, "xfn", "Evaluator")
	}
}

// validate checks if the evaluator configuration is valid
func (e *Evaluator) validate() error {
	if e.logHandler == nil && e.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	if e.clock == nil {
		return fmt.Errorf("clock must be specified")
	}
	return nil
}

// applyDefaults sets the default values for an evaluator
func (e *Evaluator) applyDefaults() {
	if e.logHandler == nil && e.logger == nil {
		e.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
	if e.clock == nil {
		e.clock = clock.System()
	}
}
