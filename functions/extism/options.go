package extism

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/robbyt/go-xfn/internal/helpers"
	"github.com/robbyt/go-xfn/platform/deps"
)

// FunctionalOption is a function that configures a Function instance
type FunctionalOption func(*Function) error

// WithEntrypoint sets the exported function to call.
func WithEntrypoint(name string) FunctionalOption {
	return func(f *Function) error {
		if name == "" {
			return fmt.Errorf("entrypoint cannot be empty")
		}
		f.entrypoint = name
		return nil
	}
}

// WithDependencies declares the context the module reads from ctx.
func WithDependencies(d deps.Set) FunctionalOption {
	return func(f *Function) error {
		f.deps = d
		return nil
	}
}

// WithSettings overrides the compilation settings.
func WithSettings(s *Settings) FunctionalOption {
	return func(f *Function) error {
		if s == nil {
			return fmt.Errorf("settings cannot be nil")
		}
		f.settings = s
		return nil
	}
}

// WithLogHandler creates an option to set the log handler for the function.
func WithLogHandler(handler slog.Handler) FunctionalOption {
	return func(f *Function) error {
		if handler == nil {
			return fmt.Errorf("log handler cannot be nil")
		}
		f.logHandler = handler
		f.logger = nil
		return nil
	}
}

// WithLogger creates an option to set a specific logger for the function.
func WithLogger(logger *slog.Logger) FunctionalOption {
	return func(f *Function) error {
		if logger == nil {
			return fmt.Errorf("logger cannot be nil")
		}
		f.logger = logger
		f.logHandler = nil
		return nil
	}
}

func (f *Function) setupLogger() {
	if f.logger != nil {
		f.logHandler = f.logger.Handler()
	} else {
		f.logHandler, f.logger = helpers.SetupLogger(f.logHandler, "extism", "Function")
	}
	f.logger = f.logger.With("function", f.name)
}

func (f *Function) validate() error {
	if f.name == "" {
		return fmt.Errorf("function name cannot be empty")
	}
	if f.entrypoint == "" {
		return fmt.Errorf("entrypoint cannot be empty")
	}
	if f.settings == nil {
		return fmt.Errorf("settings cannot be nil")
	}
	if f.logHandler == nil && f.logger == nil {
		return fmt.Errorf("either log handler or logger must be specified")
	}
	return nil
}

func (f *Function) applyDefaults() {
	if f.entrypoint == "" {
		f.entrypoint = DefaultEntrypoint
	}
	if f.settings == nil {
		f.settings = DefaultSettings()
	}
	if f.logHandler == nil && f.logger == nil {
		f.logHandler = slog.NewTextHandler(os.Stderr, nil)
	}
}
