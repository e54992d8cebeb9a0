package helpers

import (
	"log/slog"
	"os"
)

// SetupLogger returns the handler for a component and a logger grouped
// under groupName, when one is given.
//
// A nil handler falls back to a text handler on stdout grouped under the
// component name. The fallback is reported once through the new handler.
func SetupLogger(handler slog.Handler, component, groupName string) (slog.Handler, *slog.Logger) {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stdout, nil).WithGroup(component)
		slog.New(handler).Warn("log handler is nil, using the default text handler")
	}
	if groupName == "" {
		return handler, slog.New(handler)
	}
	return handler, slog.New(handler.WithGroup(groupName))
}
